package middleware

import (
	"strings"
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>"
// header value, or an empty string when the header is absent or malformed
func ExtractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}

	// Check if it starts with "Bearer "
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
