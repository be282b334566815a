package jwks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// ErrInvalidPEM is returned when the public key text cannot be parsed
var ErrInvalidPEM = errors.New("invalid PEM public key")

// JWKS represents the JSON Web Key Set
type JWKS struct {
	Keys []map[string]any `json:"keys"`
}

// PublicKeyToJWKS converts a PEM encoded public key into a single-key set
// tagged for signature use
func PublicKeyToJWKS(pemText string) (*JWKS, error) {
	key, err := jwk.ParseKey([]byte(pemText), jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
	}

	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	data, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("marshal jwk: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode jwk: %w", err)
	}

	return &JWKS{Keys: []map[string]any{fields}}, nil
}

// Map returns the set in payload form
func (s *JWKS) Map() map[string]any {
	keys := make([]any, 0, len(s.Keys))
	for _, k := range s.Keys {
		keys = append(keys, k)
	}
	return map[string]any{"keys": keys}
}
