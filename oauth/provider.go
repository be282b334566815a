// Package oauth wraps the OAuth2 client library behind the three operations the
// flow controllers need.
package oauth

import (
	"context"
	"time"
)

// Credentials identify an OAuth client
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Scopes registered for the client. Used when a request names none.
	Scopes []string
}

// AuthURLOptions are the authorization request parameters
type AuthURLOptions struct {
	AccessType           string
	Prompt               string
	Scopes               []string
	State                string
	LoginHint            string
	IncludeGrantedScopes bool
}

// Tokens is the result of a code exchange
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	IDToken      string
	Scope        string
	Expiry       time.Time
}

// Map renders the tokens the way they are published into a pipeline payload
func (t *Tokens) Map() map[string]any {
	out := map[string]any{
		"access_token": t.AccessToken,
		"token_type":   t.TokenType,
	}
	if t.RefreshToken != "" {
		out["refresh_token"] = t.RefreshToken
	}
	if t.IDToken != "" {
		out["id_token"] = t.IDToken
	}
	if t.Scope != "" {
		out["scope"] = t.Scope
	}
	if !t.Expiry.IsZero() {
		out["expiry_date"] = t.Expiry.UnixMilli()
	}
	return out
}

// Provider is an OAuth2 identity provider
type Provider interface {
	// AuthCodeURL builds the consent page URL. No network call is made.
	AuthCodeURL(creds Credentials, opts AuthURLOptions) string

	// Exchange trades an authorization code for tokens
	Exchange(ctx context.Context, creds Credentials, code string) (*Tokens, error)

	// UserInfo fetches the profile of the token owner, refreshing the access
	// token first when only a refresh token is known
	UserInfo(ctx context.Context, creds Credentials, tokens *Tokens) (map[string]any, error)
}
