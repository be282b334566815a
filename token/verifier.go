package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrEmptyToken is returned when there is no token to verify
	ErrEmptyToken = errors.New("token is empty")
)

// KeySource supplies the verification key for a token
type KeySource interface {
	Keyfunc(ctx context.Context) jwt.Keyfunc
}

// StaticKey is a KeySource backed by a key known up front: a shared secret for
// HS algorithms or a PEM public key for RS algorithms
type StaticKey struct {
	Key       []byte
	Algorithm keys.Algorithm
}

// Keyfunc implements KeySource
func (s StaticKey) Keyfunc(context.Context) jwt.Keyfunc {
	return func(*jwt.Token) (interface{}, error) {
		if len(s.Key) == 0 {
			return nil, ErrMissingKey
		}
		if s.Algorithm.IsSymmetric() {
			return s.Key, nil
		}
		return jwt.ParseRSAPublicKeyFromPEM(s.Key)
	}
}

// Verifier verifies tokens restricted to a single algorithm
type Verifier struct{}

// NewVerifier creates a new Verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks the token signature and standard claims and returns the decoded claims.
// Tokens signed with any algorithm other than alg are rejected.
func (v *Verifier) Verify(ctx context.Context, tokenString string, alg keys.Algorithm, source KeySource) (map[string]any, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	if source == nil {
		return nil, ErrMissingKey
	}
	if _, err := signingMethod(alg); err != nil {
		return nil, err
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{alg.String()}))
	token, err := parser.ParseWithClaims(tokenString, jwt.MapClaims{}, source.Keyfunc(ctx))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, ErrMissingKey) {
			return nil, ErrMissingKey
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return map[string]any(claims), nil
}
