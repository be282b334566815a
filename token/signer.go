package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingKey is returned when there is no key to sign or verify with
var ErrMissingKey = errors.New("secret or public key must be provided")

// Signer builds signed tokens
type Signer struct {
	now func() time.Time
}

// NewSigner creates a new Signer
func NewSigner() *Signer {
	return &Signer{now: time.Now}
}

// Sign signs claims with the resolved key material. iat is always set, exp is
// set when expiresIn is positive. The claims map is not modified.
func (s *Signer) Sign(claims map[string]any, material *keys.Material, expiresIn time.Duration) (string, error) {
	if material == nil || len(material.Key) == 0 {
		return "", ErrMissingKey
	}

	method, err := signingMethod(material.Algorithm)
	if err != nil {
		return "", err
	}

	signKey, err := signingKey(material)
	if err != nil {
		return "", err
	}

	now := s.now()
	mapClaims := jwt.MapClaims{}
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["iat"] = now.Unix()
	if expiresIn > 0 {
		mapClaims["exp"] = now.Add(expiresIn).Unix()
	}

	signed, err := jwt.NewWithClaims(method, mapClaims).SignedString(signKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// signingMethod maps an algorithm onto its jwt signing method
func signingMethod(alg keys.Algorithm) (jwt.SigningMethod, error) {
	switch alg {
	case keys.HS256:
		return jwt.SigningMethodHS256, nil
	case keys.HS384:
		return jwt.SigningMethodHS384, nil
	case keys.RS256:
		return jwt.SigningMethodRS256, nil
	case keys.RS384:
		return jwt.SigningMethodRS384, nil
	default:
		return nil, fmt.Errorf("%w: %q", keys.ErrUnsupportedAlgorithm, alg)
	}
}

func signingKey(material *keys.Material) (any, error) {
	if material.Algorithm.IsSymmetric() {
		return material.Key, nil
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(material.Key)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return privateKey, nil
}
