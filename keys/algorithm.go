package keys

import (
	"fmt"
	"strings"
)

// Algorithm is a JWT signing algorithm supported by the plugin steps
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
)

// Algorithms lists every supported algorithm in manifest order
var Algorithms = []Algorithm{HS256, HS384, RS256, RS384}

// ParseAlgorithm parses an algorithm name, case-insensitively
func ParseAlgorithm(s string) (Algorithm, error) {
	alg := Algorithm(strings.ToUpper(strings.TrimSpace(s)))
	for _, a := range Algorithms {
		if a == alg {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, s)
}

// IsSymmetric reports whether the algorithm uses a shared secret
func (a Algorithm) IsSymmetric() bool {
	return a == HS256 || a == HS384
}

// Symmetric returns the shared-secret counterpart of an asymmetric algorithm.
// Symmetric algorithms are returned unchanged.
func (a Algorithm) Symmetric() Algorithm {
	switch a {
	case RS256:
		return HS256
	case RS384:
		return HS384
	default:
		return a
	}
}

// String implements fmt.Stringer
func (a Algorithm) String() string {
	return string(a)
}
