package keys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

var (
	// ErrUnsupportedAlgorithm is returned for algorithm names outside Algorithms
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrRemoteRef is returned when a remote JWKS reference is resolved to bytes
	ErrRemoteRef = errors.New("remote key reference cannot be resolved locally")

	// ErrNilRef is returned when no reference is given
	ErrNilRef = errors.New("key reference is required")
)

// Material is the concrete key and the algorithm it must be used with
type Material struct {
	Key       []byte
	Algorithm Algorithm

	// Downgraded is set when an asymmetric algorithm fell back to the shared secret
	Downgraded bool
}

// Resolver turns key references into key material
type Resolver struct {
	fallback string
	logger   *zap.Logger
}

// NewResolver creates a resolver. fallback is the process-wide shared secret used
// when an asymmetric key file cannot be found.
func NewResolver(fallback string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fallback: fallback,
		logger:   logger,
	}
}

// Resolve produces the key material and the effective algorithm for a reference.
//
// Symmetric algorithms use the reference value as-is. Asymmetric algorithms read
// the file the value points at; when there is no such file the shared secret is
// returned and the algorithm is downgraded to its symmetric counterpart
// (RS256 to HS256, RS384 to HS384).
func (r *Resolver) Resolve(alg Algorithm, ref Ref) (*Material, error) {
	if ref == nil {
		return nil, ErrNilRef
	}
	if _, ok := ref.(Remote); ok {
		return nil, ErrRemoteRef
	}

	if alg.IsSymmetric() {
		return &Material{Key: []byte(ref.Value()), Algorithm: alg}, nil
	}

	path := ref.Value()
	key, found, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	if found {
		return &Material{Key: key, Algorithm: alg}, nil
	}

	// No private key on disk: sign with the shared secret instead.
	r.logger.Warn("key file not found, falling back to shared secret",
		zap.String("path", path),
		zap.String("algorithm", alg.String()),
		zap.String("effective_algorithm", alg.Symmetric().String()))

	return &Material{
		Key:        []byte(r.fallback),
		Algorithm:  alg.Symmetric(),
		Downgraded: true,
	}, nil
}

// readKeyFile reads path when it is an existing regular file.
// A missing file is reported with found=false and no error.
func readKeyFile(path string) (key []byte, found bool, err error) {
	if path == "" {
		return nil, false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat key file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}

	key, err = os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read key file: %w", err)
	}
	return key, true, nil
}

// ReadPublicKeyFile reads a public key file referenced by ref.
// found is false when the path is empty or does not name a regular file.
func ReadPublicKeyFile(ref Ref) (pemText string, found bool, err error) {
	if ref == nil {
		return "", false, nil
	}
	key, found, err := readKeyFile(ref.Value())
	if err != nil || !found {
		return "", found, err
	}
	return string(key), true, nil
}
