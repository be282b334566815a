package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver("shared-salt", zap.NewNop())

	t.Run("symmetric algorithms return the key unchanged", func(t *testing.T) {
		for _, alg := range []Algorithm{HS256, HS384} {
			material, err := resolver.Resolve(alg, Literal("s3cr3t"))
			require.NoError(t, err)
			assert.Equal(t, []byte("s3cr3t"), material.Key)
			assert.Equal(t, alg, material.Algorithm)
			assert.False(t, material.Downgraded)
		}
	})

	t.Run("symmetric algorithm reads secret from environment", func(t *testing.T) {
		t.Setenv("TEST_JWT_SECRET", "from-env")

		material, err := resolver.Resolve(HS256, Env("TEST_JWT_SECRET"))
		require.NoError(t, err)
		assert.Equal(t, []byte("from-env"), material.Key)
		assert.Equal(t, HS256, material.Algorithm)
	})

	t.Run("asymmetric algorithm with missing file falls back and downgrades", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.pem")
		tests := []struct {
			alg  Algorithm
			want Algorithm
		}{
			{RS256, HS256},
			{RS384, HS384},
		}

		for _, tt := range tests {
			material, err := resolver.Resolve(tt.alg, File(missing))
			require.NoError(t, err)
			assert.Equal(t, []byte("shared-salt"), material.Key)
			assert.Equal(t, tt.want, material.Algorithm)
			assert.True(t, material.Downgraded)
		}
	})

	t.Run("asymmetric algorithm reads existing key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "private.pem")
		require.NoError(t, os.WriteFile(path, []byte("-----BEGIN KEY-----"), 0o600))

		material, err := resolver.Resolve(RS256, Literal(path))
		require.NoError(t, err)
		assert.Equal(t, []byte("-----BEGIN KEY-----"), material.Key)
		assert.Equal(t, RS256, material.Algorithm)
		assert.False(t, material.Downgraded)
	})

	t.Run("asymmetric algorithm treats a directory as missing", func(t *testing.T) {
		material, err := resolver.Resolve(RS384, File(t.TempDir()))
		require.NoError(t, err)
		assert.Equal(t, HS384, material.Algorithm)
	})

	t.Run("asymmetric path read from environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "private.pem")
		require.NoError(t, os.WriteFile(path, []byte("pem"), 0o600))
		t.Setenv("TEST_PRIVATE_KEY_PATH", path)

		material, err := resolver.Resolve(RS256, Env("TEST_PRIVATE_KEY_PATH"))
		require.NoError(t, err)
		assert.Equal(t, []byte("pem"), material.Key)
	})

	t.Run("remote reference is rejected", func(t *testing.T) {
		_, err := resolver.Resolve(RS256, Remote("https://example.com/jwks.json"))
		assert.ErrorIs(t, err, ErrRemoteRef)
	})

	t.Run("nil reference is rejected", func(t *testing.T) {
		_, err := resolver.Resolve(HS256, nil)
		assert.ErrorIs(t, err, ErrNilRef)
	})
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"HS256", HS256, false},
		{"hs384", HS384, false},
		{" RS256 ", RS256, false},
		{"RS384", RS384, false},
		{"ES256", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromInput(t *testing.T) {
	assert.Equal(t, Literal("abc"), FromInput("abc", false))
	assert.Equal(t, Env("ABC"), FromInput("ABC", true))
}
