package jwks

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKeyToJWKS(t *testing.T) {
	_, publicKey := generateTestKeyPair(t)
	der, err := x509.MarshalPKIXPublicKey(publicKey)
	require.NoError(t, err)
	pemText := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	t.Run("converts PEM to a single signature key", func(t *testing.T) {
		set, err := PublicKeyToJWKS(pemText)
		require.NoError(t, err)
		require.Len(t, set.Keys, 1)

		key := set.Keys[0]
		assert.Equal(t, "RSA", key["kty"])
		assert.Equal(t, "sig", key["use"])
		assert.Equal(t, base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()), key["n"])
		assert.Equal(t, base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()), key["e"])
	})

	t.Run("map form holds the keys array", func(t *testing.T) {
		set, err := PublicKeyToJWKS(pemText)
		require.NoError(t, err)

		m := set.Map()
		keys, ok := m["keys"].([]any)
		require.True(t, ok)
		assert.Len(t, keys, 1)
	})

	t.Run("invalid PEM returns error", func(t *testing.T) {
		_, err := PublicKeyToJWKS("not a key")
		assert.ErrorIs(t, err, ErrInvalidPEM)
	})
}
