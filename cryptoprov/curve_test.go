package cryptoprov_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurve(t *testing.T) {
	tcases := []struct {
		name string
		exp  cryptoprov.Curve
	}{
		{"P-256", cryptoprov.P256},
		{"prime256v1", cryptoprov.P256},
		{"secp256r1", cryptoprov.P256},
		{"SECP384R1", cryptoprov.P384},
		{"p384", cryptoprov.P384},
		{" P-384 ", cryptoprov.P384},
		{"secp521r1", cryptoprov.P521},
	}
	for _, tc := range tcases {
		c, err := cryptoprov.ParseCurve(tc.name)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.exp, c, tc.name)
	}

	_, err := cryptoprov.ParseCurve("secp256k1")
	assert.EqualError(t, err, `unsupported curve: "secp256k1"`)
}

func TestCurveProperties(t *testing.T) {
	assert.Equal(t, elliptic.P384(), cryptoprov.P384.Elliptic())
	assert.Equal(t, oid.CurveP384, cryptoprov.P384.OID())
	assert.Equal(t, crypto.SHA384, cryptoprov.P384.Hash())
	assert.Equal(t, crypto.SHA256, cryptoprov.P256.Hash())
	assert.Equal(t, crypto.SHA512, cryptoprov.P521.Hash())

	unknown := cryptoprov.Curve("P-224")
	assert.Nil(t, unknown.Elliptic())
	assert.Nil(t, unknown.OID())
}

func TestCurveOf(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	require.NoError(t, err)

	c, err := cryptoprov.CurveOf(key.Public())
	require.NoError(t, err)
	assert.Equal(t, cryptoprov.P521, c)

	key, err = ecdsa.GenerateKey(elliptic.P224(), rand.Reader)
	require.NoError(t, err)
	_, err = cryptoprov.CurveOf(key.Public())
	assert.EqualError(t, err, "unsupported curve: P-224")

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	_, err = cryptoprov.CurveOf(pub)
	assert.EqualError(t, err, "not ECDSA public key: ed25519.PublicKey")
}
