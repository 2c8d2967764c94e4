package certutil_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"testing"

	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func TestNamedCurveOID(t *testing.T) {
	tcases := []struct {
		curve elliptic.Curve
		exp   string
	}{
		{elliptic.P256(), oid.CurveP256.String()},
		{elliptic.P384(), oid.CurveP384.String()},
		{elliptic.P521(), oid.CurveP521.String()},
	}

	for _, tc := range tcases {
		t.Run(tc.curve.Params().Name, func(t *testing.T) {
			key, err := ecdsa.GenerateKey(tc.curve, rand.Reader)
			require.NoError(t, err)

			spki, err := x509.MarshalPKIXPublicKey(key.Public())
			require.NoError(t, err)

			id, err := certutil.NamedCurveOID(spki)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, id.String())
		})
	}
}

func TestNamedCurveOIDErrors(t *testing.T) {
	_, err := certutil.NamedCurveOID([]byte{0x30, 0x01})
	assert.EqualError(t, err, "malformed subject public key info")

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	spki, err := x509.MarshalPKIXPublicKey(rsaKey.Public())
	require.NoError(t, err)
	_, err = certutil.NamedCurveOID(spki)
	assert.EqualError(t, err, "not EC public key: 1.2.840.113549.1.1.1")

	// specifiedCurve parameters
	var b cryptobyte.Builder
	b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(oid.PublicKeyECDSA)
			b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1Int64(1)
			})
		})
		b.AddASN1BitString([]byte{0x04, 0x01, 0x02})
	})
	explicit, err := b.Bytes()
	require.NoError(t, err)

	_, err = certutil.NamedCurveOID(explicit)
	assert.EqualError(t, err, "EC parameters are not a named curve")
}
