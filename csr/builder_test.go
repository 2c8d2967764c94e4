package csr_test

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/cryptoprov/inmemcrypto"
	"github.com/effective-security/xcsr/csr"
	"github.com/effective-security/xcsr/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSigner struct {
	crypto.Signer
}

func (s failingSigner) Sign(io.Reader, []byte, crypto.SignerOpts) ([]byte, error) {
	return nil, errors.New("device error")
}

type wrongKeySigner struct {
	crypto.Signer
	other crypto.Signer
}

func (s wrongKeySigner) Sign(r io.Reader, digest []byte, opts crypto.SignerOpts) ([]byte, error) {
	return s.other.Sign(r, digest, opts)
}

func generateKey(t *testing.T, curve cryptoprov.Curve) cryptoprov.KeyPair {
	kp, err := inmemcrypto.New("").GenerateKey(context.Background(), t.Name(), curve)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kp.Close() })
	return kp
}

func TestCreateEndToEnd(t *testing.T) {
	kp := generateKey(t, cryptoprov.P384)
	domains := []string{"*.example.com", "example.com"}

	req, err := csr.Create(kp, domains)
	require.NoError(t, err)

	assert.Equal(t, domains, req.DNSNames())
	assert.Equal(t, "DNS:*.example.com,DNS:example.com", req.SAN())
	assert.Equal(t, x509.ECDSAWithSHA256, req.SignatureAlgorithm())
	assert.True(t, kp.Public().(*ecdsa.PublicKey).Equal(req.PublicKey()))
	require.NoError(t, req.CheckSignature())
	require.NoError(t, csr.Verify(req))

	exts := req.Extensions()
	require.Len(t, exts, 1)
	assert.Equal(t, oid.ExtensionSubjectAltName, exts[0].Id)
	assert.True(t, exts[0].Critical, "SAN must be critical with empty subject")

	der, err := csr.SerializeToDER(req)
	require.NoError(t, err)
	require.NotEmpty(t, der)
	assert.Equal(t, byte(0x30), der[0])

	der2, err := csr.SerializeToDER(req)
	require.NoError(t, err)
	assert.Equal(t, der, der2)

	parsed, err := x509.ParseCertificateRequest(der)
	require.NoError(t, err)
	assert.Equal(t, domains, parsed.DNSNames)
	require.NoError(t, parsed.CheckSignature())

	req2, err := csr.ParseDER(der)
	require.NoError(t, err)
	assert.True(t, req.Equal(req2))
	assert.Equal(t, req.SAN(), req2.SAN())

	req3, err := csr.ParsePEM(req.PEM())
	require.NoError(t, err)
	assert.True(t, req.Equal(req3))
}

func TestCreateDomains(t *testing.T) {
	kp := generateKey(t, cryptoprov.P256)

	tcases := []struct {
		name    string
		domains []string
		san     string
	}{
		{"single", []string{"example.com"}, "DNS:example.com"},
		{"wildcard", []string{"*.example.com"}, "DNS:*.example.com"},
		{"ordered", []string{"c.com", "a.com", "b.com"}, "DNS:c.com,DNS:a.com,DNS:b.com"},
		{"duplicates", []string{"a.com", "a.com"}, "DNS:a.com,DNS:a.com"},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := csr.Create(kp, tc.domains)
			require.NoError(t, err)
			assert.Equal(t, tc.domains, req.DNSNames())
			assert.Equal(t, tc.san, req.SAN())
			assert.Equal(t, csr.JoinSAN(tc.domains), req.SAN())
		})
	}
}

func TestCreateCurves(t *testing.T) {
	for _, c := range cryptoprov.SupportedCurves() {
		t.Run(c.String(), func(t *testing.T) {
			h := c.Hash()
			b, err := csr.NewBuilder(csr.WithDigest(h))
			require.NoError(t, err)
			assert.Equal(t, h, b.Digest())

			req, err := b.Create(generateKey(t, c), []string{"example.com"})
			require.NoError(t, err)
			require.NoError(t, csr.Verify(req))

			curve, err := cryptoprov.CurveOf(req.PublicKey())
			require.NoError(t, err)
			assert.Equal(t, c, curve)
		})
	}
}

func TestCreateWithSubject(t *testing.T) {
	b, err := csr.NewBuilder(
		csr.WithSubject(pkix.Name{CommonName: "example.com"}),
		csr.WithDigest(crypto.SHA384),
	)
	require.NoError(t, err)

	req, err := b.Create(generateKey(t, cryptoprov.P384), []string{"example.com", "www.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", req.Subject().CommonName)
	assert.Equal(t, x509.ECDSAWithSHA384, req.SignatureAlgorithm())
	assert.False(t, req.SANExtension().Critical)
}

func TestCreateErrors(t *testing.T) {
	kp := generateKey(t, cryptoprov.P384)

	t.Run("empty", func(t *testing.T) {
		_, err := csr.Create(kp, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrInvalidInput))
		assert.Contains(t, err.Error(), "empty domain list")

		_, err = csr.Create(kp, []string{"a.com", ""})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrInvalidInput))
		assert.Contains(t, err.Error(), "empty domain at position 1")
	})

	t.Run("init", func(t *testing.T) {
		_, err := csr.NewBuilder(csr.WithDigest(crypto.SHA1))
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrBuilderInit))

		_, err = csr.NewBuilder(csr.WithRand(nil))
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrBuilderInit))

		var b *csr.Builder
		_, err = b.Create(kp, []string{"a.com"})
		assert.True(t, errors.Is(err, csr.ErrBuilderInit))
	})

	t.Run("key", func(t *testing.T) {
		_, err := csr.Create(nil, []string{"a.com"})
		assert.True(t, errors.Is(err, csr.ErrKeyBinding))

		_, edKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		_, err = csr.Create(edKey, []string{"a.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrKeyBinding))
		assert.Contains(t, err.Error(), "not ECDSA public key")

		p224, err := ecdsa.GenerateKey(elliptic.P224(), rand.Reader)
		require.NoError(t, err)
		_, err = csr.Create(p224, []string{"a.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrKeyBinding))
	})

	t.Run("extension", func(t *testing.T) {
		_, err := csr.Create(kp, []string{"пример.рф"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrExtensionBuild))
	})

	t.Run("signing", func(t *testing.T) {
		_, err := csr.Create(failingSigner{Signer: kp}, []string{"a.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrSigning))
		assert.Contains(t, err.Error(), "device error")

		other := generateKey(t, cryptoprov.P384)
		_, err = csr.Create(wrongKeySigner{Signer: kp, other: other}, []string{"a.com"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, csr.ErrSigning))
	})
}

func TestParseDigest(t *testing.T) {
	tcases := []struct {
		name string
		exp  crypto.Hash
	}{
		{"", crypto.SHA256},
		{"sha256", crypto.SHA256},
		{"SHA-384", crypto.SHA384},
		{"sha512", crypto.SHA512},
	}
	for _, tc := range tcases {
		h, err := csr.ParseDigest(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.exp, h)
	}

	_, err := csr.ParseDigest("md5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, csr.ErrBuilderInit))
}
