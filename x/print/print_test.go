package print_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"net"
	"net/url"
	"testing"

	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/x/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_PrintCertificateRequest(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	u, err := url.Parse("spiffe://example.com/svc")
	require.NoError(t, err)

	der, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject:        pkix.Name{CommonName: "example.com"},
		DNSNames:       []string{"*.example.com", "example.com"},
		IPAddresses:    []net.IP{net.ParseIP("10.0.0.1")},
		EmailAddresses: []string{"admin@example.com"},
		URIs:           []*url.URL{u},
	}, key)
	require.NoError(t, err)

	csrv, err := x509.ParseCertificateRequest(der)
	require.NoError(t, err)

	w := bytes.NewBuffer([]byte{})
	print.CertificateRequest(w, csrv)

	out := w.String()
	assert.NotContains(t, out, "ERROR:")
	assert.Contains(t, out, "Subject: CN=example.com\n")
	assert.Contains(t, out, "  DNS Names: *.example.com,example.com\n")
	assert.Contains(t, out, "  IP Addresses: 10.0.0.1\n")
	assert.Contains(t, out, "  Emails: admin@example.com\n")
	assert.Contains(t, out, "  URIs: spiffe://example.com/svc\n")
	assert.Contains(t, out, "Public Key: ECDSA P-384\n")
	assert.Contains(t, out, "  Key ID: ")
	assert.Contains(t, out, "Signature: ECDSA-SHA384\n")
	assert.Contains(t, out, "  - Subject Alt Name\n")
}

func Test_PrintPublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	w := bytes.NewBuffer([]byte{})
	print.PublicKey(w, pub)
	assert.Equal(t, "ERROR: key not supported: ed25519.PublicKey\n", w.String())
}

func Test_PrintCurves(t *testing.T) {
	w := bytes.NewBuffer([]byte{})
	print.Curves(w, cryptoprov.SupportedCurves())
	assert.Equal(t,
		"P-256\tprime256v1\tSHA-256\nP-384\tsecp384r1\tSHA-384\nP-521\tsecp521r1\tSHA-512\n",
		w.String())
}

func Test_PrintJSON(t *testing.T) {
	w := bytes.NewBuffer([]byte{})
	print.JSON(w, map[string]string{"csr": "csr", "key": "key"})
	assert.Equal(t, "{\n\t\"csr\": \"csr\",\n\t\"key\": \"key\"\n}\n", w.String())

	w.Reset()
	print.JSON(w, func() {})
	assert.Contains(t, w.String(), "ERROR: ")
}
