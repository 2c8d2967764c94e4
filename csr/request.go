package csr

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/oid"
	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Request is a signed PKCS#10 request.
// The value is immutable, accessors return copies.
type Request struct {
	raw   []byte
	csr   *x509.CertificateRequest
	san   pkix.Extension
	names []string
}

func newRequest(der []byte) (*Request, error) {
	raw := bytes.Clone(der)

	if err := checkStructure(raw); err != nil {
		return nil, err
	}

	c, err := x509.ParseCertificateRequest(raw)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to parse request")
	}

	if count := certutil.CountExtension(c.Extensions, oid.ExtensionSubjectAltName); count != 1 {
		return nil, errors.Errorf("expected one SAN extension, found %d", count)
	}
	san := *certutil.FindExtension(c.Extensions, oid.ExtensionSubjectAltName)

	names, err := ParseSANValue(san.Value)
	if err != nil {
		return nil, err
	}

	return &Request{
		raw:   raw,
		csr:   c,
		san:   san,
		names: names,
	}, nil
}

// checkStructure verifies the outer CertificationRequest structure:
// SEQUENCE { certificationRequestInfo, signatureAlgorithm, signature BIT STRING }
func checkStructure(der []byte) error {
	input := cryptobyte.String(der)

	var req cryptobyte.String
	if !input.ReadASN1(&req, casn1.SEQUENCE) || !input.Empty() {
		return errors.New("malformed request")
	}
	if !req.SkipASN1(casn1.SEQUENCE) {
		return errors.New("malformed request info")
	}
	if !req.SkipASN1(casn1.SEQUENCE) {
		return errors.New("missing signature algorithm")
	}

	var sig asn1.BitString
	if !req.ReadASN1BitString(&sig) || len(sig.Bytes) == 0 {
		return errors.New("request is not signed")
	}
	if !req.Empty() {
		return errors.New("trailing data in request")
	}
	return nil
}

// ParseDER returns Request from DER encoded bytes.
// The signature is verified.
func ParseDER(der []byte) (*Request, error) {
	req, err := newRequest(der)
	if err != nil {
		return nil, markf(err, ErrEncoding, "unable to parse DER")
	}
	if err = req.CheckSignature(); err != nil {
		return nil, markf(err, ErrEncoding, "invalid signature")
	}
	return req, nil
}

// ParsePEM returns Request from PEM encoded bytes
func ParsePEM(b []byte) (*Request, error) {
	block, _ := pem.Decode(b)
	if block == nil {
		return nil, newf(ErrEncoding, "unable to decode PEM")
	}
	if block.Type != certutil.PEMTypeCertificateRequest && block.Type != certutil.PEMTypeNewCertificateRequest {
		return nil, newf(ErrEncoding, "unexpected PEM type: %q", block.Type)
	}
	return ParseDER(block.Bytes)
}

// SerializeToDER returns DER encoded request.
// The result is byte-identical for the same request.
func SerializeToDER(req *Request) ([]byte, error) {
	if req == nil || len(req.raw) == 0 {
		return nil, newf(ErrEncoding, "request is not provided")
	}
	if err := checkStructure(req.raw); err != nil {
		return nil, markf(err, ErrEncoding, "unable to serialize request")
	}
	return req.DER(), nil
}

// DER returns a copy of DER encoded request
func (r *Request) DER() []byte {
	return bytes.Clone(r.raw)
}

// PEM returns PEM encoded request
func (r *Request) PEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  certutil.PEMTypeCertificateRequest,
		Bytes: r.raw,
	})
}

// X509 returns a parsed copy of the request
func (r *Request) X509() *x509.CertificateRequest {
	c, _ := x509.ParseCertificateRequest(r.raw)
	return c
}

// DNSNames returns the DNS names from SAN, in order
func (r *Request) DNSNames() []string {
	return DNSNames(r.names)
}

// SANEntries returns all SAN entries with type prefix
func (r *Request) SANEntries() []string {
	return append([]string(nil), r.names...)
}

// SAN returns SAN value string, e.g. DNS:a.com,DNS:b.com
func (r *Request) SAN() string {
	return JoinSAN(r.DNSNames())
}

// SANExtension returns a copy of the SAN extension
func (r *Request) SANExtension() pkix.Extension {
	ext := r.san
	ext.Value = bytes.Clone(r.san.Value)
	return ext
}

// Subject returns a copy of the request subject
func (r *Request) Subject() pkix.Name {
	return r.X509().Subject
}

// PublicKey returns a copy of the bound public key
func (r *Request) PublicKey() crypto.PublicKey {
	return r.X509().PublicKey
}

// SignatureAlgorithm returns the signature algorithm
func (r *Request) SignatureAlgorithm() x509.SignatureAlgorithm {
	return r.csr.SignatureAlgorithm
}

// Extensions returns the requested extensions
func (r *Request) Extensions() []pkix.Extension {
	list := make([]pkix.Extension, len(r.csr.Extensions))
	for i, e := range r.csr.Extensions {
		e.Value = bytes.Clone(e.Value)
		list[i] = e
	}
	return list
}

// CheckSignature verifies the signature against the bound public key
func (r *Request) CheckSignature() error {
	return r.csr.CheckSignature()
}

// Equal returns true if both requests have the same encoding
func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}
	return bytes.Equal(r.raw, other.raw)
}
