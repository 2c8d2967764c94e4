package csr

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"strings"
	"time"

	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xcsr", "csr")

// DefaultDigest is the signature digest used by the builder
const DefaultDigest = crypto.SHA256

// Engine creates signed requests
type Engine interface {
	// Create returns a request for the domains, signed by the signer
	Create(signer crypto.Signer, domains []string) (*Request, error)
}

// Option configures the Builder
type Option func(*options)

type options struct {
	digest  crypto.Hash
	subject pkix.Name
	rand    io.Reader
}

// WithDigest specifies the signature digest: SHA-256, SHA-384 or SHA-512
func WithDigest(h crypto.Hash) Option {
	return func(o *options) {
		o.digest = h
	}
}

// WithSubject specifies the request subject
func WithSubject(s pkix.Name) Option {
	return func(o *options) {
		o.subject = s
	}
}

// WithRand specifies the source of randomness for signing
func WithRand(r io.Reader) Option {
	return func(o *options) {
		o.rand = r
	}
}

// Builder implements Engine with crypto/x509
type Builder struct {
	digest  crypto.Hash
	sigAlgo x509.SignatureAlgorithm
	subject pkix.Name
	rand    io.Reader
}

var sigAlgoByDigest = map[crypto.Hash]x509.SignatureAlgorithm{
	crypto.SHA256: x509.ECDSAWithSHA256,
	crypto.SHA384: x509.ECDSAWithSHA384,
	crypto.SHA512: x509.ECDSAWithSHA512,
}

// NewBuilder returns Builder
func NewBuilder(opts ...Option) (*Builder, error) {
	o := options{
		digest: DefaultDigest,
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(&o)
	}

	sigAlgo, ok := sigAlgoByDigest[o.digest]
	if !ok {
		return nil, newf(ErrBuilderInit, "unsupported digest: %s", o.digest)
	}
	if o.rand == nil {
		return nil, newf(ErrBuilderInit, "random source is not provided")
	}

	return &Builder{
		digest:  o.digest,
		sigAlgo: sigAlgo,
		subject: o.subject,
		rand:    o.rand,
	}, nil
}

// ParseDigest returns digest by name: sha256, sha384 or sha512.
// Empty name returns DefaultDigest.
func ParseDigest(name string) (crypto.Hash, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "")) {
	case "":
		return DefaultDigest, nil
	case "sha256":
		return crypto.SHA256, nil
	case "sha384":
		return crypto.SHA384, nil
	case "sha512":
		return crypto.SHA512, nil
	}
	return 0, newf(ErrBuilderInit, "unsupported digest: %q", name)
}

// Digest returns the signature digest
func (b *Builder) Digest() crypto.Hash {
	return b.digest
}

// Create returns a request for the domains, signed by the signer.
// The request carries a single Subject Alternative Name extension
// with the domains in order.
func (b *Builder) Create(signer crypto.Signer, domains []string) (*Request, error) {
	if b == nil {
		return nil, newf(ErrBuilderInit, "builder is not initialized")
	}

	list := DomainList(domains)
	if err := list.Validate(); err != nil {
		return nil, err
	}

	d, err := newDraft(b.subject).bindKey(signer)
	if err != nil {
		return nil, err
	}

	defer metricskey.PerfCSROperation.MeasureSince(time.Now(), d.curve.String(), "create")

	ext, err := NewSubjectAltName(list).Build(d.extensionContext())
	if err != nil {
		return nil, err
	}
	d = d.attach(ext)

	der, err := b.sign(d, signer)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(der)
	if err != nil {
		return nil, markf(err, ErrSigning, "signed request is invalid")
	}
	if err = req.CheckSignature(); err != nil {
		return nil, markf(err, ErrSigning, "signature does not match the public key")
	}

	logger.KV(xlog.DEBUG,
		"curve", d.curve,
		"digest", b.digest,
		"san", list.SAN(),
		"critical", ext.Critical,
	)
	return req, nil
}

func (b *Builder) sign(d draft, signer crypto.Signer) ([]byte, error) {
	template := &x509.CertificateRequest{
		Subject:            d.subject,
		ExtraExtensions:    d.extensions,
		SignatureAlgorithm: b.sigAlgo,
	}

	der, err := x509.CreateCertificateRequest(b.rand, template, signer)
	if err != nil {
		return nil, markf(err, ErrSigning, "unable to sign request with %s", b.sigAlgo)
	}
	return der, nil
}

// Create returns a request signed with the default digest
func Create(signer crypto.Signer, domains []string) (*Request, error) {
	b, err := NewBuilder()
	if err != nil {
		return nil, err
	}
	return b.Create(signer, domains)
}

// draft is the in-progress request.
// Each step returns a new value.
type draft struct {
	subject    pkix.Name
	publicKey  crypto.PublicKey
	spki       []byte
	curve      cryptoprov.Curve
	extensions []pkix.Extension
}

func newDraft(subject pkix.Name) draft {
	return draft{subject: subject}
}

func (d draft) bindKey(signer crypto.Signer) (draft, error) {
	if signer == nil {
		return d, newf(ErrKeyBinding, "signer is not provided")
	}
	pub := signer.Public()
	if _, ok := pub.(*ecdsa.PublicKey); !ok {
		return d, newf(ErrKeyBinding, "not ECDSA public key: %T", pub)
	}

	curve, err := cryptoprov.CurveOf(pub)
	if err != nil {
		return d, markf(err, ErrKeyBinding, "unable to bind public key")
	}

	spki, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return d, markf(err, ErrKeyBinding, "unable to encode public key")
	}

	named, err := certutil.NamedCurveOID(spki)
	if err != nil {
		return d, markf(err, ErrKeyBinding, "unable to bind public key")
	}
	if !named.Equal(curve.OID()) {
		return d, newf(ErrKeyBinding, "public key curve mismatch: %s", named)
	}

	d.publicKey = pub
	d.spki = spki
	d.curve = curve
	return d, nil
}

func (d draft) extensionContext() *ExtensionContext {
	return &ExtensionContext{
		Subject:              d.subject,
		PublicKey:            d.publicKey,
		SubjectPublicKeyInfo: d.spki,
	}
}

func (d draft) attach(exts ...pkix.Extension) draft {
	list := make([]pkix.Extension, 0, len(d.extensions)+len(exts))
	list = append(list, d.extensions...)
	d.extensions = append(list, exts...)
	return d
}
