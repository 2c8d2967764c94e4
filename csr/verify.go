package csr

import (
	"crypto/x509"

	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/oid"
)

// Verify returns ErrVerification if the request does not meet
// the following requirements:
// the signature is valid and uses SHA-256 or stronger digest,
// the key is ECDSA on a supported named curve,
// exactly one SAN extension with at least one DNS name is present.
func Verify(req *Request) error {
	if req == nil {
		return newf(ErrVerification, "request is not provided")
	}

	if err := req.CheckSignature(); err != nil {
		return markf(err, ErrVerification, "invalid signature")
	}

	if !oid.StrongSignatureAlgorithms[req.SignatureAlgorithm()] {
		return newf(ErrVerification, "weak signature algorithm: %s", req.SignatureAlgorithm())
	}

	if _, err := cryptoprov.CurveOf(req.PublicKey()); err != nil {
		return markf(err, ErrVerification, "unsupported public key")
	}

	spki, err := x509.MarshalPKIXPublicKey(req.PublicKey())
	if err != nil {
		return markf(err, ErrVerification, "unable to encode public key")
	}
	if _, err = certutil.NamedCurveOID(spki); err != nil {
		return markf(err, ErrVerification, "unsupported public key")
	}

	if count := certutil.CountExtension(req.Extensions(), oid.ExtensionSubjectAltName); count != 1 {
		return newf(ErrVerification, "expected one SAN extension, found %d", count)
	}

	if len(req.DNSNames()) == 0 {
		return newf(ErrVerification, "SAN has no DNS names")
	}
	if err = DomainList(req.DNSNames()).Validate(); err != nil {
		return markf(err, ErrVerification, "invalid SAN")
	}
	return nil
}
