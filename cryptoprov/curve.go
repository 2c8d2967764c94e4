package cryptoprov

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/asn1"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/oid"
)

// Curve is a named elliptic curve
type Curve string

// Supported named curves
const (
	P256 Curve = "P-256"
	P384 Curve = "P-384"
	P521 Curve = "P-521"
)

var curveAliases = map[string]Curve{
	"p-256":      P256,
	"p256":       P256,
	"prime256v1": P256,
	"secp256r1":  P256,
	"p-384":      P384,
	"p384":       P384,
	"secp384r1":  P384,
	"p-521":      P521,
	"p521":       P521,
	"secp521r1":  P521,
}

// SupportedCurves returns the list of supported named curves
func SupportedCurves() []Curve {
	return []Curve{P256, P384, P521}
}

// ParseCurve returns a named curve by its NIST or SECG name,
// e.g. P-384 or SECP384R1. The name is case-insensitive.
func ParseCurve(name string) (Curve, error) {
	c, ok := curveAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", errors.Errorf("unsupported curve: %q", name)
	}
	return c, nil
}

// CurveOf returns the named curve of an ECDSA public key
func CurveOf(pub crypto.PublicKey) (Curve, error) {
	ecpub, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return "", errors.Errorf("not ECDSA public key: %T", pub)
	}
	switch ecpub.Curve {
	case elliptic.P256():
		return P256, nil
	case elliptic.P384():
		return P384, nil
	case elliptic.P521():
		return P521, nil
	}
	return "", errors.Errorf("unsupported curve: %s", ecpub.Curve.Params().Name)
}

func (c Curve) String() string {
	return string(c)
}

// Elliptic returns the curve implementation, or nil if not supported
func (c Curve) Elliptic() elliptic.Curve {
	switch c {
	case P256:
		return elliptic.P256()
	case P384:
		return elliptic.P384()
	case P521:
		return elliptic.P521()
	}
	return nil
}

// OID returns namedCurve object identifier, RFC 5480
func (c Curve) OID() asn1.ObjectIdentifier {
	switch c {
	case P256:
		return oid.CurveP256
	case P384:
		return oid.CurveP384
	case P521:
		return oid.CurveP521
	}
	return nil
}

// Hash returns the digest matching the curve strength
func (c Curve) Hash() crypto.Hash {
	switch c {
	case P384:
		return crypto.SHA384
	case P521:
		return crypto.SHA512
	}
	return crypto.SHA256
}
