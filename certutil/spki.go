package certutil

import (
	"encoding/asn1"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/oid"
	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// NamedCurveOID returns the namedCurve identifier from DER encoded
// SubjectPublicKeyInfo of an EC key.
// An error is returned if the key is not EC, or its parameters are
// encoded explicitly (specifiedCurve) rather than by name, RFC 5480 2.1.1.
func NamedCurveOID(spki []byte) (asn1.ObjectIdentifier, error) {
	input := cryptobyte.String(spki)

	var info, algo cryptobyte.String
	if !input.ReadASN1(&info, casn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("malformed subject public key info")
	}
	if !info.ReadASN1(&algo, casn1.SEQUENCE) {
		return nil, errors.New("malformed public key algorithm")
	}

	var algOID asn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&algOID) {
		return nil, errors.New("malformed public key algorithm")
	}
	if !algOID.Equal(oid.PublicKeyECDSA) {
		return nil, errors.Errorf("not EC public key: %s", algOID)
	}

	if !algo.PeekASN1Tag(casn1.OBJECT_IDENTIFIER) {
		return nil, errors.New("EC parameters are not a named curve")
	}

	var curve asn1.ObjectIdentifier
	if !algo.ReadASN1ObjectIdentifier(&curve) || !algo.Empty() {
		return nil, errors.New("malformed EC parameters")
	}
	return curve, nil
}
