package oid

import (
	"crypto/x509"
	"encoding/asn1"
)

// well-known OIDs
var (
	ExtensionSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}

	PublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}

	CurveP256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 3, 1, 7}
	CurveP384 = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
	CurveP521 = asn1.ObjectIdentifier{1, 3, 132, 0, 35}
)

// DisplayName provides OID name
var DisplayName = map[string]string{
	"2.5.29.14":             "Subject KeyID",
	"2.5.29.15":             "Key Usage",
	"2.5.29.17":             "Subject Alt Name",
	"2.5.29.19":             "Basic Constraints",
	"2.5.29.37":             "Extended KeyUsage",
	"1.2.840.113549.1.9.14": "Extension Request",
	"1.2.840.10045.2.1":     "EC Public Key",
	"1.2.840.10045.3.1.7":   "prime256v1",
	"1.3.132.0.34":          "secp384r1",
	"1.3.132.0.35":          "secp521r1",
	"1.2.840.10045.4.3.2":   "ecdsa-with-SHA256",
	"1.2.840.10045.4.3.3":   "ecdsa-with-SHA384",
	"1.2.840.10045.4.3.4":   "ecdsa-with-SHA512",
}

// StrongSignatureAlgorithms lists the CSR signature algorithms
// considered acceptable: no MD5, no SHA-1, no DSA.
var StrongSignatureAlgorithms = map[x509.SignatureAlgorithm]bool{
	x509.SHA256WithRSA:   true,
	x509.SHA384WithRSA:   true,
	x509.SHA512WithRSA:   true,
	x509.ECDSAWithSHA256: true,
	x509.ECDSAWithSHA384: true,
	x509.ECDSAWithSHA512: true,
}

// Name returns display name for the OID, or its dotted form
func Name(id asn1.ObjectIdentifier) string {
	s := id.String()
	if n, ok := DisplayName[s]; ok {
		return n
	}
	return s
}
