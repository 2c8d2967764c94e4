package oid_test

import (
	"crypto/x509"
	"encoding/asn1"
	"testing"

	"github.com/effective-security/xcsr/oid"
	"github.com/stretchr/testify/assert"
)

func Test_Name(t *testing.T) {
	assert.Equal(t, "Subject Alt Name", oid.Name(oid.ExtensionSubjectAltName))
	assert.Equal(t, "secp384r1", oid.Name(oid.CurveP384))
	assert.Equal(t, "1.2.3.4", oid.Name(asn1.ObjectIdentifier{1, 2, 3, 4}))
}

func Test_StrongSignatureAlgorithms(t *testing.T) {
	assert.True(t, oid.StrongSignatureAlgorithms[x509.ECDSAWithSHA256])
	assert.False(t, oid.StrongSignatureAlgorithms[x509.ECDSAWithSHA1])
	assert.False(t, oid.StrongSignatureAlgorithms[x509.SHA1WithRSA])
}
