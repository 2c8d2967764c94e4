package certutil

import (
	"crypto/x509/pkix"
	"encoding/asn1"
)

// FindExtension returns extension, or nil
func FindExtension(list []pkix.Extension, oid asn1.ObjectIdentifier) *pkix.Extension {
	for idx, e := range list {
		if e.Id.Equal(oid) {
			return &list[idx]
		}
	}
	return nil
}

// CountExtension returns number of extensions with the given id
func CountExtension(list []pkix.Extension, oid asn1.ObjectIdentifier) int {
	count := 0
	for _, e := range list {
		if e.Id.Equal(oid) {
			count++
		}
	}
	return count
}
