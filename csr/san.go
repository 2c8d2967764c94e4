package csr

import (
	"crypto"
	"crypto/x509/pkix"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/oid"
	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// GeneralName tags, RFC 5280 4.2.1.6
const (
	nameTypeEmail = 1
	nameTypeDNS   = 2
	nameTypeURI   = 6
	nameTypeIP    = 7
)

// ExtensionContext is bound to the request being built.
// Extensions that depend on the request use it instead of
// a finalized certificate.
type ExtensionContext struct {
	// Subject of the request
	Subject pkix.Name
	// PublicKey bound to the request
	PublicKey crypto.PublicKey
	// SubjectPublicKeyInfo is DER encoded bound public key
	SubjectPublicKeyInfo []byte
}

// EmptySubject returns true if the request has no subject
func (c *ExtensionContext) EmptySubject() bool {
	return len(c.Subject.ToRDNSequence()) == 0
}

// ExtensionBuilder builds an extension in the context of a request
type ExtensionBuilder interface {
	Build(ctx *ExtensionContext) (pkix.Extension, error)
}

// SubjectAltName builds the Subject Alternative Name extension
// with DNS names
type SubjectAltName struct {
	domains DomainList
}

// NewSubjectAltName returns SAN extension builder for the domains
func NewSubjectAltName(domains []string) *SubjectAltName {
	return &SubjectAltName{
		domains: append(DomainList(nil), domains...),
	}
}

// String returns SAN value, e.g. DNS:a.com,DNS:b.com
func (s *SubjectAltName) String() string {
	return JoinSAN(s.domains)
}

// Build returns DER encoded extension.
// The extension is critical when the request subject is empty, RFC 5280 4.2.1.6.
func (s *SubjectAltName) Build(ctx *ExtensionContext) (pkix.Extension, error) {
	if ctx == nil {
		return pkix.Extension{}, newf(ErrExtensionBuild, "extension context is not bound to a request")
	}
	if err := s.domains.Validate(); err != nil {
		return pkix.Extension{}, err
	}

	for _, d := range s.domains {
		if !isIA5String(d) {
			return pkix.Extension{}, newf(ErrExtensionBuild, "domain is not IA5String: %q", d)
		}
	}

	var b cryptobyte.Builder
	b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, d := range s.domains {
			b.AddASN1(casn1.Tag(nameTypeDNS).ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddBytes([]byte(d))
			})
		}
	})

	value, err := b.Bytes()
	if err != nil {
		return pkix.Extension{}, markf(err, ErrExtensionBuild, "encode SAN")
	}

	return pkix.Extension{
		Id:       oid.ExtensionSubjectAltName,
		Critical: ctx.EmptySubject(),
		Value:    value,
	}, nil
}

func isIA5String(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// ParseSANValue returns the names from DER encoded SAN extension value,
// in the encoded order, formatted with type prefixes:
// DNS:, IP:, email:, URI:. Other name types are returned as othername:<tag>.
func ParseSANValue(value []byte) ([]string, error) {
	input := cryptobyte.String(value)

	var seq cryptobyte.String
	if !input.ReadASN1(&seq, casn1.SEQUENCE) || !input.Empty() {
		return nil, errors.New("malformed SAN extension")
	}

	var list []string
	for !seq.Empty() {
		var name cryptobyte.String
		var tag casn1.Tag
		if !seq.ReadAnyASN1(&name, &tag) {
			return nil, errors.New("malformed SAN general name")
		}

		switch tag {
		case casn1.Tag(nameTypeDNS).ContextSpecific():
			list = append(list, DNSPrefix+string(name))
		case casn1.Tag(nameTypeEmail).ContextSpecific():
			list = append(list, "email:"+string(name))
		case casn1.Tag(nameTypeURI).ContextSpecific():
			list = append(list, "URI:"+string(name))
		case casn1.Tag(nameTypeIP).ContextSpecific():
			if len(name) != net.IPv4len && len(name) != net.IPv6len {
				return nil, errors.Errorf("invalid IP length: %d", len(name))
			}
			list = append(list, "IP:"+net.IP(name).String())
		default:
			list = append(list, fmt.Sprintf("othername:%d", uint8(tag)&0x1f))
		}
	}
	if len(list) == 0 {
		return nil, errors.New("empty SAN extension")
	}
	return list, nil
}

// DNSNames returns DNS names from SAN entries, without prefix
func DNSNames(entries []string) []string {
	var list []string
	for _, e := range entries {
		if d, ok := strings.CutPrefix(e, DNSPrefix); ok {
			list = append(list, d)
		}
	}
	return list
}
