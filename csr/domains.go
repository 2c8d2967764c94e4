package csr

import (
	"strings"
)

// DNSPrefix is the type prefix of a DNS name entry in the SAN value
const DNSPrefix = "DNS:"

// DomainList is an ordered list of DNS names.
// No deduplication or DNS syntax validation is performed.
type DomainList []string

// Validate returns ErrInvalidInput if the list is empty,
// or any of the domains is empty
func (l DomainList) Validate() error {
	if len(l) == 0 {
		return newf(ErrInvalidInput, "empty domain list")
	}
	for i, d := range l {
		if d == "" {
			return newf(ErrInvalidInput, "empty domain at position %d", i)
		}
	}
	return nil
}

// SAN returns the SAN value string, see JoinSAN
func (l DomainList) SAN() string {
	return JoinSAN(l)
}

// JoinSAN formats each domain as a DNS name entry and joins
// the entries with a comma: DNS:a.com,DNS:b.com
func JoinSAN(domains []string) string {
	entries := make([]string, len(domains))
	for i, d := range domains {
		entries[i] = DNSPrefix + d
	}
	return strings.Join(entries, ",")
}
