// Package print provides helpers to print PKI objects in human readable form
package print

import (
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/effective-security/xcsr/certutil"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/effective-security/xcsr/oid"
)

// JSON prints value to out
func JSON(w io.Writer, value any) {
	b, err := json.MarshalIndent(value, "", "\t")
	if err != nil {
		fmt.Fprintf(w, "ERROR: %s\n", err.Error())
		return
	}
	fmt.Fprintln(w, string(b))
}

// CertificateRequest prints CSR info to the writer
func CertificateRequest(w io.Writer, r *x509.CertificateRequest) {
	fmt.Fprintf(w, "Subject: %s\n", r.Subject.String())
	if len(r.DNSNames) > 0 {
		fmt.Fprintf(w, "  DNS Names: %s\n", strings.Join(r.DNSNames, ","))
	}
	if len(r.IPAddresses) > 0 {
		ips := make([]string, len(r.IPAddresses))
		for i, ip := range r.IPAddresses {
			ips[i] = ip.String()
		}
		fmt.Fprintf(w, "  IP Addresses: %s\n", strings.Join(ips, ","))
	}
	if len(r.EmailAddresses) > 0 {
		fmt.Fprintf(w, "  Emails: %s\n", strings.Join(r.EmailAddresses, ","))
	}
	if len(r.URIs) > 0 {
		uris := make([]string, len(r.URIs))
		for i, u := range r.URIs {
			uris[i] = u.String()
		}
		fmt.Fprintf(w, "  URIs: %s\n", strings.Join(uris, ","))
	}

	PublicKey(w, r.PublicKey)
	fmt.Fprintf(w, "Signature: %s\n", r.SignatureAlgorithm)

	if len(r.Extensions) > 0 {
		fmt.Fprintf(w, "Extensions:\n")
		for _, ext := range r.Extensions {
			critical := ""
			if ext.Critical {
				critical = " (critical)"
			}
			fmt.Fprintf(w, "  - %s%s\n", oid.Name(ext.Id), critical)
		}
	}
}

// PublicKey prints public key info to the writer
func PublicKey(w io.Writer, pub any) {
	ki, err := certutil.NewKeyInfo(pub)
	if err != nil {
		fmt.Fprintf(w, "ERROR: %s\n", err.Error())
		return
	}
	if curve, err := cryptoprov.CurveOf(pub); err == nil {
		fmt.Fprintf(w, "Public Key: %s %s\n", ki.Type, curve)
	} else {
		fmt.Fprintf(w, "Public Key: %s %d\n", ki.Type, ki.KeySize)
	}
	if id, err := certutil.KeyThumbprint(pub); err == nil {
		fmt.Fprintf(w, "  Key ID: %s\n", id)
	}
}

// Curves prints the list of supported curves
func Curves(w io.Writer, list []cryptoprov.Curve) {
	for _, c := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\n", c, oid.Name(c.OID()), c.Hash())
	}
}
