package csr

import (
	"crypto/x509/pkix"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xcsr/cryptoprov"
	"github.com/jinzhu/copier"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Profile describes a request to create
type Profile struct {
	CommonName         string   `json:"common_name,omitempty" yaml:"common_name,omitempty"`
	Organization       string   `json:"organization,omitempty" yaml:"organization,omitempty"`
	OrganizationalUnit string   `json:"organizational_unit,omitempty" yaml:"organizational_unit,omitempty"`
	SAN                []string `json:"san,omitempty" yaml:"san,omitempty"`
	Curve              string   `json:"curve,omitempty" yaml:"curve,omitempty"`
	Digest             string   `json:"digest,omitempty" yaml:"digest,omitempty"`
	KeyLabel           string   `json:"key_label,omitempty" yaml:"key_label,omitempty"`
	Output             string   `json:"output,omitempty" yaml:"output,omitempty"`
}

// DefaultProfile returns profile with default values
func DefaultProfile() *Profile {
	return &Profile{
		Curve:    cryptoprov.P384.String(),
		Digest:   "sha256",
		KeyLabel: "csr",
		Output:   DefaultOutput,
	}
}

// LoadProfile returns profile from YAML or JSON file.
// The format is selected by the file extension, YAML by default.
func LoadProfile(fs afero.Fs, filename string) (*Profile, error) {
	b, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to load profile: %s", filename)
	}

	p := new(Profile)
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		err = json.Unmarshal(b, p)
	} else {
		err = yaml.Unmarshal(b, p)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "unable to unmarshal profile: %s", filename)
	}
	return p, nil
}

// Merge returns a new profile with non-empty values of the override
// applied on top of the profile values
func (p *Profile) Merge(override *Profile) (*Profile, error) {
	res := new(Profile)
	if p != nil {
		if err := copier.CopyWithOption(res, p, copier.Option{DeepCopy: true}); err != nil {
			return nil, errors.WithStack(err)
		}
		res.SAN = slices.Clone(p.SAN)
	}
	if override != nil {
		if err := copier.CopyWithOption(res, override, copier.Option{IgnoreEmpty: true, DeepCopy: true}); err != nil {
			return nil, errors.WithStack(err)
		}
		// copier merges slices by index, a non-empty override list replaces the base list
		if len(override.SAN) > 0 {
			res.SAN = slices.Clone(override.SAN)
		}
	}
	return res, nil
}

// Name returns the request subject
func (p *Profile) Name() pkix.Name {
	var n pkix.Name
	n.CommonName = p.CommonName
	if p.Organization != "" {
		n.Organization = []string{p.Organization}
	}
	if p.OrganizationalUnit != "" {
		n.OrganizationalUnit = []string{p.OrganizationalUnit}
	}
	return n
}

// KeyCurve returns the named curve of the key to generate
func (p *Profile) KeyCurve() (cryptoprov.Curve, error) {
	if p.Curve == "" {
		return cryptoprov.P384, nil
	}
	return cryptoprov.ParseCurve(p.Curve)
}

// BuilderOptions returns options for NewBuilder
func (p *Profile) BuilderOptions() ([]Option, error) {
	digest, err := ParseDigest(p.Digest)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithDigest(digest),
		WithSubject(p.Name()),
	}, nil
}
