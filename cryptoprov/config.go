package cryptoprov

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EngineConfig holds key engine configuration information.
type EngineConfig struct {
	// Manufacturer selects the registered engine
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	// Model name of the device
	Model string `json:"model" yaml:"model"`
	// Attributes is comma separated key=value pairs (e.g. "Region=x,Endpoint=y")
	Attributes string `json:"attributes" yaml:"attributes"`
	// KeyLabelPrefix is prepended to labels of generated keys
	KeyLabelPrefix string `json:"key_label_prefix" yaml:"key_label_prefix"`
}

// AttributesMap returns parsed Attributes.
// Entries without a value are ignored.
func (c *EngineConfig) AttributesMap() map[string]string {
	attrs := make(map[string]string)

	for _, v := range strings.Split(c.Attributes, ",") {
		k, val, ok := strings.Cut(v, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		attrs[k] = strings.TrimSpace(val)
	}

	return attrs
}

// KeyLabel returns label with the configured prefix
func (c *EngineConfig) KeyLabel(label string) string {
	return c.KeyLabelPrefix + label
}

// LoadEngineConfig loads engine configuration.
// Files with .json suffix are decoded as JSON, all others as YAML.
func LoadEngineConfig(fs afero.Fs, filename string) (*EngineConfig, error) {
	b, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := new(EngineConfig)
	if strings.HasSuffix(filename, ".json") {
		err = json.Unmarshal(b, cfg)
	} else {
		err = yaml.Unmarshal(b, cfg)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to decode file: %s", filename)
	}

	if cfg.Manufacturer == "" {
		return nil, errors.Errorf("manufacturer is not specified: %s", filename)
	}

	return cfg, nil
}
