// Package config loads the YAML configuration file a long-running
// NDNCERT CA process reads on startup, using goccy/go-yaml the way the
// rest of this module's dependency stack favors third-party codecs over
// the standard library's.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// CaServerConfig is the on-disk configuration for an NDNCERT CA: its
// name prefix, how it listens for NDN traffic, which challenges it
// offers (in offer order), the validity period it grants issued
// certificates, and where its own signing key/certificate live.
type CaServerConfig struct {
	Prefix string `yaml:"prefix"`

	Listen struct {
		Transport string `yaml:"transport"` // "ws" or "mem"
		Address   string `yaml:"address"`
	} `yaml:"listen"`

	Challenges []string `yaml:"challenges"`

	MaxValidityPeriod uint32 `yaml:"max_validity_period"`

	KeyFile  string `yaml:"key_file"`
	CertFile string `yaml:"cert_file"`

	TpmDir  string `yaml:"tpm_dir"`
	PibFile string `yaml:"pib_file"`
}

// Load reads and parses a CaServerConfig from path.
func Load(path string) (*CaServerConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg CaServerConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
