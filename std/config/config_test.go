package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesCaServerConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ca.yaml")
	raw := `
prefix: /example/ca
listen:
  transport: ws
  address: 0.0.0.0:9696
challenges:
  - nop
  - possession
max_validity_period: 86400
key_file: ca.key
cert_file: ca.cert
tpm_dir: tpm
pib_file: pib.db
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/example/ca", cfg.Prefix)
	assert.Equal(t, "ws", cfg.Listen.Transport)
	assert.Equal(t, "0.0.0.0:9696", cfg.Listen.Address)
	assert.Equal(t, []string{"nop", "possession"}, cfg.Challenges)
	assert.Equal(t, uint32(86400), cfg.MaxValidityPeriod)
	assert.Equal(t, "ca.key", cfg.KeyFile)
	assert.Equal(t, "ca.cert", cfg.CertFile)
	assert.Equal(t, "tpm", cfg.TpmDir)
	assert.Equal(t, "pib.db", cfg.PibFile)
}

func TestLoadReturnsErrorForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
