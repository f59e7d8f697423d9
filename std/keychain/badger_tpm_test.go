package keychain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
)

func TestBadgerTpmGetSetDel(t *testing.T) {
	tpm, err := OpenBadgerTpm(filepath.Join(t.TempDir(), "tpm"))
	require.NoError(t, err)
	defer tpm.Close()

	_, ok := tpm.Get("alice")
	assert.False(t, ok)

	require.NoError(t, tpm.Set("alice", []byte("secret")))
	got, ok := tpm.Get("alice")
	require.True(t, ok)
	assert.Equal(t, []byte("secret"), got)

	require.NoError(t, tpm.Del("alice"))
	_, ok = tpm.Get("alice")
	assert.False(t, ok)
}

func TestBadgerTpmGetSigner(t *testing.T) {
	tpm, err := OpenBadgerTpm(filepath.Join(t.TempDir(), "tpm"))
	require.NoError(t, err)
	defer tpm.Close()

	key, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)
	keyName, err := ndn.ParseName("/example/alice/KEY/1")
	require.NoError(t, err)
	require.NoError(t, tpm.Set(keyName.String(), EncodeKeyEntry(key, keyName)))

	certName, err := ndn.ParseName("/example/alice/KEY/1/self/1")
	require.NoError(t, err)
	signer, err := tpm.GetSigner(keyName, certName)
	require.NoError(t, err)

	d := ndn.NewData(certName, []byte("payload"))
	_, err = d.Sign(signer)
	require.NoError(t, err)

	verifier := sig.NewEcdsaVerifier(&key.PublicKey)
	assert.NoError(t, d.Verify(verifier))
}

func TestBadgerTpmGetSignerMissingKey(t *testing.T) {
	tpm, err := OpenBadgerTpm(filepath.Join(t.TempDir(), "tpm"))
	require.NoError(t, err)
	defer tpm.Close()

	keyName, _ := ndn.ParseName("/example/bob/KEY/1")
	_, err = tpm.GetSigner(keyName, keyName)
	assert.Error(t, err)
}
