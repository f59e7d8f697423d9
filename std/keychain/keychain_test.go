package keychain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
)

func TestEncodeDecodeKeyEntryRoundTrip(t *testing.T) {
	key, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)
	keyName, err := ndn.ParseName("/example/alice/KEY/1")
	require.NoError(t, err)

	entry := EncodeKeyEntry(key, keyName)
	gotKey, gotName, err := DecodeKeyEntry(entry)
	require.NoError(t, err)
	assert.True(t, gotName.Equal(keyName))
	assert.Equal(t, 0, key.D.Cmp(gotKey.D))
	assert.Equal(t, 0, key.X.Cmp(gotKey.X))
	assert.Equal(t, 0, key.Y.Cmp(gotKey.Y))
}

func TestDecodeKeyEntryRejectsShortValue(t *testing.T) {
	_, _, err := DecodeKeyEntry(make([]byte, 16))
	assert.Error(t, err)
}

func TestBuildCertificateAndVerifierFromCertificate(t *testing.T) {
	subjectKey, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)
	subjectName, err := ndn.ParseName("/example/alice/KEY/1")
	require.NoError(t, err)
	selfSigner := sig.NewEcdsaSigner(subjectKey, subjectName)

	cert, err := BuildCertificate(subjectName, &subjectKey.PublicKey, 1000, 2000, selfSigner)
	require.NoError(t, err)
	assert.True(t, cert.Name.Equal(subjectName))

	verifier, err := VerifierFromCertificate(cert)
	require.NoError(t, err)
	require.NoError(t, cert.Verify(verifier))
}
