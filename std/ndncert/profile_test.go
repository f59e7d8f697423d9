package ndncert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/keychain"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
)

func TestBuildAndParseProfileData(t *testing.T) {
	caKey, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)

	caName, err := ndn.ParseName("/example/ca/KEY/1")
	require.NoError(t, err)
	caSigner := sig.NewEcdsaSigner(caKey, caName)
	now := uint64(time.Now().Unix())
	caCert, err := keychain.BuildCertificate(caName, &caKey.PublicKey, now, now+3600, caSigner)
	require.NoError(t, err)

	prefix, err := ndn.ParseName("/example/ca")
	require.NoError(t, err)
	profileData, err := BuildProfileData(prefix, 86400, caCert, 1, caSigner)
	require.NoError(t, err)

	profile, err := ParseProfileData(profileData, nil)
	require.NoError(t, err)
	assert.True(t, profile.Prefix.Equal(prefix))
	assert.Equal(t, uint32(86400), profile.MaxValidityPeriod)
	require.NotNil(t, profile.Verifier)
}

func TestParseProfileDataRejectsTamperedSignature(t *testing.T) {
	caKey, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)
	caName, _ := ndn.ParseName("/example/ca/KEY/1")
	caSigner := sig.NewEcdsaSigner(caKey, caName)
	now := uint64(time.Now().Unix())
	caCert, err := keychain.BuildCertificate(caName, &caKey.PublicKey, now, now+3600, caSigner)
	require.NoError(t, err)

	prefix, _ := ndn.ParseName("/example/ca")
	profileData, err := BuildProfileData(prefix, 86400, caCert, 1, caSigner)
	require.NoError(t, err)
	profileData.Content[0] ^= 0xff

	_, err = ParseProfileData(profileData, nil)
	assert.Error(t, err)
}
