package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/keychain"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/ndncert"
	"github.com/ndnph-go/ndnph/std/sig"
)

func TestNopChallengeSucceedsImmediately(t *testing.T) {
	c := NopChallenge{}
	ok, status, err := c.Process(nil, newChallengeState())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, status)
}

func encodeDataElement(t *testing.T, d *ndn.Data) []byte {
	t.Helper()
	return d.Wire()
}

func TestPossessionChallengeTwoRoundFlow(t *testing.T) {
	priorKey, err := sig.GenerateEcdsaKey()
	require.NoError(t, err)
	priorName, err := ndn.ParseName("/example/alice/KEY/1/ca/1")
	require.NoError(t, err)
	priorSigner := sig.NewEcdsaSigner(priorKey, priorName)
	priorCert, err := keychain.BuildCertificate(priorName, &priorKey.PublicKey, 0, 1e18, priorSigner)
	require.NoError(t, err)

	c := PossessionChallenge{}
	state := newChallengeState()

	ok, status, err := c.Process(map[string][]byte{
		string(ndncert.ParamKeyIssuedCert): encodeDataElement(t, priorCert),
	}, state)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, status, 16)
	nonce := status

	sig1, err := priorSigner.Sign([][]byte{nonce})
	require.NoError(t, err)

	ok, _, err = c.Process(map[string][]byte{
		string(ndncert.ParamKeyProof): sig1,
	}, state)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPossessionChallengeRejectsBadProof(t *testing.T) {
	priorKey, _ := sig.GenerateEcdsaKey()
	priorName, _ := ndn.ParseName("/example/alice/KEY/1/ca/1")
	priorSigner := sig.NewEcdsaSigner(priorKey, priorName)
	priorCert, err := keychain.BuildCertificate(priorName, &priorKey.PublicKey, 0, 1e18, priorSigner)
	require.NoError(t, err)

	c := PossessionChallenge{}
	state := newChallengeState()
	_, _, err = c.Process(map[string][]byte{
		string(ndncert.ParamKeyIssuedCert): encodeDataElement(t, priorCert),
	}, state)
	require.NoError(t, err)

	_, _, err = c.Process(map[string][]byte{
		string(ndncert.ParamKeyProof): []byte("not a signature"),
	}, state)
	assert.Error(t, err)
}

func TestPossessionChallengeTrustCallback(t *testing.T) {
	priorKey, _ := sig.GenerateEcdsaKey()
	priorName, _ := ndn.ParseName("/example/mallory/KEY/1/ca/1")
	priorSigner := sig.NewEcdsaSigner(priorKey, priorName)
	priorCert, err := keychain.BuildCertificate(priorName, &priorKey.PublicKey, 0, 1e18, priorSigner)
	require.NoError(t, err)

	c := PossessionChallenge{Trust: func(*ndn.Data) bool { return false }}
	_, _, err = c.Process(map[string][]byte{
		string(ndncert.ParamKeyIssuedCert): encodeDataElement(t, priorCert),
	}, newChallengeState())
	assert.Error(t, err)
}

