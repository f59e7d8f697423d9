package ndncert

import (
	"crypto/ecdh"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

func TestSessionKeyEncryptDecryptRoundTrip(t *testing.T) {
	reqPvt, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	issPvt, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	salt := make([]byte, SaltLen)
	_, err = rand.Read(salt)
	require.NoError(t, err)
	requestID := make([]byte, RequestIDLen)
	_, err = rand.Read(requestID)
	require.NoError(t, err)

	reqKey, err := MakeSessionKey(reqPvt, issPvt.PublicKey(), salt, requestID, roleRequester)
	require.NoError(t, err)
	issKey, err := MakeSessionKey(issPvt, reqPvt.PublicKey(), salt, requestID, roleIssuer)
	require.NoError(t, err)

	plaintext := []byte("selected-challenge-and-params")
	r := region.New(256)
	e := tlv.NewEncoder(r)
	reqKey.EncryptTo(e, plaintext, requestID)
	sealed := e.Bytes()
	require.NotNil(t, sealed)

	got, err := issKey.Decrypt(sealed, requestID)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestSessionKeyDecryptRejectsWrongRequestID(t *testing.T) {
	reqPvt, _ := ecdh.P256().GenerateKey(rand.Reader)
	issPvt, _ := ecdh.P256().GenerateKey(rand.Reader)
	salt := make([]byte, SaltLen)
	requestID := make([]byte, RequestIDLen)

	reqKey, err := MakeSessionKey(reqPvt, issPvt.PublicKey(), salt, requestID, roleRequester)
	require.NoError(t, err)
	issKey, err := MakeSessionKey(issPvt, reqPvt.PublicKey(), salt, requestID, roleIssuer)
	require.NoError(t, err)

	r := region.New(256)
	e := tlv.NewEncoder(r)
	reqKey.EncryptTo(e, []byte("payload"), requestID)

	otherID := make([]byte, RequestIDLen)
	otherID[0] = 0xff
	_, err = issKey.Decrypt(e.Bytes(), otherID)
	assert.Error(t, err)
}

func TestSessionKeyDecryptRejectsReplayedIV(t *testing.T) {
	reqPvt, _ := ecdh.P256().GenerateKey(rand.Reader)
	issPvt, _ := ecdh.P256().GenerateKey(rand.Reader)
	salt := make([]byte, SaltLen)
	requestID := make([]byte, RequestIDLen)

	reqKey, err := MakeSessionKey(reqPvt, issPvt.PublicKey(), salt, requestID, roleRequester)
	require.NoError(t, err)
	issKey, err := MakeSessionKey(issPvt, reqPvt.PublicKey(), salt, requestID, roleIssuer)
	require.NoError(t, err)

	r1 := region.New(256)
	e1 := tlv.NewEncoder(r1)
	reqKey.EncryptTo(e1, []byte("first"), requestID)
	first := append([]byte(nil), e1.Bytes()...)

	r2 := region.New(256)
	e2 := tlv.NewEncoder(r2)
	reqKey.EncryptTo(e2, []byte("second"), requestID)
	second := append([]byte(nil), e2.Bytes()...)

	got, err := issKey.Decrypt(first, requestID)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = issKey.Decrypt(second, requestID)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	// Replaying the first frame after a later counter was already
	// accepted must be rejected.
	_, err = issKey.Decrypt(first, requestID)
	assert.Error(t, err)
}

func TestAdvanceIVUsesEightByteBlocks(t *testing.T) {
	k := &SessionKey{}
	k.advanceIV(1)
	assert.Equal(t, uint32(1), k.ivTail)
	k.advanceIV(8)
	assert.Equal(t, uint32(2), k.ivTail)
	k.advanceIV(9)
	assert.Equal(t, uint32(4), k.ivTail)
}
