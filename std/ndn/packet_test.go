package ndn_test

import (
	"testing"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/sig"
	"github.com/ndnph-go/ndnph/std/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestPlainEncodeDecode(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.MustBeFresh = true

	wire, err := it.Encode()
	require.NoError(t, err)

	el, ok := tlv.NewDecoder(wire).Next()
	require.True(t, ok)

	got, err := ndn.ParseInterest(el)
	require.NoError(t, err)
	assert.True(t, got.Name.Equal(name))
	assert.True(t, got.MustBeFresh)
	assert.Equal(t, it.Nonce, got.Nonce)
}

func TestInterestParameterizeSetsDigest(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))

	wire, err := it.EncodeParameterized()
	require.NoError(t, err)
	require.Len(t, it.Name, 3)
	assert.Equal(t, ndn.TypeParametersSha256DigestComponent, it.Name[2].Type)

	el, ok := tlv.NewDecoder(wire).Next()
	require.True(t, ok)
	got, err := ndn.ParseInterest(el)
	require.NoError(t, err)
	assert.Equal(t, []byte("params"), got.AppParameters)
}

func TestInterestSignVerifyRoundTrip(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))

	signer := sig.NewHmacSigner([]byte("key"))
	require.NoError(t, it.Sign(signer))
	assert.Equal(t, ndn.TypeParametersSha256DigestComponent, it.Name[len(it.Name)-1].Type)

	verifier := sig.NewHmacVerifier([]byte("key"))
	assert.NoError(t, it.Verify(verifier))

	wrongVerifier := sig.NewHmacVerifier([]byte("wrong"))
	assert.Error(t, it.Verify(wrongVerifier))
}

func TestInterestCheckDigestAcceptsGenuineParameterized(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))
	_, err := it.EncodeParameterized()
	require.NoError(t, err)
	assert.NoError(t, it.CheckDigest())
}

func TestInterestCheckDigestAcceptsGenuineSigned(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))
	signer := sig.NewHmacSigner([]byte("key"))
	require.NoError(t, it.Sign(signer))
	assert.NoError(t, it.CheckDigest())
}

func TestInterestCheckDigestRejectsTamperedParams(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))
	wire, err := it.EncodeParameterized()
	require.NoError(t, err)

	el, ok := tlv.NewDecoder(wire).Next()
	require.True(t, ok)
	got, err := ndn.ParseInterest(el)
	require.NoError(t, err)

	// Tamper with AppParameters after decode without updating the Name's
	// digest component: the digest on the wire now describes different
	// bytes than those actually carried.
	got.AppParameters = []byte("tampered")
	err = got.CheckDigest()
	assert.ErrorIs(t, err, ndn.ErrDigestMismatch)
}

func TestInterestCheckDigestRejectsTamperedSignedParams(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Parameterize([]byte("params"))
	signer := sig.NewHmacSigner([]byte("key"))
	require.NoError(t, it.Sign(signer))

	el, ok := tlv.NewDecoder(it.Wire()).Next()
	require.True(t, ok)
	got, err := ndn.ParseInterest(el)
	require.NoError(t, err)

	got.AppParameters = []byte("tampered")
	err = got.CheckDigest()
	assert.ErrorIs(t, err, ndn.ErrDigestMismatch)
}

func TestInterestCheckDigestAcceptsNoParameters(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	assert.NoError(t, it.CheckDigest())
}

func TestInterestSignRejectsParamsDigestNotLast(t *testing.T) {
	name, _ := ndn.ParseName("/a/b")
	it := ndn.NewInterest(name)
	it.Name = it.Name.Append(ndn.Component{Type: ndn.TypeParametersSha256DigestComponent, Value: make([]byte, 32)}, ndn.Generic([]byte("c")))

	signer := sig.NewHmacSigner([]byte("key"))
	err := it.Sign(signer)
	assert.ErrorIs(t, err, ndn.ErrParamsDigestNotLast)
}

func TestDataSignVerifyAndFullName(t *testing.T) {
	name, _ := ndn.ParseName("/a/data")
	d := ndn.NewData(name, []byte("hello world"))
	d.FreshnessPeriod = 4000

	signer := sig.NewDigestSigner()
	wire, err := d.Sign(signer)
	require.NoError(t, err)
	assert.NotEmpty(t, wire)

	el, ok := tlv.NewDecoder(wire).Next()
	require.True(t, ok)
	got, err := ndn.ParseData(el)
	require.NoError(t, err)
	assert.Equal(t, d.Content, got.Content)
	assert.Equal(t, d.FreshnessPeriod, got.FreshnessPeriod)

	verifier := sig.NewDigestVerifier()
	assert.NoError(t, got.Verify(verifier))

	full := got.FullName()
	assert.Len(t, full, len(name)+1)
	assert.Equal(t, ndn.TypeImplicitSha256DigestComponent, full[len(full)-1].Type)
}

func TestDataValidityPeriodRoundTrip(t *testing.T) {
	name, _ := ndn.ParseName("/a/KEY/cert")
	d := ndn.NewData(name, []byte("pubkey-bytes"))

	signer := sig.NewDigestSigner()
	// inject validity by signing then overriding SigInfo before re-encode;
	// the second Sign carries the ValidityPeriod over from d.SigInfo.
	_, err := d.Sign(signer)
	require.NoError(t, err)
	d.SigInfo.HasValidity = true
	d.SigInfo.NotBefore = 1577836800
	d.SigInfo.NotAfter = 1893456000
	wire, err := d.Sign(signer)
	require.NoError(t, err)

	el, ok := tlv.NewDecoder(wire).Next()
	require.True(t, ok)
	got, err := ndn.ParseData(el)
	require.NoError(t, err)
	require.True(t, got.SigInfo.HasValidity)
	assert.Equal(t, uint64(1577836800), got.SigInfo.NotBefore)
	assert.Equal(t, uint64(1893456000), got.SigInfo.NotAfter)
}
