package tlv_test

import (
	"testing"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarNumRoundTrip(t *testing.T) {
	cases := []tlv.VarNum{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff}
	for _, v := range cases {
		buf := make([]byte, v.Size())
		n := v.EncodeInto(buf)
		assert.Equal(t, v.Size(), n)
		got, consumed, err := tlv.ParseVarNum(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, n, consumed)
	}
}

func TestParseVarNumRejects9OctetForm(t *testing.T) {
	buf := []byte{0xff, 0, 0, 0, 0, 0, 0, 0, 0}
	_, _, err := tlv.ParseVarNum(buf)
	assert.ErrorIs(t, err, tlv.ErrMalformed)
}

func TestParseVarNumOverflow(t *testing.T) {
	_, _, err := tlv.ParseVarNum([]byte{0xfd, 0x01})
	assert.ErrorIs(t, err, tlv.ErrOverflow)
}

func TestNNIRoundTrip(t *testing.T) {
	cases := []tlv.NNI{0, 0xff, 0x100, 0xffff, 0x10000, 0xffffffff, 0x100000000}
	for _, v := range cases {
		buf := make([]byte, v.Size())
		v.EncodeInto(buf)
		got, err := tlv.ParseNNI(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestParseNNIRejectsBadLength(t *testing.T) {
	_, err := tlv.ParseNNI([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDecoderIteratesElements(t *testing.T) {
	r := region.New(64)
	e := tlv.NewEncoder(r)
	e.PrependTLV(2, false, []byte("world"))
	e.PrependTLV(1, false, []byte("hello"))
	buf := e.Bytes()

	d := tlv.NewDecoder(buf)
	el1, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, tlv.VarNum(1), el1.Type)
	assert.Equal(t, "hello", string(el1.Value))

	el2, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, tlv.VarNum(2), el2.Type)
	assert.Equal(t, "world", string(el2.Value))

	_, ok = d.Next()
	assert.False(t, ok)
	assert.NoError(t, d.Err())
}

func TestDecoderStickyError(t *testing.T) {
	buf := []byte{1, 0xfd, 0x00} // length claims 3-byte varint but truncated
	d := tlv.NewDecoder(buf)
	_, ok := d.Next()
	assert.False(t, ok)
	require.Error(t, d.Err())
	_, ok = d.Next()
	assert.False(t, ok)
}

func TestEncoderPrependTLVOmitIfEmpty(t *testing.T) {
	r := region.New(64)
	e := tlv.NewEncoder(r)
	e.PrependTLV(9, true)
	assert.Equal(t, 0, e.Size())
}

func TestEncoderFailsOnExhaustion(t *testing.T) {
	r := region.New(2)
	e := tlv.NewEncoder(r)
	e.PrependBytes([]byte("too long for the region"))
	assert.True(t, e.Failed())
	assert.Nil(t, e.Bytes())
}

func TestEncoderDiscardReturnsSpace(t *testing.T) {
	r := region.New(64)
	e := tlv.NewEncoder(r)
	e.PrependBytes([]byte("abcd"))
	before := r.Available()
	e.Discard()
	assert.Equal(t, before+4, r.Available())
}
