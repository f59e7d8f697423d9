package ndn_test

import (
	"testing"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNameRoundTrip(t *testing.T) {
	n, err := ndn.ParseName("/hello/32=world/%01%02")
	require.NoError(t, err)
	require.Len(t, n, 3)
	assert.Equal(t, ndn.TypeGenericNameComponent, n[0].Type)
	assert.Equal(t, "hello", string(n[0].Value))
	assert.Equal(t, ndn.TypeKeywordNameComponent, n[1].Type)
	assert.Equal(t, []byte{0x01, 0x02}, n[2].Value)
	assert.Equal(t, "/hello/32=world/0102", n.String())
}

func TestNameEncodeParseRoundTrip(t *testing.T) {
	n, err := ndn.ParseName("/a/b/c")
	require.NoError(t, err)

	r := region.New(256)
	e := tlv.NewEncoder(r)
	n.EncodeTo(e)
	require.False(t, e.Failed())

	dec := tlv.NewDecoder(e.Bytes())
	el, ok := dec.Next()
	require.True(t, ok)

	got, err := ndn.ParseNameElement(el)
	require.NoError(t, err)
	assert.True(t, got.Equal(n))
}

func TestNameIsPrefixOf(t *testing.T) {
	a, _ := ndn.ParseName("/a/b")
	b, _ := ndn.ParseName("/a/b/c")
	assert.True(t, a.IsPrefixOf(b))
	assert.False(t, b.IsPrefixOf(a))
}

func TestNameCompareOrdering(t *testing.T) {
	a, _ := ndn.ParseName("/a")
	b, _ := ndn.ParseName("/a/b")
	c, _ := ndn.ParseName("/b")
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.True(t, b.Compare(c) < 0)
}

func TestComponentNNIRoundTrip(t *testing.T) {
	c := ndn.Segment(42)
	v, err := c.NNI()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)
}
