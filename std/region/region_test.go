package region_test

import (
	"testing"

	"github.com/ndnph-go/ndnph/std/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocBothEnds(t *testing.T) {
	r := region.New(64)
	require.Equal(t, 64, r.Available())

	a := r.AllocAligned(8)
	require.NotNil(t, a)
	b := r.Alloc(8)
	require.NotNil(t, b)
	assert.Equal(t, 48, r.Available())
}

func TestAllocExhaustion(t *testing.T) {
	r := region.New(16)
	require.NotNil(t, r.Alloc(16))
	assert.Nil(t, r.Alloc(1))
	assert.Nil(t, r.AllocAligned(1))
}

func TestFreeLastTailAlloc(t *testing.T) {
	r := region.New(32)
	a := r.Alloc(8)
	require.NotNil(t, a)
	require.True(t, r.Free(a))
	assert.Equal(t, 32, r.Available())
}

func TestFreeNotLastFails(t *testing.T) {
	r := region.New(32)
	a := r.Alloc(8)
	b := r.Alloc(8)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.False(t, r.Free(a))
}

func TestFreeLastHeadAlloc(t *testing.T) {
	r := region.New(32)
	a := r.AllocAligned(8)
	require.NotNil(t, a)
	require.True(t, r.Free(a))
	assert.Equal(t, 32, r.Available())
}

func TestReset(t *testing.T) {
	r := region.New(16)
	r.Alloc(10)
	r.Reset()
	assert.Equal(t, 16, r.Available())
}

func TestSubRegion(t *testing.T) {
	parent := region.New(256)
	child := parent.SubRegion(64)
	require.NotNil(t, child)
	assert.Equal(t, 64, child.Cap())

	buf := child.Alloc(32)
	require.NotNil(t, buf)
	assert.Equal(t, 32, child.Available())
}

func TestSubRegionExhaustsParent(t *testing.T) {
	parent := region.New(16)
	child := parent.SubRegion(64)
	assert.Nil(t, child)
}
