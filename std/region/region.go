// Package region implements a bump-pointer arena allocator that owns the
// bytes backing decoded and encoded NDN packets.
//
// A Region is a single fixed-capacity []byte slab with two cursors: left
// grows upward and holds pointer-aligned items, right grows downward and
// holds unaligned byte buffers. Nothing allocated from a Region is ever
// individually freed except via Free (which only succeeds for the most
// recent allocation) or Reset (which discards everything at once).
package region

import "unsafe"

const alignment = int(unsafe.Sizeof(uintptr(0)))

// Region is a two-ended arena allocator. The zero value is not usable;
// construct with New, NewFromBuffer, or SubRegion.
type Region struct {
	buf   []byte
	left  int // [0, left) holds aligned allocations
	right int // [right, len(buf)) holds unaligned allocations
}

// New creates a Region backed by a freshly allocated slab of the given
// capacity.
func New(capacity int) *Region {
	return &Region{buf: make([]byte, capacity), left: 0, right: capacity}
}

// NewFromBuffer creates a Region backed by the caller-supplied slice. The
// Region takes no ownership beyond what the slice already represents.
func NewFromBuffer(buf []byte) *Region {
	return &Region{buf: buf, left: 0, right: len(buf)}
}

// Cap returns the total capacity of the region's backing slab.
func (r *Region) Cap() int {
	return len(r.buf)
}

// Available returns the remaining capacity for Alloc (unaligned, tail)
// allocations.
func (r *Region) Available() int {
	return r.right - r.left
}

// AvailableAligned returns the remaining capacity for AllocA (aligned,
// head) allocations, after accounting for the alignment padding.
func (r *Region) AvailableAligned() int {
	room := r.right - alignUp(r.left)
	if room < 0 {
		return 0
	}
	return room
}

// Size returns the total space already allocated from either end.
func (r *Region) Size() int {
	return len(r.buf) - r.Available()
}

// Alloc allocates n unaligned bytes from the tail of the region. It
// returns nil if there is not enough room.
func (r *Region) Alloc(n int) []byte {
	if n < 0 || r.Available() < n {
		return nil
	}
	r.right -= n
	return r.buf[r.right : r.right+n : r.right+n]
}

// AllocAligned allocates n bytes from the head of the region, rounding
// the start up to the platform pointer alignment. It returns nil if there
// is not enough room.
func (r *Region) AllocAligned(n int) []byte {
	if n < 0 {
		return nil
	}
	start := alignUp(r.left)
	if r.right-start < n {
		return nil
	}
	r.left = start + n
	return r.buf[start : start+n : start+n]
}

// Free releases a buffer previously returned by Alloc or AllocAligned, but
// only if it is the most recently allocated buffer from its end of the
// region. It reports whether the buffer was freed.
func (r *Region) Free(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	off, ok := r.offsetOf(buf)
	if !ok {
		return false
	}
	end := off + len(buf)
	if off == r.right {
		r.right = end
		return true
	}
	if end == r.left {
		r.left = off
		return true
	}
	return false
}

// Reset discards every allocation made from this region. Any slices
// previously returned by Alloc/AllocAligned/SubRegion must not be used
// after Reset.
func (r *Region) Reset() {
	r.left = 0
	r.right = len(r.buf)
}

// SubRegion carves a nested Region of the given capacity out of this
// region's aligned (left) allocation area. Only the child's slab is
// borrowed from the parent; the child's own Region struct is an ordinary
// Go value allocated outside the parent. The child remains valid until the parent is Reset, or until the bytes backing it
// are Free'd.
func (r *Region) SubRegion(capacity int) *Region {
	buf := r.AllocAligned(capacity)
	if buf == nil {
		return nil
	}
	return NewFromBuffer(buf)
}

// Raw exposes the region's backing slab. It is intended for codec
// packages (tlv.Encoder) that need to grow a single contiguous buffer by
// making repeated tail allocations; ordinary callers should use Alloc.
func (r *Region) Raw() []byte {
	return r.buf
}

// RightOffset returns the current tail cursor: Alloc's next allocation
// will start here minus the requested size.
func (r *Region) RightOffset() int {
	return r.right
}

func (r *Region) offsetOf(buf []byte) (int, bool) {
	base := unsafe.Pointer(unsafe.SliceData(r.buf))
	ptr := unsafe.Pointer(unsafe.SliceData(buf))
	off := int(uintptr(ptr) - uintptr(base))
	if off < 0 || off > len(r.buf) {
		return 0, false
	}
	return off, true
}

func alignUp(off int) int {
	if off%alignment == 0 {
		return off
	}
	return (off | (alignment - 1)) + 1
}
