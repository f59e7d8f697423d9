package tlv

import "github.com/ndnph-go/ndnph/std/region"

// Appendable is implemented by types that know how to append their own
// TLV encoding to an Encoder (in prepend order, like every other Encoder
// operation).
type Appendable interface {
	EncodeTo(e *Encoder)
}

// RawWire is an already-encoded buffer (e.g. a signed packet's Wire())
// that implements Appendable by copying itself verbatim, for callers
// that need to hand a pre-built wire encoding to an API expecting an
// Appendable.
type RawWire []byte

func (w RawWire) EncodeTo(e *Encoder) { e.PrependBytes(w) }

// Encoder builds a TLV-encoded byte string back-to-front over a Region:
// each Prepend* call grows the encoded buffer towards lower addresses, so
// that composing a TLV's VALUE before knowing its LENGTH costs nothing.
// Once any allocation fails, the Encoder is permanently failed: further
// Prepend* calls are no-ops and Bytes returns nil.
type Encoder struct {
	region *region.Region
	size   int
	failed bool
}

// NewEncoder constructs an Encoder that allocates from r.
func NewEncoder(r *region.Region) *Encoder {
	return &Encoder{region: r}
}

// Failed reports whether any prior operation exhausted the region.
func (e *Encoder) Failed() bool {
	return e.failed
}

// Size returns the number of bytes encoded so far.
func (e *Encoder) Size() int {
	return e.size
}

// Bytes returns the contiguous encoded buffer built so far, or nil if the
// encoder has failed. The returned slice aliases the Region and remains
// valid under the same rules as any other Region allocation.
func (e *Encoder) Bytes() []byte {
	if e.failed {
		return nil
	}
	off := e.region.RightOffset()
	return e.region.Raw()[off : off+e.size]
}

// PrependRoom reserves n raw bytes at the new front of the buffer and
// returns them for the caller to fill. It returns nil if the region is
// exhausted, and marks the encoder failed.
func (e *Encoder) PrependRoom(n int) []byte {
	if e.failed {
		return nil
	}
	buf := e.region.Alloc(n)
	if buf == nil {
		e.failed = true
		return nil
	}
	e.size += n
	return buf
}

// PrependBytes copies b onto the new front of the buffer.
func (e *Encoder) PrependBytes(b []byte) {
	room := e.PrependRoom(len(b))
	if room != nil {
		copy(room, b)
	}
}

// PrependVarNum writes v's var-number encoding onto the new front of the
// buffer.
func (e *Encoder) PrependVarNum(v VarNum) {
	room := e.PrependRoom(v.Size())
	if room != nil {
		v.EncodeInto(room)
	}
}

// PrependNNI writes v's minimal-width NonNegativeInteger encoding onto
// the new front of the buffer.
func (e *Encoder) PrependNNI(v NNI) {
	room := e.PrependRoom(v.Size())
	if room != nil {
		v.EncodeInto(room)
	}
}

// PrependTypeLength writes a TLV-TYPE and TLV-LENGTH pair (but no value)
// onto the new front of the buffer, for callers that have already
// prepended the value themselves.
func (e *Encoder) PrependTypeLength(t VarNum, length int) {
	e.PrependVarNum(VarNum(length))
	e.PrependVarNum(t)
}

// item is anything PrependItem knows how to serialize: nil (skipped),
// []byte, VarNum, NNI, Appendable, or func(*Encoder).
func (e *Encoder) prependItem(item any) {
	switch v := item.(type) {
	case nil:
	case []byte:
		e.PrependBytes(v)
	case VarNum:
		e.PrependVarNum(v)
	case NNI:
		e.PrependNNI(v)
	case Appendable:
		v.EncodeTo(e)
	case func(*Encoder):
		v(e)
	default:
		e.failed = true
	}
}

// PrependTLV emits TLV-TYPE, TLV-LENGTH, and TLV-VALUE (the concatenation
// of items, in the given order) onto the new front of the buffer. If
// omitIfEmpty is true and the resulting value is empty, nothing is
// emitted at all.
func (e *Encoder) PrependTLV(t VarNum, omitIfEmpty bool, items ...any) {
	if e.failed {
		return
	}
	before := e.size
	for i := len(items) - 1; i >= 0; i-- {
		e.prependItem(items[i])
	}
	length := e.size - before
	if omitIfEmpty && length == 0 {
		return
	}
	e.PrependTypeLength(t, length)
}

// Trim is a no-op retained for parity with the reference encoder's API;
// this Encoder never over-allocates, so there is nothing to return to the
// region.
func (e *Encoder) Trim() {}

// Discard releases every byte this encoder allocated back to the region,
// provided nothing else has allocated from the region's tail since.
func (e *Encoder) Discard() {
	if e.size == 0 {
		return
	}
	e.region.Free(e.Bytes())
	e.size = 0
}
