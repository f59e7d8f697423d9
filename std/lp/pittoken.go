// Package lp implements the NDNLPv2 link-protocol layer: PIT tokens,
// Nack headers, fragmentation/reassembly, and packet classification used
// to dispatch a decoded frame to Interest/Data/Nack/Fragment handling.
package lp

import (
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// MaxPitTokenLen is the largest PIT token this implementation carries.
// The wire format allows 4 to 32 octets.
const MaxPitTokenLen = 32

// PitToken is an opaque forwarder-assigned token echoed back with any
// reply to a forwarded Interest, used in place of maintaining a pending
// Interest table keyed by Name.
type PitToken struct {
	value  [MaxPitTokenLen]byte
	length int
}

// PitTokenFrom4 builds a 4-octet PIT token from a uint32, the common case
// for a single forwarder generating its own tokens.
func PitTokenFrom4(n uint32) PitToken {
	var t PitToken
	v := tlv.NNI(n)
	buf := make([]byte, 4)
	binaryPutUint32(buf, uint32(v))
	t.Set(buf)
	return t
}

func binaryPutUint32(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

// IsSet reports whether the token carries a value.
func (t PitToken) IsSet() bool { return t.length > 0 }

// Bytes returns the token's raw value.
func (t PitToken) Bytes() []byte { return t.value[:t.length] }

// To4 interprets a 4-octet token as a big-endian uint32, or 0 if the
// token is not exactly 4 octets.
func (t PitToken) To4() uint32 {
	if t.length != 4 {
		return 0
	}
	return uint32(t.value[0])<<24 | uint32(t.value[1])<<16 | uint32(t.value[2])<<8 | uint32(t.value[3])
}

// Set assigns the token's value, truncating silently if it exceeds
// MaxPitTokenLen (callers should not produce tokens that long).
func (t *PitToken) Set(value []byte) {
	n := copy(t.value[:], value)
	t.length = n
}

// EncodeTo implements tlv.Appendable.
func (t PitToken) EncodeTo(e *tlv.Encoder) {
	if !t.IsSet() {
		return
	}
	e.PrependTLV(ndn.TypePitToken, false, t.Bytes())
}

// encodedSize returns the number of bytes EncodeTo would emit: 0 if the
// token is unset, else its TLV-TYPE, TLV-LENGTH, and TLV-VALUE.
func (t PitToken) encodedSize() int {
	if !t.IsSet() {
		return 0
	}
	return tlv.VarNum(ndn.TypePitToken).Size() + tlv.VarNum(t.length).Size() + t.length
}

// Equal reports whether two tokens carry the same value.
func (t PitToken) Equal(o PitToken) bool {
	return t.length == o.length && string(t.value[:t.length]) == string(o.value[:o.length])
}
