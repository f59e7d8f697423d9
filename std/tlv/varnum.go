// Package tlv implements the NDN TLV codec: variable-length numbers,
// forward-iterating decoding, a back-to-front Region-backed encoder, and
// an evolvability-aware dispatcher (EvDecoder) for structured TLV
// elements.
package tlv

import (
	"encoding/binary"
	"errors"
)

// ErrOverflow is returned when a TLV length claims more bytes than remain
// in the input, or when a var-number is truncated.
var ErrOverflow = errors.New("tlv: buffer overflow")

// ErrMalformed is returned for a var-number in the unsupported 9-octet
// form and for an NNI whose length is not 1, 2, 4, or 8.
var ErrMalformed = errors.New("tlv: malformed input")

// VarNum is a TLV Type or Length number: unsigned, encoded in 1, 3, or 5
// octets. The 9-octet form is never produced and is rejected on decode.
type VarNum uint64

// Size returns the number of octets VarNum's NDN encoding occupies.
func (v VarNum) Size() int {
	switch {
	case v <= 0xfc:
		return 1
	case v <= 0xffff:
		return 3
	default:
		return 5
	}
}

// EncodeInto writes v's NDN var-number encoding into buf, which must be
// at least Size() bytes long, and returns the number of bytes written.
func (v VarNum) EncodeInto(buf []byte) int {
	switch {
	case v <= 0xfc:
		buf[0] = byte(v)
		return 1
	case v <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(v))
		return 3
	default:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(v))
		return 5
	}
}

// ParseVarNum reads a var-number from the start of buf, returning the
// value and the number of bytes consumed. It rejects the 9-octet form
// (first byte 0xff) and reports an error if buf is too short.
func ParseVarNum(buf []byte) (VarNum, int, error) {
	if len(buf) < 1 {
		return 0, 0, ErrOverflow
	}
	switch x := buf[0]; {
	case x <= 0xfc:
		return VarNum(x), 1, nil
	case x == 0xfd:
		if len(buf) < 3 {
			return 0, 0, ErrOverflow
		}
		return VarNum(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case x == 0xfe:
		if len(buf) < 5 {
			return 0, 0, ErrOverflow
		}
		return VarNum(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	default: // 0xff: 9-octet form, unsupported
		return 0, 0, ErrMalformed
	}
}

// NNI is a NonNegativeInteger TLV value, encoded in 1, 2, 4, or 8 octets.
type NNI uint64

// Size returns the minimal NNI encoding size for v.
func (v NNI) Size() int {
	switch {
	case v <= 0xff:
		return 1
	case v <= 0xffff:
		return 2
	case v <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// EncodeInto writes v's minimal-width big-endian encoding into buf.
func (v NNI) EncodeInto(buf []byte) int {
	switch n := v.Size(); n {
	case 1:
		buf[0] = byte(v)
		return 1
	case 2:
		binary.BigEndian.PutUint16(buf, uint16(v))
		return 2
	case 4:
		binary.BigEndian.PutUint32(buf, uint32(v))
		return 4
	default:
		binary.BigEndian.PutUint64(buf, uint64(v))
		return 8
	}
}

// ParseNNI decodes a NonNegativeInteger from buf, which must be exactly
// 1, 2, 4, or 8 bytes.
func ParseNNI(buf []byte) (NNI, error) {
	switch len(buf) {
	case 1:
		return NNI(buf[0]), nil
	case 2:
		return NNI(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return NNI(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return NNI(binary.BigEndian.Uint64(buf)), nil
	default:
		return 0, ErrMalformed
	}
}
