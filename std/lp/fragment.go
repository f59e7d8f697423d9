package lp

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// FragmentOverhead is the worst-case byte cost of NDNLPv2 headers added
// around one fragment's payload: the LpPacket type+length, LpSeqNum,
// FragIndex, FragCount, and LpPayload type+length.
const FragmentOverhead = 1 + 3 + // LpPacket TL
	1 + 1 + 8 + // LpSeqNum
	1 + 1 + 1 + // FragIndex
	1 + 1 + 1 + // FragCount
	1 + 3 // LpPayload TL

// Fragment is one NDNLPv2-encoded slice of a larger network-layer
// packet, ready to send as its own LpPacket.
type Fragment struct {
	Header     FragmentHeader
	PitToken   PitToken
	HasNack    bool
	NackReason uint64
	Payload    []byte
}

// EncodeTo implements tlv.Appendable. A single, unfragmented packet
// (FragCount <= 1) with no PIT token and no Nack header is emitted bare,
// without an enclosing LpPacket — matching how a forwarder with no link
// headers to add skips the LP wrapper entirely.
func (f Fragment) EncodeTo(e *tlv.Encoder) {
	if f.Header.FragCount <= 1 && !f.PitToken.IsSet() && !f.HasNack {
		e.PrependBytes(f.Payload)
		return
	}
	e.PrependTLV(ndn.TypeLpPacket, false,
		func(e *tlv.Encoder) { f.Header.EncodeTo(e) },
		func(e *tlv.Encoder) { f.PitToken.EncodeTo(e) },
		func(e *tlv.Encoder) { f.encodeNackTo(e) },
		func(e *tlv.Encoder) { e.PrependTLV(ndn.TypeLpPayload, false, f.Payload) },
	)
}

func (f Fragment) encodeNackTo(e *tlv.Encoder) {
	if !f.HasNack {
		return
	}
	e.PrependTLV(ndn.TypeNack, false,
		func(e *tlv.Encoder) { e.PrependTLV(ndn.TypeNackReason, false, tlv.NNI(f.NackReason)) },
	)
}

// EncodeNack builds the single-fragment Nack'ing of it: an LpPacket
// wrapping it's own wire encoding with a Nack header carrying reason, per
// spec.md's component G (Nack encode) and scenario S5. it.Wire() (the
// encoding Sign last produced) is reused when the Interest was signed, so
// a Nack'd parameterized Interest keeps its AppParameters/signature
// intact; otherwise it is encoded fresh.
func EncodeNack(it *ndn.Interest, reason uint64) (Fragment, error) {
	wire := it.Wire()
	if wire == nil {
		var err error
		wire, err = it.Encode()
		if err != nil {
			return Fragment{}, err
		}
	}
	return Fragment{
		Header:     FragmentHeader{FragCount: 1},
		HasNack:    true,
		NackReason: reason,
		Payload:    wire,
	}, nil
}

// Fragmenter splits an oversized payload into a chain of Fragments, each
// small enough to fit within mtu once LP headers are added.
type Fragmenter struct {
	room        int
	nextSeqNum  uint64
}

// NewFragmenter constructs a Fragmenter for the given MTU.
func NewFragmenter(mtu int) *Fragmenter {
	var seed [8]byte
	rand.Read(seed[:])
	return &Fragmenter{
		room:       mtu - FragmentOverhead,
		nextSeqNum: binary.BigEndian.Uint64(seed[:]),
	}
}

// Fragment splits payload into one or more Fragments, attaching pitToken
// (if set) only to fragment 0, the way original_source's fragmentImpl
// copies the L3 header onto the first fragment alone. It returns a
// single Fragment with FragCount 1 if payload already fits.
func (f *Fragmenter) Fragment(payload []byte, pitToken PitToken) []Fragment {
	firstRoom := f.room - pitToken.encodedSize()
	if firstRoom <= 0 {
		return nil
	}
	if len(payload) <= firstRoom {
		return []Fragment{{Header: FragmentHeader{FragCount: 1}, PitToken: pitToken, Payload: payload}}
	}
	if f.room <= 0 {
		return nil
	}

	var frags []Fragment
	offset := 0
	for offset < len(payload) {
		room := f.room
		if offset == 0 {
			room = firstRoom
		}
		end := offset + room
		if end > len(payload) {
			end = len(payload)
		}
		frags = append(frags, Fragment{Payload: payload[offset:end]})
		offset = end
	}
	frags[0].PitToken = pitToken

	fragCount := uint8(len(frags))
	base := f.nextSeqNum
	for i := range frags {
		frags[i].Header = FragmentHeader{
			SeqNum:    base + uint64(i),
			FragIndex: uint8(i),
			FragCount: fragCount,
		}
	}
	f.nextSeqNum += uint64(fragCount)
	return frags
}
