package lp

import (
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// Type identifies what kind of network-layer packet a decoded LpPacket
// (or bare L3 packet) carries.
type Type int

const (
	// TypeNone is returned when decoding fails or the frame is empty.
	TypeNone Type = iota
	// TypeFragment means the frame is one fragment of a still-incomplete
	// packet; the caller must feed it to a Reassembler.
	TypeFragment
	TypeInterest
	TypeData
	TypeNack
)

// lpHeaderCritical implements the NDNLPv2 criticality rule, which differs
// from the general TLV rule: header TLV-TYPEs in [800, 959] are critical
// only if (type & 0x3) != 0; everything else falls back to the normal
// (type <= 31 || odd) rule.
func lpHeaderCritical(t tlv.VarNum) bool {
	v := uint64(t)
	if v >= 800 && v <= 959 {
		return v&3 != 0
	}
	return v <= 31 || v%2 == 1
}

// PacketClassify is the result of decoding one received frame: its LP
// headers (if any) plus the identity of the network-layer packet it
// carries, without fully parsing that packet's fields.
type PacketClassify struct {
	Type     Type
	L3       L3Header
	Fragment FragmentHeader
	Payload  []byte // the undecoded Interest, Data, or Nack'd Interest bytes
}

// DecodeFrom classifies a single received frame, which may be a bare
// top-level Interest or Data TLV, or an LpPacket wrapping one (optionally
// fragmented, optionally carrying a PIT token or Nack header).
func DecodeFrom(wire []byte) (PacketClassify, error) {
	d := tlv.NewDecoder(wire)
	el, ok := d.Next()
	if !ok {
		return PacketClassify{}, d.Err()
	}

	if el.Type != ndn.TypeLpPacket {
		return classifyPayload(el.Type, wire)
	}

	var pc PacketClassify
	ev := tlv.NewEvDecoder(ndn.TypeLpPacket).CriticalityFunc(lpHeaderCritical).
		Rule(ndn.TypeLpSeqNum, false, 1, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			pc.Fragment.SeqNum = uint64(v)
			return err
		}).
		Rule(ndn.TypeFragIndex, false, 2, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			pc.Fragment.FragIndex = uint8(v)
			return err
		}).
		Rule(ndn.TypeFragCount, false, 3, func(e tlv.Element) error {
			v, err := tlv.ParseNNI(e.Value)
			pc.Fragment.FragCount = uint8(v)
			return err
		}).
		Rule(ndn.TypePitToken, false, 4, func(e tlv.Element) error {
			pc.L3.PitToken.Set(e.Value)
			return nil
		}).
		Rule(ndn.TypeNack, false, 5, func(e tlv.Element) error {
			pc.L3.HasNack = true
			inner := tlv.NewEvDecoder(ndn.TypeNack).
				Rule(ndn.TypeNackReason, false, 1, func(e tlv.Element) error {
					v, err := tlv.ParseNNI(e.Value)
					pc.L3.NackReason = uint64(v)
					return err
				})
			return inner.DecodeValue(e.Value)
		}).
		Rule(ndn.TypeLpPayload, false, 6, func(e tlv.Element) error {
			pc.Payload = e.Value
			return nil
		})
	if err := ev.Decode(el); err != nil {
		return PacketClassify{}, err
	}

	if pc.Fragment.FragCount > 1 {
		pc.Type = TypeFragment
		return pc, nil
	}

	payloadType, err := classifyPayload(0, pc.Payload)
	if err != nil {
		return PacketClassify{}, err
	}
	pc.Type = payloadType.Type
	if pc.L3.HasNack && pc.Type == TypeInterest {
		pc.Type = TypeNack
	}
	return pc, nil
}

// classifyPayload inspects the first TLV element of a bare L3 payload
// (outerType, if nonzero, is the already-decoded type of that element) to
// tell Interest apart from Data.
func classifyPayload(outerType tlv.VarNum, wire []byte) (PacketClassify, error) {
	t := outerType
	if t == 0 {
		d := tlv.NewDecoder(wire)
		el, ok := d.Next()
		if !ok {
			return PacketClassify{}, d.Err()
		}
		t = el.Type
	}
	switch t {
	case ndn.TypeInterest:
		return PacketClassify{Type: TypeInterest, Payload: wire}, nil
	case ndn.TypeData:
		return PacketClassify{Type: TypeData, Payload: wire}, nil
	default:
		return PacketClassify{Type: TypeNone, Payload: wire}, nil
	}
}
