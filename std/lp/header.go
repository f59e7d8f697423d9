package lp

import (
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// FragmentHeader carries the NDNLPv2 fragmentation fields.
type FragmentHeader struct {
	SeqNum    uint64
	FragIndex uint8
	FragCount uint8 // 1 means "not fragmented"
}

// SeqNumBase returns the sequence number of fragment 0 of this
// fragment's packet, used by the Reassembler to detect interleaved
// packets sharing one LpPacket stream.
func (h FragmentHeader) SeqNumBase() uint64 {
	return h.SeqNum - uint64(h.FragIndex)
}

// EncodeTo implements tlv.Appendable. It is a no-op when FragCount <= 1:
// single-fragment packets carry no fragmentation headers at all.
func (h FragmentHeader) EncodeTo(e *tlv.Encoder) {
	if h.FragCount <= 1 {
		return
	}
	e.PrependTLV(ndn.TypeFragCount, false, tlv.NNI(h.FragCount))
	e.PrependTLV(ndn.TypeFragIndex, false, tlv.NNI(h.FragIndex))
	e.PrependTLV(ndn.TypeLpSeqNum, false, tlv.NNI(h.SeqNum))
}

// L3Header is the decoded set of per-fragment link headers relevant to
// the network layer: the PIT token, and (if a Nack header was present)
// the NackReason carried alongside a Nack'd Interest.
type L3Header struct {
	PitToken   PitToken
	NackReason uint64
	HasNack    bool
}
