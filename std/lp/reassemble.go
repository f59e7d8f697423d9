package lp

// Reassembler rebuilds one fragmented network-layer packet from an
// in-order stream of Fragments sharing one FragCount. A fragment that
// arrives out of order, skips an index, or belongs to another packet
// discards the packet in progress. It holds at most one in-progress
// packet at a time; starting a new packet (fragIndex 0) silently
// discards whatever was in progress.
type Reassembler struct {
	active    bool
	seqBase   uint64
	fragCount uint8
	l3        L3Header
	next      uint8
	buf       []byte
}

// Discard abandons any in-progress packet.
func (r *Reassembler) Discard() {
	r.active = false
	r.buf = nil
	r.next = 0
}

// Add feeds one fragment into the reassembler. It returns true once the
// fragment it was given completes the in-progress packet, in which case
// Reassembled returns the full payload and L3 header.
func (r *Reassembler) Add(f PacketClassify) bool {
	if f.Fragment.FragIndex == 0 {
		r.begin(f)
	} else {
		if !r.append(f) {
			return false
		}
	}
	return r.active && r.next == r.fragCount
}

func (r *Reassembler) begin(f PacketClassify) {
	r.active = true
	r.seqBase = f.Fragment.SeqNumBase()
	r.fragCount = f.Fragment.FragCount
	r.l3 = f.L3
	r.next = 0
	r.buf = r.buf[:0]
	r.appendChunk(f)
}

func (r *Reassembler) append(f PacketClassify) bool {
	if !r.active {
		return false
	}
	if f.Fragment.SeqNumBase() != r.seqBase || f.Fragment.FragCount != r.fragCount {
		r.Discard()
		return false
	}
	if f.Fragment.FragIndex != r.next {
		r.Discard()
		return false
	}
	r.appendChunk(f)
	return true
}

func (r *Reassembler) appendChunk(f PacketClassify) {
	r.buf = append(r.buf, f.Payload...)
	r.next = f.Fragment.FragIndex + 1
}

// Reassembled returns the completed packet's L3 header and concatenated
// payload. Call only after Add returns true.
func (r *Reassembler) Reassembled() (L3Header, []byte) {
	return r.l3, r.buf
}
