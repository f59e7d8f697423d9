package ndn

// Nack pairs a rejected Interest with the forwarder's reason for
// rejecting it. Nack has no TLV encoding of its own: on the wire it is
// carried as an LP packet whose payload is the original Interest and
// whose Nack/NackReason headers (see package lp) record Reason.
type Nack struct {
	Interest *Interest
	Reason   uint64
}
