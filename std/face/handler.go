package face

import (
	"github.com/ndnph-go/ndnph/std/lp"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

// PacketInfo describes the link-layer context a packet arrived with (or
// should be sent with): which endpoint originated/should receive it, and
// the PIT token that correlates an Interest with its reply.
type PacketInfo struct {
	EndpointID uint64
	PitToken   lp.PitToken
}

// SendModifier adjusts a PacketInfo before Face.Send uses it, letting
// callers compose e.g. WithPitToken and WithEndpointId without a
// combinatorial set of Send overloads.
type SendModifier func(*PacketInfo)

// WithPitToken sets the PIT token a reply should echo.
func WithPitToken(token lp.PitToken) SendModifier {
	return func(pi *PacketInfo) { pi.PitToken = token }
}

// WithEndpointId directs a send to a specific transport endpoint.
func WithEndpointId(id uint64) SendModifier {
	return func(pi *PacketInfo) { pi.EndpointID = id }
}

// PacketHandler receives classified packets from a Face. Each method
// returns true if it has accepted (fully handled) the packet, stopping
// further handlers in the chain from seeing it.
type PacketHandler interface {
	ProcessInterest(it *ndn.Interest) bool
	ProcessData(d *ndn.Data) bool
	ProcessNack(n *ndn.Nack) bool
}

// BaseHandler implements PacketHandler with all-reject defaults and
// provides Send/Reply helpers once embedded and attached to a Face via
// Face.AddHandler. Embedders override only the Process* methods they
// care about.
type BaseHandler struct {
	face *Face
}

func (h *BaseHandler) ProcessInterest(*ndn.Interest) bool { return false }
func (h *BaseHandler) ProcessData(*ndn.Data) bool         { return false }
func (h *BaseHandler) ProcessNack(*ndn.Nack) bool         { return false }

// Face returns the Face this handler is attached to, or nil.
func (h *BaseHandler) Face() *Face { return h.face }

// attacher is implemented by BaseHandler so Face.AddHandler can record
// itself on any PacketHandler that embeds BaseHandler, without requiring
// every PacketHandler implementation to plumb the pointer through by
// hand.
type attacher interface {
	attach(*Face)
	detach()
}

func (h *BaseHandler) attach(f *Face) { h.face = f }
func (h *BaseHandler) detach()        { h.face = nil }

// Send encodes and transmits packet (an *ndn.Interest or *ndn.Data; use
// Nack to reject an Interest instead), wrapping it in one or more LP
// fragments as needed, and applying any SendModifiers over a zero-value
// PacketInfo.
func (h *BaseHandler) Send(packet tlv.Appendable, mods ...SendModifier) bool {
	var pi PacketInfo
	for _, m := range mods {
		m(&pi)
	}
	return h.SendWithInfo(packet, pi)
}

// SendWithInfo is like Send but starts from an explicit PacketInfo
// instead of building one from modifiers. The packet is handed to the
// Face's Fragmenter, so it may be split across several LP fragments if it
// exceeds the transport's MTU.
func (h *BaseHandler) SendWithInfo(packet tlv.Appendable, pi PacketInfo) bool {
	if h.face == nil {
		return false
	}
	r := region.New(9000)
	e := tlv.NewEncoder(r)
	packet.EncodeTo(e)
	wire := e.Bytes()
	if wire == nil {
		return false
	}
	return h.sendFragments(r, h.face.fragmenter.Fragment(wire, pi.PitToken), pi.EndpointID)
}

// Reply sends packet using the PacketInfo (PIT token, endpoint) of the
// packet currently being processed by this handler. Valid only while one
// of ProcessInterest/ProcessData/ProcessNack is executing.
func (h *BaseHandler) Reply(packet tlv.Appendable) bool {
	if h.face == nil || h.face.currentPacketInfo == nil {
		return false
	}
	return h.SendWithInfo(packet, *h.face.currentPacketInfo)
}

// Nack rejects it, the Interest currently being processed by this
// handler, replying with an LP Nack carrying reason. Valid only while
// ProcessInterest is executing.
func (h *BaseHandler) Nack(it *ndn.Interest, reason uint64) bool {
	if h.face == nil || h.face.currentPacketInfo == nil {
		return false
	}
	frag, err := lp.EncodeNack(it, reason)
	if err != nil {
		return false
	}
	frag.PitToken = h.face.currentPacketInfo.PitToken
	r := region.New(9000)
	e := tlv.NewEncoder(r)
	frag.EncodeTo(e)
	final := e.Bytes()
	if final == nil {
		return false
	}
	return h.face.transport.Send(final, h.face.currentPacketInfo.EndpointID)
}

// sendFragments encodes and transmits every Fragment in frags, each as
// its own LP frame, using r for scratch space. It returns false (without
// sending any frame) if frags is empty, which happens when the
// Fragmenter's MTU leaves no room for any payload.
func (h *BaseHandler) sendFragments(r *region.Region, frags []lp.Fragment, endpointID uint64) bool {
	if len(frags) == 0 {
		return false
	}
	for _, frag := range frags {
		e := tlv.NewEncoder(r)
		frag.EncodeTo(e)
		final := e.Bytes()
		if final == nil {
			return false
		}
		if !h.face.transport.Send(final, endpointID) {
			return false
		}
	}
	return true
}
