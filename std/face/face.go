package face

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ndnph-go/ndnph/std/lp"
	"github.com/ndnph-go/ndnph/std/log"
	"github.com/ndnph-go/ndnph/std/ndn"
	"github.com/ndnph-go/ndnph/std/region"
	"github.com/ndnph-go/ndnph/std/tlv"
)

type handlerEntry struct {
	handler PacketHandler
	prio    int8
}

// Face is a network-layer face: it owns one Transport, classifies every
// received frame (bare Interest/Data, or LP-wrapped Interest/Data/Nack,
// reassembling fragments as needed), and dispatches the result through
// its PacketHandlers in priority order (smaller prio first) until one
// accepts it.
type Face struct {
	transport  Transport
	fragmenter *lp.Fragmenter

	mu       sync.Mutex
	handlers []handlerEntry

	reassembler lp.Reassembler

	currentPacketInfo *PacketInfo
}

// New constructs a Face bound to transport and wires its receive
// callback. Outgoing packets are split by a Fragmenter sized to
// transport.MTU(), so payloads larger than the link's MTU are spread
// across multiple LP fragments instead of being sent oversize. Call Loop
// to start processing.
func New(transport Transport) *Face {
	f := &Face{transport: transport, fragmenter: lp.NewFragmenter(transport.MTU())}
	transport.SetRxCallback(f.transportRx)
	return f
}

func (f *Face) String() string { return "face" }

// AddHandler inserts h into the handler chain at the given priority
// (lower runs first), preserving insertion order among equal priorities.
// It fails if h is already attached to a Face.
func (f *Face) AddHandler(h PacketHandler, prio int8) bool {
	if owner, ok := h.(interface{ Face() *Face }); ok && owner.Face() != nil {
		return false
	}
	if a, ok := h.(attacher); ok {
		a.attach(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handlerEntry{handler: h, prio: prio})
	sort.SliceStable(f.handlers, func(i, j int) bool { return f.handlers[i].prio < f.handlers[j].prio })
	return true
}

// RemoveHandler detaches h from the chain.
func (f *Face) RemoveHandler(h PacketHandler) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, entry := range f.handlers {
		if entry.handler == h {
			f.handlers = append(f.handlers[:i], f.handlers[i+1:]...)
			if a, ok := h.(attacher); ok {
				a.detach()
			}
			return true
		}
	}
	return false
}

// Loop runs the underlying transport's receive loop. It blocks until the
// transport stops.
func (f *Face) Loop() { f.transport.Loop() }

func (f *Face) snapshotHandlers() []handlerEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]handlerEntry(nil), f.handlers...)
}

func (f *Face) transportRx(r *region.Region, buf []byte, endpointID uint64) {
	pc, err := lp.DecodeFrom(buf)
	if err != nil {
		log.Debug(f, "failed to classify received frame", "err", err)
		return
	}

	if pc.Type == lp.TypeFragment {
		if !f.reassembler.Add(pc) {
			return
		}
		l3, payload := f.reassembler.Reassembled()
		inner, err := lp.DecodeFrom(payload)
		if err != nil {
			log.Debug(f, "failed to classify reassembled frame", "err", err)
			return
		}
		inner.L3 = l3
		pc = inner
	}

	pi := PacketInfo{EndpointID: endpointID, PitToken: pc.L3.PitToken}
	f.currentPacketInfo = &pi
	defer func() { f.currentPacketInfo = nil }()

	switch pc.Type {
	case lp.TypeInterest:
		it, err := decodeInterest(pc.Payload)
		if err != nil {
			log.Debug(f, "failed to parse interest", "err", err)
			return
		}
		f.dispatch(func(h PacketHandler) bool { return h.ProcessInterest(it) })
	case lp.TypeData:
		d, err := decodeData(pc.Payload)
		if err != nil {
			log.Debug(f, "failed to parse data", "err", err)
			return
		}
		f.dispatch(func(h PacketHandler) bool { return h.ProcessData(d) })
	case lp.TypeNack:
		it, err := decodeInterest(pc.Payload)
		if err != nil {
			log.Debug(f, "failed to parse nacked interest", "err", err)
			return
		}
		nack := &ndn.Nack{Interest: it, Reason: pc.L3.NackReason}
		f.dispatch(func(h PacketHandler) bool { return h.ProcessNack(nack) })
	default:
		log.Debug(f, "dropping unrecognized frame")
	}
}

func (f *Face) dispatch(call func(PacketHandler) bool) {
	for _, entry := range f.snapshotHandlers() {
		if call(entry.handler) {
			return
		}
	}
}

func decodeInterest(wire []byte) (*ndn.Interest, error) {
	d := tlv.NewDecoder(wire)
	el, ok := d.Next()
	if !ok {
		return nil, fmt.Errorf("face: empty interest frame")
	}
	it, err := ndn.ParseInterest(el)
	if err != nil {
		return nil, err
	}
	if err := it.CheckDigest(); err != nil {
		return nil, err
	}
	return it, nil
}

func decodeData(wire []byte) (*ndn.Data, error) {
	d := tlv.NewDecoder(wire)
	el, ok := d.Next()
	if !ok {
		return nil, fmt.Errorf("face: empty data frame")
	}
	return ndn.ParseData(el)
}
