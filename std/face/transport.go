// Package face implements the NDN network layer: transports that move
// raw frames over a link, a Face that classifies received frames and
// dispatches them through a priority-ordered chain of PacketHandlers,
// and send helpers (PIT token, endpoint ID) for replying in kind.
package face

import (
	"sync"
	"sync/atomic"

	"github.com/ndnph-go/ndnph/std/region"
)

// RxCallback is invoked by a Transport for every received frame. region
// is scratch space the callback may use for parsing; it is only valid
// for the duration of the call.
type RxCallback func(r *region.Region, buf []byte, endpointID uint64)

// Transport moves raw NDN frames across one link. Implementations must
// be safe for Send to be called while Loop runs in another goroutine.
type Transport interface {
	// IsUp reports whether the transport can currently send and receive.
	IsUp() bool
	// Loop runs the transport's receive loop until the transport is
	// closed, invoking the registered RxCallback for each frame.
	Loop()
	// Send transmits one frame, returning false on failure.
	Send(buf []byte, endpointID uint64) bool
	// SetRxCallback installs the callback Loop invokes for received
	// frames. Must be called before Loop.
	SetRxCallback(cb RxCallback)
	// MTU returns the largest frame this transport can carry, used by
	// Face to decide when an outgoing packet needs LP fragmentation.
	MTU() int
}

// DefaultMTU is used by transports with no inherent frame-size limit
// (in-process channels, a WebSocket's message framing): large enough
// that ordinary Interest/Data packets never fragment, matching NDN's
// common Ethernet-derived MTU assumption.
const DefaultMTU = 8800

// MemTransport is an in-process Transport backed by channels, used to
// connect two Faces (e.g. an NDNCERT client and server) without a real
// socket, in tests or same-process deployments.
type MemTransport struct {
	rx     chan []byte
	tx     chan []byte
	up     atomic.Bool
	cb     RxCallback
	cbOnce sync.Once
	mtu    int
}

// NewMemTransportPair returns two MemTransports, each other's peer: a
// frame sent on one arrives as a receive on the other.
func NewMemTransportPair() (a, b *MemTransport) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	a = &MemTransport{rx: ba, tx: ab}
	b = &MemTransport{rx: ab, tx: ba}
	a.up.Store(true)
	b.up.Store(true)
	return a, b
}

func (t *MemTransport) IsUp() bool { return t.up.Load() }

func (t *MemTransport) SetRxCallback(cb RxCallback) { t.cb = cb }

func (t *MemTransport) MTU() int {
	if t.mtu > 0 {
		return t.mtu
	}
	return DefaultMTU
}

// SetMTU overrides the transport's MTU, used by tests to exercise Face's
// Fragmenter without a 9000-byte payload.
func (t *MemTransport) SetMTU(mtu int) { t.mtu = mtu }

func (t *MemTransport) Send(buf []byte, endpointID uint64) bool {
	if !t.IsUp() {
		return false
	}
	cp := append([]byte(nil), buf...)
	select {
	case t.tx <- cp:
		return true
	default:
		return false
	}
}

// Loop delivers frames until the peer transport is closed via Close,
// which closes the channel this transport receives on.
func (t *MemTransport) Loop() {
	for buf := range t.rx {
		if t.cb == nil {
			continue
		}
		r := region.New(len(buf) + 64)
		t.cb(r, buf, 0)
	}
}

// Close shuts the transport down so that further Sends fail, and closes
// its outgoing channel, which ends the peer's running Loop. This
// transport's own Loop ends when the peer is closed.
func (t *MemTransport) Close() {
	if t.up.CompareAndSwap(true, false) {
		close(t.tx)
	}
}
