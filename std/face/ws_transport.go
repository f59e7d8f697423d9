package face

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/ndnph-go/ndnph/std/log"
	"github.com/ndnph-go/ndnph/std/region"
)

// WsTransport carries NDN frames over a WebSocket connection, acting as
// either the dialing client or the server side of an already-upgraded
// connection.
type WsTransport struct {
	conn    *websocket.Conn
	up      atomic.Bool
	cb      RxCallback
	sendMut sync.Mutex
	mtu     int
}

// DialWs opens a WebSocket connection to url and wraps it as a
// Transport.
func DialWs(url string) (*WsTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return NewWsTransport(conn), nil
}

// NewWsTransport wraps an already-established WebSocket connection, such
// as one accepted by an http.Handler using websocket.Upgrader.
func NewWsTransport(conn *websocket.Conn) *WsTransport {
	t := &WsTransport{conn: conn, mtu: DefaultMTU}
	t.up.Store(true)
	return t
}

func (t *WsTransport) IsUp() bool { return t.up.Load() }

func (t *WsTransport) SetRxCallback(cb RxCallback) { t.cb = cb }

// MTU returns the largest frame this transport will send unfragmented.
// A WebSocket message has no inherent size limit, so this is a policy
// ceiling rather than a link constraint; SetMTU overrides it, e.g. to
// match a known-constrained peer.
func (t *WsTransport) MTU() int { return t.mtu }

// SetMTU overrides the transport's MTU, used by Face's Fragmenter.
func (t *WsTransport) SetMTU(mtu int) { t.mtu = mtu }

func (t *WsTransport) Send(buf []byte, endpointID uint64) bool {
	if !t.IsUp() {
		return false
	}
	t.sendMut.Lock()
	defer t.sendMut.Unlock()
	if err := t.conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
		log.Warn(t, "websocket write failed", "err", err)
		return false
	}
	return true
}

// Loop reads frames until the connection closes or errors.
func (t *WsTransport) Loop() {
	defer t.up.Store(false)
	for t.IsUp() {
		messageType, buf, err := t.conn.ReadMessage()
		if err != nil {
			log.Debug(t, "websocket closed", "err", err)
			return
		}
		if messageType != websocket.BinaryMessage {
			continue
		}
		if t.cb == nil {
			continue
		}
		r := region.New(len(buf) + 64)
		t.cb(r, buf, 0)
	}
}

func (t *WsTransport) String() string { return "ws-transport" }
