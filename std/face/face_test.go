package face

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndnph-go/ndnph/std/ndn"
)

type echoHandler struct {
	BaseHandler
	gotInterest chan *ndn.Interest
}

func (h *echoHandler) ProcessInterest(it *ndn.Interest) bool {
	h.gotInterest <- it
	d := ndn.NewData(it.Name, []byte("hello"))
	h.Reply(d)
	return true
}

type collectHandler struct {
	BaseHandler
	gotData chan *ndn.Data
}

func (h *collectHandler) ProcessData(d *ndn.Data) bool {
	h.gotData <- d
	return true
}

func TestFaceRoundTripsInterestAndData(t *testing.T) {
	ta, tb := NewMemTransportPair()
	serverFace := New(ta)
	clientFace := New(tb)

	server := &echoHandler{gotInterest: make(chan *ndn.Interest, 1)}
	require.True(t, serverFace.AddHandler(server, 0))

	client := &collectHandler{gotData: make(chan *ndn.Data, 1)}
	require.True(t, clientFace.AddHandler(client, 0))

	go serverFace.Loop()
	go clientFace.Loop()
	defer ta.Close()
	defer tb.Close()

	n, err := ndn.ParseName("/echo/test")
	require.NoError(t, err)
	it := ndn.NewInterest(n)
	_, err = it.Encode()
	require.NoError(t, err)
	require.True(t, client.Send(it))

	select {
	case got := <-server.gotInterest:
		assert.True(t, got.Name.Equal(n))
	case <-time.After(time.Second):
		t.Fatal("server never received interest")
	}

	select {
	case d := <-client.gotData:
		assert.True(t, d.Name.Equal(n))
		assert.Equal(t, []byte("hello"), d.Content)
	case <-time.After(time.Second):
		t.Fatal("client never received data")
	}
}

func TestAddHandlerRejectsDoubleAttach(t *testing.T) {
	ta, tb := NewMemTransportPair()
	defer ta.Close()
	defer tb.Close()

	f1 := New(ta)
	f2 := New(tb)
	h := &echoHandler{gotInterest: make(chan *ndn.Interest, 1)}
	require.True(t, f1.AddHandler(h, 0))
	assert.False(t, f2.AddHandler(h, 0))
}

func TestHandlerPriorityOrdering(t *testing.T) {
	ta, tb := NewMemTransportPair()
	defer ta.Close()
	defer tb.Close()

	f := New(ta)
	var order []int
	mk := func(id int) *orderHandler { return &orderHandler{id: id, order: &order} }
	require.True(t, f.AddHandler(mk(2), 5))
	require.True(t, f.AddHandler(mk(1), 0))
	require.True(t, f.AddHandler(mk(3), 10))

	go f.Loop()
	n, _ := ndn.ParseName("/x")
	it := ndn.NewInterest(n)
	_, _ = it.Encode()
	g := New(tb)
	h2 := &collectHandler{gotData: make(chan *ndn.Data, 1)}
	g.AddHandler(h2, 0)
	_ = h2.Send(it)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3}, order)
}

type nackingHandler struct {
	BaseHandler
	reason uint64
}

func (h *nackingHandler) ProcessInterest(it *ndn.Interest) bool {
	h.Nack(it, h.reason)
	return true
}

func TestHandlerNackSendsLpNack(t *testing.T) {
	ta, tb := NewMemTransportPair()
	serverFace := New(ta)
	clientFace := New(tb)
	defer ta.Close()
	defer tb.Close()

	server := &nackingHandler{reason: ndn.NackReasonNoRoute}
	require.True(t, serverFace.AddHandler(server, 0))

	gotNack := make(chan *ndn.Nack, 1)
	client := &nackHandler{got: gotNack}
	require.True(t, clientFace.AddHandler(client, 0))

	go serverFace.Loop()
	go clientFace.Loop()

	n, err := ndn.ParseName("/nack/me")
	require.NoError(t, err)
	it := ndn.NewInterest(n)
	require.True(t, client.Send(it))

	select {
	case nack := <-gotNack:
		assert.True(t, nack.Interest.Name.Equal(n))
		assert.EqualValues(t, ndn.NackReasonNoRoute, nack.Reason)
	case <-time.After(time.Second):
		t.Fatal("client never received nack")
	}
}

type nackHandler struct {
	BaseHandler
	got chan *ndn.Nack
}

func (h *nackHandler) ProcessNack(n *ndn.Nack) bool {
	h.got <- n
	return true
}

type bigReplyHandler struct {
	BaseHandler
	content []byte
}

func (h *bigReplyHandler) ProcessInterest(it *ndn.Interest) bool {
	h.Reply(ndn.NewData(it.Name, h.content))
	return true
}

func TestSendWithInfoFragmentsPayloadLargerThanMtu(t *testing.T) {
	ta, tb := NewMemTransportPair()
	ta.SetMTU(128)
	tb.SetMTU(128)
	serverFace := New(ta)
	clientFace := New(tb)
	defer ta.Close()
	defer tb.Close()

	content := make([]byte, 500)
	for i := range content {
		content[i] = byte(i)
	}
	server := &bigReplyHandler{content: content}
	require.True(t, serverFace.AddHandler(server, 0))
	client := &collectHandler{gotData: make(chan *ndn.Data, 1)}
	require.True(t, clientFace.AddHandler(client, 0))

	go serverFace.Loop()
	go clientFace.Loop()

	n, err := ndn.ParseName("/big/data")
	require.NoError(t, err)
	it := ndn.NewInterest(n)
	require.True(t, client.Send(it))

	select {
	case d := <-client.gotData:
		assert.True(t, d.Name.Equal(n))
		assert.Equal(t, content, d.Content)
	case <-time.After(time.Second):
		t.Fatal("client never received fragmented reply")
	}
}

type orderHandler struct {
	BaseHandler
	id    int
	order *[]int
}

func (h *orderHandler) ProcessInterest(*ndn.Interest) bool {
	*h.order = append(*h.order, h.id)
	return false
}
