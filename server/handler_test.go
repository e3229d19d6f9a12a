package server

import (
	"encoding/hex"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gostomp/codec/stomp"
	"gostomp/comm/sequence"
)

func randomString(size int) string {
	buf := make([]byte, size)
	rand.Read(buf)
	return hex.EncodeToString(buf)
}

func newTestBroker() *Broker {
	return NewBroker(sequence.NewSnowflake(0, 0))
}

// testClient collects every frame written to one handler.
type testClient struct {
	ch      chan *stomp.Frame
	handler *Handler
}

func newTestClient(t *testing.T, broker *Broker) *testClient {
	c := &testClient{ch: make(chan *stomp.Frame, 16)}
	c.handler = NewHandler(broker, randomString(4), func(fr *stomp.Frame) {
		c.ch <- fr
	})
	c.handler.Handle(stomp.NewFrame(stomp.CmdConnect))
	fr := c.expect(t)
	assert.Equal(t, stomp.CmdConnected, fr.Command)
	return c
}

func (c *testClient) expect(t *testing.T) *stomp.Frame {
	t.Helper()
	select {
	case fr := <-c.ch:
		return fr
	case <-time.NewTimer(100 * time.Millisecond).C:
		t.Fatal("timeout waiting for frame")
		return nil
	}
}

func makeSubscribeFrame(id, destination string) *stomp.Frame {
	fr := stomp.NewFrame(stomp.CmdSubscribe)
	fr.Header.Set(stomp.HdrId, id)
	fr.Header.Set(stomp.HdrDestination, destination)
	return fr
}

func makeSendFrame(destination, body string) *stomp.Frame {
	fr := stomp.NewFrame(stomp.CmdSend)
	fr.Header.Set(stomp.HdrDestination, destination)
	fr.Body = []byte(body)
	return fr
}

func TestHandlerConnect(t *testing.T) {
	broker := newTestBroker()
	c := &testClient{ch: make(chan *stomp.Frame, 16)}
	c.handler = NewHandler(broker, "sess-1", func(fr *stomp.Frame) { c.ch <- fr })

	c.handler.Handle(stomp.NewFrame(stomp.CmdConnect))
	fr := c.expect(t)
	assert.Equal(t, stomp.CmdConnected, fr.Command)
	version, _ := fr.Header.Get(stomp.HdrVersion)
	assert.Equal(t, protocolVersion, version)
	sess, _ := fr.Header.Get(stomp.HdrSession)
	assert.Equal(t, "sess-1", sess)
}

func TestHandlerSendBeforeConnect(t *testing.T) {
	broker := newTestBroker()
	c := &testClient{ch: make(chan *stomp.Frame, 16)}
	c.handler = NewHandler(broker, "sess-1", func(fr *stomp.Frame) { c.ch <- fr })

	c.handler.Handle(makeSendFrame("/queue/x", "too early"))
	fr := c.expect(t)
	assert.Equal(t, stomp.CmdError, fr.Command)
}

func TestHandlerSubscribeAndSend(t *testing.T) {
	var (
		subscriptionId = randomString(8)
		destination    = "/queue/" + randomString(4)
		body           = randomString(16)
	)
	broker := newTestBroker()
	consumer := newTestClient(t, broker)
	producer := newTestClient(t, broker)

	consumer.handler.Handle(makeSubscribeFrame(subscriptionId, destination))
	producer.handler.Handle(makeSendFrame(destination, body))

	fr := consumer.expect(t)
	assert.Equal(t, stomp.CmdMessage, fr.Command)
	assert.Equal(t, []byte(body), fr.Body)
	subId, ok := fr.Header.Get(stomp.HdrSubscription)
	assert.True(t, ok)
	assert.Equal(t, subscriptionId, subId)
	_, ok = fr.Header.Get(stomp.HdrMessageId)
	assert.True(t, ok, "MESSAGE must carry a message-id")
	dest, _ := fr.Header.Get(stomp.HdrDestination)
	assert.Equal(t, destination, dest)
}

func TestHandlerTopicFanOut(t *testing.T) {
	destination := "/topic/" + randomString(4)
	broker := newTestBroker()
	consumer1 := newTestClient(t, broker)
	consumer2 := newTestClient(t, broker)
	producer := newTestClient(t, broker)

	consumer1.handler.Handle(makeSubscribeFrame("sub1", destination))
	consumer2.handler.Handle(makeSubscribeFrame("sub2", destination))
	producer.handler.Handle(makeSendFrame(destination, "fan out"))

	for _, consumer := range []*testClient{consumer1, consumer2} {
		fr := consumer.expect(t)
		assert.Equal(t, stomp.CmdMessage, fr.Command)
		assert.Equal(t, []byte("fan out"), fr.Body)
	}
}

func TestHandlerQueueDispatch(t *testing.T) {
	// messages to distinct queues end up with the matching subscription
	broker := newTestBroker()
	consumer := newTestClient(t, broker)
	producer := newTestClient(t, broker)

	consumer.handler.Handle(makeSubscribeFrame("sid1", "/queue/1"))
	consumer.handler.Handle(makeSubscribeFrame("sid2", "/queue/2"))

	producer.handler.Handle(makeSendFrame("/queue/1", "body1"))
	producer.handler.Handle(makeSendFrame("/queue/2", "body2"))

	bySub := make(map[string]string)
	for i := 0; i < 2; i++ {
		fr := consumer.expect(t)
		sid, _ := fr.Header.Get(stomp.HdrSubscription)
		bySub[sid] = string(fr.Body)
	}
	assert.Equal(t, map[string]string{"sid1": "body1", "sid2": "body2"}, bySub)
}

func TestHandlerUnsubscribe(t *testing.T) {
	destination := "/topic/" + randomString(4)
	broker := newTestBroker()
	consumer := newTestClient(t, broker)
	producer := newTestClient(t, broker)

	consumer.handler.Handle(makeSubscribeFrame("sub1", destination))
	unsub := stomp.NewFrame(stomp.CmdUnsubscribe)
	unsub.Header.Set(stomp.HdrId, "sub1")
	consumer.handler.Handle(unsub)

	producer.handler.Handle(makeSendFrame(destination, "nobody home"))

	select {
	case fr := <-consumer.ch:
		t.Errorf("unexpected frame after unsubscribe: %s", fr)
	case <-time.NewTimer(10 * time.Millisecond).C:
	}
}

func TestHandlerReceipt(t *testing.T) {
	broker := newTestBroker()
	c := newTestClient(t, broker)

	fr := makeSubscribeFrame("sub1", "/topic/r")
	fr.Header.Set(stomp.HdrReceipt, "r-42")
	c.handler.Handle(fr)

	resp := c.expect(t)
	assert.Equal(t, stomp.CmdReceipt, resp.Command)
	receiptId, _ := resp.Header.Get(stomp.HdrReceiptId)
	assert.Equal(t, "r-42", receiptId)
}

func TestHandlerUnknownCommand(t *testing.T) {
	broker := newTestBroker()
	c := newTestClient(t, broker)

	c.handler.Handle(stomp.NewFrame("BOGUS"))
	resp := c.expect(t)
	assert.Equal(t, stomp.CmdError, resp.Command)
	msg, _ := resp.Header.Get(stomp.HdrMessage)
	assert.Contains(t, msg, "BOGUS")
}

func TestHandlerDisconnectDropsSubscriptions(t *testing.T) {
	destination := "/topic/" + randomString(4)
	broker := newTestBroker()
	consumer := newTestClient(t, broker)
	producer := newTestClient(t, broker)

	consumer.handler.Handle(makeSubscribeFrame("sub1", destination))
	consumer.handler.Handle(stomp.NewFrame(stomp.CmdDisconnect))
	producer.handler.Handle(makeSendFrame(destination, "gone"))

	select {
	case fr := <-consumer.ch:
		t.Errorf("unexpected frame after disconnect: %s", fr)
	case <-time.NewTimer(10 * time.Millisecond).C:
	}
}
