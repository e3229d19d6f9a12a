package server

import (
	"fmt"
	"sync"

	"gostomp/codec/stomp"
	"gostomp/comm"
	"gostomp/comm/logging"
)

var log = logging.GetDefaultLogger()

const protocolVersion = "1.2"

// Handler applies broker semantics to one client's inbound frames. write
// delivers outbound frames to the client and must be callable from any
// goroutine (queue deliveries arrive from dispatch goroutines).
type Handler struct {
	broker    *Broker
	write     func(fr *stomp.Frame)
	sessionId string

	mu            sync.Mutex
	connected     bool
	subscriptions map[string]Dispatcher
}

func NewHandler(broker *Broker, sessionId string, write func(fr *stomp.Frame)) *Handler {
	return &Handler{
		broker:        broker,
		write:         write,
		sessionId:     sessionId,
		subscriptions: make(map[string]Dispatcher),
	}
}

func (h *Handler) Handle(fr *stomp.Frame) {
	switch stomp.Canonical(fr.Command) {

	case stomp.CmdConnect, stomp.CmdStomp:
		h.mu.Lock()
		h.connected = true
		h.mu.Unlock()
		resp := stomp.NewFrame(stomp.CmdConnected)
		resp.Header.Set(stomp.HdrVersion, protocolVersion)
		resp.Header.Set(stomp.HdrSession, h.sessionId)
		resp.Header.Set(stomp.HdrServer, Conf.ServerName)
		h.write(resp)

	case stomp.CmdDisconnect:
		h.Disconnect()

	case stomp.CmdSend:
		if !h.isConnected() {
			h.Err("not connected")
			return
		}
		destination, ok := fr.Header.Get(stomp.HdrDestination)
		if !ok {
			h.Err("missing destination header")
			return
		}
		if ct, ok := fr.Header.Get(stomp.HdrContentType); ok {
			if text, err := comm.DecodeText(fr.Body, ct); err == nil {
				log.Debugf("[%-9s] <<< %s %q", "OnTraffic", fr, text)
			}
		}
		out := fr.Clone()
		out.Command = stomp.CmdMessage
		out.Header.Set(stomp.HdrMessageId, h.broker.NextMessageId())
		h.broker.Get(destination).Send(out)

	case stomp.CmdSubscribe:
		if !h.isConnected() {
			h.Err("not connected")
			return
		}
		destination, ok := fr.Header.Get(stomp.HdrDestination)
		if !ok {
			h.Err("missing destination header")
			return
		}
		id, ok := fr.Header.Get(stomp.HdrId)
		if !ok {
			h.Err("missing subscription id header")
			return
		}
		dispatcher := h.broker.Get(destination)
		h.mu.Lock()
		h.subscriptions[id] = dispatcher
		h.mu.Unlock()
		dispatcher.Subscribe(&subscriber{id: id, write: h.write})

	case stomp.CmdUnsubscribe:
		id, ok := fr.Header.Get(stomp.HdrId)
		if !ok {
			h.Err("missing subscription id header")
			return
		}
		h.mu.Lock()
		dispatcher, ok := h.subscriptions[id]
		delete(h.subscriptions, id)
		h.mu.Unlock()
		if ok {
			dispatcher.Unsubscribe(id)
		}

	case stomp.CmdAck, stomp.CmdNack:
		// delivery is at-most-once, nothing to settle

	default:
		h.Err(fmt.Sprintf("unknown command %q", fr.Command))
		return
	}

	if receipt, ok := fr.Header.Get(stomp.HdrReceipt); ok {
		resp := stomp.NewFrame(stomp.CmdReceipt)
		resp.Header.Set(stomp.HdrReceiptId, receipt)
		h.write(resp)
	}
}

// Err reports a protocol violation to the client and drops the session's
// subscriptions.
func (h *Handler) Err(msg string) {
	fr := stomp.NewFrame(stomp.CmdError)
	fr.Header.Set(stomp.HdrMessage, msg)
	h.write(fr)
	h.Disconnect()
}

// Disconnect releases all subscriptions held by this client.
func (h *Handler) Disconnect() {
	h.mu.Lock()
	subscriptions := h.subscriptions
	h.subscriptions = make(map[string]Dispatcher)
	h.connected = false
	h.mu.Unlock()
	for id, dispatcher := range subscriptions {
		dispatcher.Unsubscribe(id)
	}
}

func (h *Handler) isConnected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}
