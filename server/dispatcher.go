package server

import (
	"strconv"
	"strings"
	"sync"

	"gostomp/codec/stomp"
	"gostomp/comm/sequence"
)

// subscriber is one subscription's delivery endpoint. write hands a frame
// to the owning client; it must not block indefinitely.
type subscriber struct {
	id    string
	write func(fr *stomp.Frame)
}

type Dispatcher interface {
	Send(fr *stomp.Frame)
	Subscribe(sub *subscriber)
	Unsubscribe(id string)
}

// Broker owns the destination table. Destinations under /queue get
// round-robin queues, everything else fan-out topics.
type Broker struct {
	mu          sync.Mutex
	dispatchers map[string]Dispatcher
	seq         sequence.Seq32
}

func NewBroker(seq sequence.Seq32) *Broker {
	return &Broker{
		dispatchers: make(map[string]Dispatcher),
		seq:         seq,
	}
}

func (b *Broker) Get(destination string) Dispatcher {
	b.mu.Lock()
	defer b.mu.Unlock()
	dispatcher, ok := b.dispatchers[destination]
	if !ok {
		if strings.HasPrefix(destination, "/queue") {
			dispatcher = NewQueue(destination)
		} else {
			dispatcher = NewTopic(destination)
		}
		b.dispatchers[destination] = dispatcher
	}
	return dispatcher
}

func (b *Broker) NextMessageId() string {
	return strconv.FormatInt(int64(b.seq.NextVal()), 10)
}
