package server

import (
	"sync"

	"gostomp/codec/stomp"
)

// Topic fans every message out to all current subscribers.
type Topic struct {
	Destination string
	mu          sync.Mutex
	subscribers map[string]*subscriber
}

func NewTopic(destination string) *Topic {
	return &Topic{
		Destination: destination,
		subscribers: make(map[string]*subscriber),
	}
}

func (t *Topic) Send(fr *stomp.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, sub := range t.subscribers {
		out := fr.Clone()
		out.Header.Set(stomp.HdrSubscription, sub.id)
		sub.write(out)
	}
}

func (t *Topic) Subscribe(sub *subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers[sub.id] = sub
}

func (t *Topic) Unsubscribe(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.subscribers, id)
}
