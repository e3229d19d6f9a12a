package server

import (
	"sync"

	"gostomp/codec/stomp"
)

type queueSubscription struct {
	stop chan struct{}
}

// Queue delivers each message to exactly one subscriber: every subscription
// runs a goroutine competing on the shared channel.
type Queue struct {
	Destination   string
	ch            chan *stomp.Frame
	mu            sync.Mutex
	subscriptions map[string]*queueSubscription
}

func NewQueue(destination string) *Queue {
	return &Queue{
		Destination:   destination,
		ch:            make(chan *stomp.Frame, 8),
		subscriptions: make(map[string]*queueSubscription),
	}
}

func (q *Queue) Send(fr *stomp.Frame) {
	q.ch <- fr
}

func (q *Queue) Subscribe(sub *subscriber) {
	qs := &queueSubscription{
		stop: make(chan struct{}),
	}
	q.mu.Lock()
	q.subscriptions[sub.id] = qs
	q.mu.Unlock()
	go func() {
		for {
			select {
			case <-qs.stop:
				return
			case fr := <-q.ch:
				out := fr.Clone()
				out.Header.Set(stomp.HdrSubscription, sub.id)
				sub.write(out)
			}
		}
	}()
}

func (q *Queue) Unsubscribe(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if qs, ok := q.subscriptions[id]; ok {
		close(qs.stop)
		delete(q.subscriptions, id)
	}
}
