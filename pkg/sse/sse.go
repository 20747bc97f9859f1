// Package sse streams Server-Sent Events to subscribers keyed by user id.
//
//	b := sse.NewBroker()
//	b.Publish(userID, sse.Event{Name: "order.status_changed", Data: payload})
//	r.Get("/api/orders/stream", "orders.stream", func(w http.ResponseWriter, r *http.Request) {
//	    b.Serve(w, r, userID, 25*time.Second)
//	})
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event is one named message. Data is JSON encoded.
type Event struct {
	Name string
	Data any
}

// Stream writes events to one client.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// New sets the event-stream headers and lifts the server write deadline.
func New(w http.ResponseWriter) (*Stream, error) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("sse: clear write deadline: %w", err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &Stream{w: w, rc: rc}
	return s, s.flush()
}

// Send writes a named event.
func (s *Stream) Send(e Event) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("sse: marshal %s: %w", e.Name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Name, payload); err != nil {
		return err
	}
	return s.flush()
}

// Comment writes a comment line, used as a heartbeat.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.flush()
}

func (s *Stream) flush() error {
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("sse: flush: %w", err)
	}
	return nil
}

// Broker fans events out to the subscribers of a key.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint]map[chan Event]struct{}
	buffer int

	done      chan struct{}
	closeOnce sync.Once
}

func NewBroker() *Broker {
	return &Broker{
		subs:   make(map[uint]map[chan Event]struct{}),
		buffer: 16,
		done:   make(chan struct{}),
	}
}

// Close ends every open Serve loop. Streams opened afterwards return
// immediately.
func (b *Broker) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Subscribe registers a subscriber for key. The returned func unsubscribes.
func (b *Broker) Subscribe(key uint) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[chan Event]struct{})
	}
	b.subs[key][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[key], ch)
			if len(b.subs[key]) == 0 {
				delete(b.subs, key)
			}
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every subscriber of key. Slow subscribers lose the
// event rather than block the publisher. It returns the number of
// deliveries.
func (b *Broker) Publish(key uint, e Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for ch := range b.subs[key] {
		select {
		case ch <- e:
			n++
		default:
		}
	}
	return n
}

// Subscribers reports how many streams key has open.
func (b *Broker) Subscribers(key uint) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[key])
}

// Serve streams key's events to the client until it disconnects or the
// broker is closed. A heartbeat comment is written every interval.
func (b *Broker) Serve(w http.ResponseWriter, r *http.Request, key uint, heartbeat time.Duration) error {
	events, cancel := b.Subscribe(key)
	defer cancel()

	stream, err := New(w)
	if err != nil {
		return err
	}

	tick := time.NewTicker(heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case <-b.done:
			return nil
		case e := <-events:
			if err := stream.Send(e); err != nil {
				return err
			}
		case <-tick.C:
			if err := stream.Comment("ping"); err != nil {
				return err
			}
		}
	}
}
