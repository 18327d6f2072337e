// Package realtime delivers row change notifications to in-process
// subscribers. Subscribers register for a topic and receive every event
// published to it until they unsubscribe.
package realtime

import (
	"context"
	"sync"
	"time"
)

// Event is a change notification for one row.
type Event struct {
	Type     string    `json:"type"`
	Topic    string    `json:"topic"`
	Table    string    `json:"table"`
	RecordID string    `json:"recordId,omitempty"`
	At       time.Time `json:"at"`
}

const EventInsert = "INSERT"

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber hands out topic subscriptions.
type Subscriber interface {
	Subscribe(topic string) *Subscription
}

// Subscription receives the events of one topic on C. Close it to stop
// delivery; C is closed afterwards.
type Subscription struct {
	C     <-chan Event
	ch    chan Event
	topic string
	hub   *Hub
	once  sync.Once
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub tracks subscriptions per topic. All operations are safe for
// concurrent use.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, topic: topic, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Subscription]struct{})
	}
	h.topics[topic][sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.topics[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, sub.topic)
		}
	}
	close(sub.ch)
}

// Publish delivers event to every subscriber of event.Topic. A subscriber
// whose buffer is full misses the event instead of blocking the publisher.
func (h *Hub) Publish(_ context.Context, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[event.Topic] {
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// TopicCount returns the number of subscriptions on topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
