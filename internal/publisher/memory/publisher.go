// Package memory keeps audit, lead and outreach events in process so tests
// and local runs can assert on them without a Pub/Sub emulator.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// Publisher stores published events for inspection.
type Publisher struct {
	mu       sync.RWMutex
	messages []PublishedMessage
}

// PublishedMessage captures one publish call. Attributes mirror what the
// Pub/Sub publisher would attach, so subscription filters can be checked.
type PublishedMessage struct {
	Topic      string
	Payload    any
	Attributes map[string]string
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a pseudo message ID.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	msg := PublishedMessage{Topic: topic, Payload: payload, Attributes: map[string]string{}}
	if attributed, ok := payload.(interface{ Attributes() map[string]string }); ok {
		maps.Copy(msg.Attributes, attributed.Attributes())
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return fmt.Sprintf("memory-%d", len(p.messages)), nil
}

// Messages returns a copy of the recorded publishes.
func (p *Publisher) Messages() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]PublishedMessage(nil), p.messages...)
}

// EventTypes lists the event_type attribute of every publish, in order.
func (p *Publisher) EventTypes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	types := make([]string, 0, len(p.messages))
	for _, msg := range p.messages {
		types = append(types, msg.Attributes["event_type"])
	}
	return types
}
