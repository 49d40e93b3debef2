package messagebroker

import (
	"context"
	"sync"
)

// MemoryBroker is an in-process Broker used in tests and single-node runs.
// Handlers run synchronously on the publishing goroutine; within a queue
// group only the first subscriber receives each message, mirroring NATS
// queue semantics closely enough for this service's single-worker groups.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string][]*memorySubscription
	closed bool
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

type memoryMessage struct {
	subject string
	data    []byte
}

func (m memoryMessage) Subject() string { return m.subject }
func (m memoryMessage) Data() []byte    { return m.data }

type memorySubscription struct {
	broker     *MemoryBroker
	subject    string
	queueGroup string
	handler    MsgHandler
}

func (s *memorySubscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()
	subs := s.broker.subs[s.subject]
	for i, sub := range subs {
		if sub == s {
			s.broker.subs[s.subject] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	return nil
}

// Publish delivers data to one subscriber per queue group on the subject.
func (b *MemoryBroker) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.RLock()
	var targets []MsgHandler
	seenGroups := make(map[string]bool)
	for _, sub := range b.subs[subject] {
		if sub.queueGroup != "" {
			if seenGroups[sub.queueGroup] {
				continue
			}
			seenGroups[sub.queueGroup] = true
		}
		targets = append(targets, sub.handler)
	}
	b.mu.RUnlock()

	msg := memoryMessage{subject: subject, data: data}
	for _, handler := range targets {
		handler(msg)
	}
	return nil
}

// Subscribe registers a handler for subject within queueGroup.
func (b *MemoryBroker) Subscribe(ctx context.Context, subject, queueGroup string, handler MsgHandler) (Subscription, error) {
	sub := &memorySubscription{broker: b, subject: subject, queueGroup: queueGroup, handler: handler}
	b.mu.Lock()
	b.subs[subject] = append(b.subs[subject], sub)
	b.mu.Unlock()
	return sub, nil
}

// Close drops all subscriptions.
func (b *MemoryBroker) Close() {
	b.mu.Lock()
	b.subs = make(map[string][]*memorySubscription)
	b.closed = true
	b.mu.Unlock()
}
