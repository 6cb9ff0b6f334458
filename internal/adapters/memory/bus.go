// Package memory holds in-process versions of the event bus and session
// store, used when NATS or Valkey are not configured.
package memory

import (
	"context"
	"strings"
	"sync"
)

type subscription struct {
	id      uint64
	pattern []string
	handler func(subject string, data []byte)
}

// Bus is an in-process ports.EventBus with NATS subject matching.
// Handlers run synchronously in the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]subscription
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]subscription)}
}

// Publish delivers data to every matching subscriber.
func (b *Bus) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tokens := strings.Split(subject, ".")

	b.mu.RLock()
	var matched []subscription
	for _, s := range b.subs {
		if Match(s.pattern, tokens) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		s.handler(subject, data)
	}
	return nil
}

// Subscribe registers handler for pattern until the returned func is called.
func (b *Bus) Subscribe(pattern string, handler func(subject string, data []byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = subscription{id: id, pattern: strings.Split(pattern, "."), handler: handler}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}, nil
}

// Ping always succeeds.
func (b *Bus) Ping(context.Context) error { return nil }

// Match reports whether subject tokens match a NATS pattern: "*" matches one
// token and a trailing ">" matches one or more.
func Match(pattern, subject []string) bool {
	for i, p := range pattern {
		if p == ">" {
			return len(subject) > i
		}
		if i >= len(subject) {
			return false
		}
		if p != "*" && p != subject[i] {
			return false
		}
	}
	return len(pattern) == len(subject)
}
