// Package events is a small in-process publish/subscribe bus.
//
// Topics are typed, so a listener for ForcedLogout can only ever receive a
// ForcedLogoutNotice. Publish is synchronous and runs listeners on the caller's
// goroutine.
package events

import (
	"fmt"
	"log/slog"
	"sync"
)

type Topic[T any] struct {
	name string
}

func NewTopic[T any](name string) Topic[T] {
	return Topic[T]{name: name}
}

func (t Topic[T]) Name() string {
	return t.name
}

type listener struct {
	id uint64
	fn func(any)
}

type Bus struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listener
	logger    *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bus{
		listeners: make(map[string][]listener),
		logger:    logger,
	}
}

// Subscribe registers fn for topic and returns a func that removes it again.
// Calling the returned func more than once is harmless.
func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[topic.name] = append(b.listeners[topic.name], listener{
		id: id,
		fn: func(v any) { fn(v.(T)) },
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(topic.name, id)
		})
	}
}

func (b *Bus) unsubscribe(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.listeners[name]
	for i, l := range current {
		if l.id != id {
			continue
		}

		// copy so a Publish holding the old slice keeps its snapshot
		next := make([]listener, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)

		if len(next) == 0 {
			delete(b.listeners, name)
		} else {
			b.listeners[name] = next
		}
		return
	}
}

// Publish delivers event to every listener subscribed to topic at the time of
// the call and returns how many were notified. A panicking listener is logged
// and does not stop delivery to the others.
func Publish[T any](b *Bus, topic Topic[T], event T) int {
	b.mu.RLock()
	snapshot := b.listeners[topic.name]
	b.mu.RUnlock()

	for _, l := range snapshot {
		b.deliver(topic.name, l, event)
	}

	return len(snapshot)
}

func (b *Bus) deliver(name string, l listener, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event listener panicked", "topic", name, "error", fmt.Sprint(r))
		}
	}()

	l.fn(event)
}

// Listeners returns the number of listeners currently subscribed to topic.
func Listeners[T any](b *Bus, topic Topic[T]) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[topic.name])
}
