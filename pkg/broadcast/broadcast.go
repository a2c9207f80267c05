// Package broadcast provides in-process publish/subscribe channels.
//
// Two flavors are offered. A Latest channel retains the most recently
// published value and hands it to every new subscriber first. A Plain
// channel retains nothing; subscribers only observe values published after
// they subscribed.
//
// Every subscriber owns a FIFO queue drained by its own goroutine, so a
// slow subscriber never blocks publishers or other subscribers, and values
// reach each subscriber in publish order.
package broadcast

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/pkg/logging"
)

// Channel is a combined publish and subscribe endpoint.
type Channel[T any] interface {
	// Publish delivers v to all current subscribers.
	Publish(v T)

	// Subscribe registers a new subscriber.
	Subscribe() *Subscription[T]

	// SubscriberCount returns the number of active subscribers.
	SubscriberCount() int

	// Close ends all subscriptions. Later publishes are dropped.
	Close()
}

// Observer is notified about channel activity, typically to record metrics.
type Observer interface {
	Published(channel string, subscribers int)
	Subscribed(channel string, subscribers int)
	Canceled(channel string, subscribers int)
}

// Option configures a channel.
type Option func(*settings)

type settings struct {
	name     string
	logger   *zerolog.Logger
	observer Observer
}

// WithName sets the channel name used in logs and observer callbacks.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets the channel logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers an observer for channel activity.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// topic is the subscriber set shared by both channel flavors.
type topic[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
	settings
}

func (t *topic[T]) init(opts []Option) {
	t.subs = make(map[*Subscription[T]]struct{})
	t.name = "unnamed"
	t.logger = logging.NewNopLogger()
	for _, opt := range opts {
		opt(&t.settings)
	}
}

// publish computes the next value and enqueues it for every subscriber
// while holding the lock, which makes one publish a single atomic broadcast
// step. next and retain run under the same lock. A false second result from
// next skips the publish.
func (t *topic[T]) publish(next func() (T, bool), retain func(T)) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.logger.Warn().Str("channel", t.name).Msg("Publish on closed channel dropped")
		return
	}
	v, ok := next()
	if !ok {
		t.mu.Unlock()
		return
	}
	if retain != nil {
		retain(v)
	}
	for sub := range t.subs {
		sub.enqueue(v)
	}
	n := len(t.subs)
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.Published(t.name, n)
	}
	t.logger.Trace().
		Str("channel", t.name).
		Int("subscribers", n).
		Msg("Value published")
}

// subscribe registers a subscriber. initial, if set, supplies the value the
// subscriber observes first; it runs under the lock so no publish can slip
// in between.
func (t *topic[T]) subscribe(initial func() T) *Subscription[T] {
	sub := newSubscription[T](t.remove)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		sub.once.Do(sub.stop)
		return sub
	}
	if initial != nil {
		sub.enqueue(initial())
	}
	t.subs[sub] = struct{}{}
	n := len(t.subs)
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.Subscribed(t.name, n)
	}
	t.logger.Debug().
		Str("channel", t.name).
		Str("subscription_id", sub.id).
		Int("subscribers", n).
		Msg("Subscriber registered")
	return sub
}

func (t *topic[T]) remove(sub *Subscription[T]) {
	t.mu.Lock()
	if _, ok := t.subs[sub]; !ok {
		t.mu.Unlock()
		return
	}
	delete(t.subs, sub)
	n := len(t.subs)
	t.mu.Unlock()

	if t.observer != nil {
		t.observer.Canceled(t.name, n)
	}
	t.logger.Debug().
		Str("channel", t.name).
		Str("subscription_id", sub.id).
		Int("subscribers", n).
		Msg("Subscriber canceled")
}

// SubscriberCount returns the number of active subscribers.
func (t *topic[T]) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Close ends all subscriptions and drops later publishes.
func (t *topic[T]) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	subs := t.subs
	t.subs = make(map[*Subscription[T]]struct{})
	t.mu.Unlock()

	for sub := range subs {
		sub.once.Do(sub.stop)
		if t.observer != nil {
			t.observer.Canceled(t.name, 0)
		}
	}
	t.logger.Debug().Str("channel", t.name).Int("subscribers", len(subs)).Msg("Channel closed")
}

// Latest is a channel that retains the most recent value and replays it to
// new subscribers.
type Latest[T any] struct {
	topic[T]
	value T
}

var _ Channel[int] = (*Latest[int])(nil)

// NewLatest creates a latest-value channel seeded with seed.
func NewLatest[T any](seed T, opts ...Option) *Latest[T] {
	l := &Latest[T]{value: seed}
	l.init(opts)
	return l
}

// Publish retains v and delivers it to all current subscribers.
func (l *Latest[T]) Publish(v T) {
	l.publish(func() (T, bool) { return v, true }, l.retain)
}

// Update replaces the retained value with fn applied to it and delivers the
// result, all under the channel lock, so concurrent updates never lose each
// other's changes. When fn reports false nothing is published.
func (l *Latest[T]) Update(fn func(cur T) (next T, publish bool)) {
	l.publish(func() (T, bool) { return fn(l.value) }, l.retain)
}

func (l *Latest[T]) retain(v T) {
	l.value = v
}

// Subscribe registers a subscriber whose first observed value is the
// currently retained one.
func (l *Latest[T]) Subscribe() *Subscription[T] {
	return l.subscribe(func() T {
		return l.value
	})
}

// Value returns the currently retained value.
func (l *Latest[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Plain is a fire-and-forget channel without a retained value.
type Plain[T any] struct {
	topic[T]
}

var _ Channel[int] = (*Plain[int])(nil)

// NewPlain creates a fire-and-forget channel.
func NewPlain[T any](opts ...Option) *Plain[T] {
	p := &Plain[T]{}
	p.init(opts)
	return p
}

// Publish delivers v to all current subscribers.
func (p *Plain[T]) Publish(v T) {
	p.publish(func() (T, bool) { return v, true }, nil)
}

// Subscribe registers a subscriber that observes only later publishes.
func (p *Plain[T]) Subscribe() *Subscription[T] {
	return p.subscribe(nil)
}
