package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agentstation/qiitabrowser/pkg/errors"
)

// Subscription is a handle on the ordered stream of values a subscriber
// observes. Values are read from C; the channel is closed once the
// subscription is canceled or its channel is closed.
type Subscription[T any] struct {
	id   string
	out  chan T
	done chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []T
	stopped bool

	once   sync.Once
	detach func(*Subscription[T])
}

func newSubscription[T any](detach func(*Subscription[T])) *Subscription[T] {
	s := &Subscription[T]{
		id:     uuid.NewString(),
		out:    make(chan T),
		done:   make(chan struct{}),
		detach: detach,
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// ID returns the unique subscription identifier.
func (s *Subscription[T]) ID() string {
	return s.id
}

// C returns the channel values are delivered on.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Done is closed when the subscription ends.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Recv waits for the next value. It returns errors.ErrClosed once the
// subscription has ended, or the context error if ctx is done first.
func (s *Subscription[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case v, ok := <-s.out:
		if !ok {
			return zero, errors.ErrClosed
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Cancel ends the subscription. Values published after Cancel returns are
// never delivered; a delivery already in progress may still complete.
// Cancel is idempotent.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.detach(s)
		s.stop()
	})
}

func (s *Subscription[T]) enqueue(v T) {
	s.mu.Lock()
	if !s.stopped {
		s.queue = append(s.queue, v)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *Subscription[T]) stop() {
	s.mu.Lock()
	s.stopped = true
	s.queue = nil
	s.cond.Broadcast()
	s.mu.Unlock()
	close(s.done)
}

// run drains the queue one value at a time, which keeps delivery ordered.
func (s *Subscription[T]) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.stopped {
			s.cond.Wait()
		}
		if s.stopped {
			s.mu.Unlock()
			return
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
