package qiitabrowser

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/pkg/broadcast"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Hook function types for hub channels
type (
	// ItemsHook is called with every item list published
	ItemsHook func(items []qiita.FavableItem)

	// FavoritesHook is called with every favorite list published
	FavoritesHook func(favorites []qiita.FavableItem)

	// FavEventHook is called for every favorite toggle
	FavEventHook func(ev qiita.FavEvent)

	// ProfileHook is called with every profile published
	ProfileHook func(u qiita.User)
)

// hooks runs callbacks registered on hub channels. Every registration
// owns a goroutine so callbacks see values in publish order.
type hooks struct {
	wg     sync.WaitGroup
	logger *zerolog.Logger
}

// attach subscribes to ch and calls fn for every value until the returned
// cancel func is called or the channel closes.
func attach[T any](h *hooks, name string, ch broadcast.Channel[T], fn func(T)) func() {
	sub := ch.Subscribe()
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		for v := range sub.C() {
			h.call(name, sub.ID(), func() { fn(v) })
		}
	}()
	return sub.Cancel
}

func (h *hooks) call(name, id string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Str("channel", name).
				Str("subscription_id", id).
				Interface("panic", r).
				Msg("Hook panicked")
		}
	}()
	fn()
}

// wait returns a channel closed once every hook goroutine has exited.
func (h *hooks) wait() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	return done
}
