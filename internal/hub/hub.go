// Package hub owns the four application-wide broadcast channels: the item
// list, the favorite list, favorite toggle events and the user profile.
//
// A Hub is created empty and must be initialized once with Init before any
// channel is accessed. Accessing a channel earlier is a programming error
// and panics with *errors.MisuseError.
package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/qiitabrowser/internal/metrics"
	"github.com/agentstation/qiitabrowser/pkg/broadcast"
	"github.com/agentstation/qiitabrowser/pkg/errors"
	"github.com/agentstation/qiitabrowser/pkg/logging"
	"github.com/agentstation/qiitabrowser/pkg/qiita"
)

// Channel names.
const (
	ChannelItems     = "items"
	ChannelFavorites = "favorites"
	ChannelFavEvents = "fav_events"
	ChannelProfile   = "profile"
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *zerolog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver replaces the metrics observer of the channels. A nil
// observer disables observation.
func WithObserver(o broadcast.Observer) Option {
	return func(h *Hub) {
		h.observer = o
	}
}

// Hub holds the broadcast channels.
type Hub struct {
	logger   *zerolog.Logger
	observer broadcast.Observer

	mu        sync.RWMutex
	ready     bool
	items     *broadcast.Latest[[]qiita.FavableItem]
	favorites *broadcast.Latest[[]qiita.FavableItem]
	favEvents *broadcast.Plain[qiita.FavEvent]
	profile   *broadcast.Latest[qiita.User]

	// serializes ToggleFavorite
	toggleMu sync.Mutex
}

// New creates an uninitialized hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		logger:   logging.Component("hub"),
		observer: metrics.ChannelObserver{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init creates the channels. Items and favorites start with an empty list,
// profile starts with the given placeholder and fav events start empty.
// Calling Init twice panics.
func (h *Hub) Init(profile qiita.User) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ready {
		panic(errors.NewMisuseError("hub", "Init", errors.ErrAlreadyInitialized))
	}

	h.items = broadcast.NewLatest([]qiita.FavableItem{}, h.channelOpts(ChannelItems)...)
	h.favorites = broadcast.NewLatest([]qiita.FavableItem{}, h.channelOpts(ChannelFavorites)...)
	h.favEvents = broadcast.NewPlain[qiita.FavEvent](h.channelOpts(ChannelFavEvents)...)
	h.profile = broadcast.NewLatest(profile, h.channelOpts(ChannelProfile)...)
	h.ready = true

	h.logger.Debug().Str("profile_id", profile.ID).Msg("Broadcast hub initialized")
}

// Initialized reports whether Init has run.
func (h *Hub) Initialized() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Items returns the channel carrying the current item list.
func (h *Hub) Items() *broadcast.Latest[[]qiita.FavableItem] {
	h.mustBeReady("Items")
	return h.items
}

// Favorites returns the channel carrying the current favorite list.
func (h *Hub) Favorites() *broadcast.Latest[[]qiita.FavableItem] {
	h.mustBeReady("Favorites")
	return h.favorites
}

// FavEvents returns the channel carrying favorite toggles.
func (h *Hub) FavEvents() *broadcast.Plain[qiita.FavEvent] {
	h.mustBeReady("FavEvents")
	return h.favEvents
}

// Profile returns the channel carrying the current user profile.
func (h *Hub) Profile() *broadcast.Latest[qiita.User] {
	h.mustBeReady("Profile")
	return h.profile
}

// Close closes all channels, ending every subscription. Close on an
// uninitialized hub does nothing.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.ready {
		return
	}
	h.items.Close()
	h.favorites.Close()
	h.favEvents.Close()
	h.profile.Close()
}

func (h *Hub) mustBeReady(op string) {
	h.mu.RLock()
	ready := h.ready
	h.mu.RUnlock()
	if !ready {
		panic(errors.NewMisuseError("hub", op, errors.ErrNotInitialized))
	}
}

func (h *Hub) channelOpts(name string) []broadcast.Option {
	opts := []broadcast.Option{
		broadcast.WithName(name),
		broadcast.WithLogger(h.logger),
	}
	if h.observer != nil {
		opts = append(opts, broadcast.WithObserver(h.observer))
	}
	return opts
}
