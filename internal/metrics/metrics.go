// Package metrics defines the Prometheus collectors of qiitabrowser.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resource Registry Metrics
var (
	// RegistryConstructions counts successful constructions of shared resources
	RegistryConstructions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qiitabrowser_registry_constructions_total",
			Help: "Total successful constructions of shared resources by resource",
		},
		[]string{"resource"},
	)

	// RegistryConstructionErrors counts failed constructions of shared resources
	RegistryConstructionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qiitabrowser_registry_construction_errors_total",
			Help: "Total failed constructions of shared resources by resource",
		},
		[]string{"resource"},
	)
)

// Broadcast Hub Metrics
var (
	// HubPublishes counts values published per channel
	HubPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qiitabrowser_hub_publishes_total",
			Help: "Total values published by channel",
		},
		[]string{"channel"},
	)

	// HubSubscribers tracks current subscribers per channel
	HubSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "qiitabrowser_hub_subscribers",
			Help: "Current subscribers by channel",
		},
		[]string{"channel"},
	)
)

// ChannelObserver records broadcast channel activity. It satisfies
// broadcast.Observer.
type ChannelObserver struct{}

// Published implements broadcast.Observer.
func (ChannelObserver) Published(channel string, _ int) {
	HubPublishes.WithLabelValues(channel).Inc()
}

// Subscribed implements broadcast.Observer.
func (ChannelObserver) Subscribed(channel string, subscribers int) {
	HubSubscribers.WithLabelValues(channel).Set(float64(subscribers))
}

// Canceled implements broadcast.Observer.
func (ChannelObserver) Canceled(channel string, subscribers int) {
	HubSubscribers.WithLabelValues(channel).Set(float64(subscribers))
}

// ConstructionSucceeded records a successful construction of resource.
func ConstructionSucceeded(resource string) {
	RegistryConstructions.WithLabelValues(resource).Inc()
}

// ConstructionFailed records a failed construction of resource.
func ConstructionFailed(resource string) {
	RegistryConstructionErrors.WithLabelValues(resource).Inc()
}
