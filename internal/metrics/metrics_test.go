package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/qiitabrowser/pkg/broadcast"
)

var _ broadcast.Observer = ChannelObserver{}

func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		RegistryConstructions,
		RegistryConstructionErrors,
		HubPublishes,
		HubSubscribers,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 1)
		metric.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestConstructionCounters(t *testing.T) {
	before := testutil.ToFloat64(RegistryConstructions.WithLabelValues("test-resource"))
	ConstructionSucceeded("test-resource")
	assert.Equal(t, before+1, testutil.ToFloat64(RegistryConstructions.WithLabelValues("test-resource")))

	beforeErr := testutil.ToFloat64(RegistryConstructionErrors.WithLabelValues("test-resource"))
	ConstructionFailed("test-resource")
	ConstructionFailed("test-resource")
	assert.Equal(t, beforeErr+2, testutil.ToFloat64(RegistryConstructionErrors.WithLabelValues("test-resource")))
}

func TestChannelObserver(t *testing.T) {
	var o ChannelObserver

	before := testutil.ToFloat64(HubPublishes.WithLabelValues("test-channel"))
	o.Published("test-channel", 3)
	assert.Equal(t, before+1, testutil.ToFloat64(HubPublishes.WithLabelValues("test-channel")))

	o.Subscribed("test-channel", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(HubSubscribers.WithLabelValues("test-channel")))

	o.Canceled("test-channel", 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(HubSubscribers.WithLabelValues("test-channel")))
}

func TestObserverDrivenByChannel(t *testing.T) {
	ch := broadcast.NewPlain[int](broadcast.WithName("observed"), broadcast.WithObserver(ChannelObserver{}))
	defer ch.Close()

	sub := ch.Subscribe()
	assert.Equal(t, float64(1), testutil.ToFloat64(HubSubscribers.WithLabelValues("observed")))

	before := testutil.ToFloat64(HubPublishes.WithLabelValues("observed"))
	ch.Publish(1)
	assert.Equal(t, before+1, testutil.ToFloat64(HubPublishes.WithLabelValues("observed")))

	sub.Cancel()
	assert.Equal(t, float64(0), testutil.ToFloat64(HubSubscribers.WithLabelValues("observed")))
}
