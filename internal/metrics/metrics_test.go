package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCountsJourneys(t *testing.T) {
	c := NewCollector(4, 15*time.Minute)

	c.JourneyProcessed(false)
	c.JourneyProcessed(true)
	c.JourneyProcessed(false)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.JourneysProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JourneysFailed))
}

func TestCollectorCountsTasksByMode(t *testing.T) {
	c := NewCollector(4, 15*time.Minute)

	c.TaskResult("driving", false)
	c.TaskResult("driving", false)
	c.TaskResult("transit", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Tasks.WithLabelValues("driving")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Tasks.WithLabelValues("transit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TaskErrors.WithLabelValues("transit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.TaskErrors.WithLabelValues("driving")))
}

func TestCollectorCountsPublishes(t *testing.T) {
	c := NewCollector(4, 15*time.Minute)

	c.MessagePublished(nil)
	c.MessagePublished(assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSPublishErrs))
}

func TestCollectorExportsConfigGauges(t *testing.T) {
	c := NewCollector(8, 30*time.Minute)

	assert.Equal(t, 8.0, testutil.ToFloat64(c.MaxWorkers))
	assert.Equal(t, 1800.0, testutil.ToFloat64(c.MinInterval))
}
