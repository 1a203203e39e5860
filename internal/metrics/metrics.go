package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	ActiveJourneys prometheus.Gauge

	JourneysProcessed prometheus.Counter
	JourneysFailed    prometheus.Counter

	Tasks      *prometheus.CounterVec // mode label
	TaskErrors *prometheus.CounterVec // mode label

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter

	JourneyDuration prometheus.Histogram
	BatchDuration   prometheus.Histogram

	MaxWorkers  prometheus.Gauge
	MinInterval prometheus.Gauge // seconds
}

func NewCollector(maxWorkers int, minInterval time.Duration) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveJourneys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeyd_active_journeys",
			Help: "Number of active journeys in the current batch.",
		}),
		JourneysProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeyd_journeys_processed_total",
			Help: "Total journeys processed, successful or failed.",
		}),
		JourneysFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeyd_journeys_failed_total",
			Help: "Total journeys whose measurement or persistence failed.",
		}),
		Tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeyd_mode_tasks_total",
			Help: "Total mode tasks executed.",
		}, []string{"mode"}),
		TaskErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeyd_mode_task_errors_total",
			Help: "Total mode tasks that returned an error record.",
		}, []string{"mode"}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeyd_nats_published_total",
			Help: "Total NATS measurement messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeyd_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		JourneyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyd_journey_duration_seconds",
			Help:    "Wall time to measure and persist one journey.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeyd_batch_duration_seconds",
			Help:    "Wall time of a full batch run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		MaxWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeyd_max_workers",
			Help: "Configured size of the mode task worker pool.",
		}),
		MinInterval: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeyd_min_measurement_interval_seconds",
			Help: "Configured minimum age of the newest measurement before a run.",
		}),
	}

	// Register
	reg.MustRegister(
		c.ActiveJourneys,
		c.JourneysProcessed, c.JourneysFailed,
		c.Tasks, c.TaskErrors,
		c.NATSPublished, c.NATSPublishErrs,
		c.JourneyDuration, c.BatchDuration,
		c.MaxWorkers, c.MinInterval,
	)

	c.MaxWorkers.Set(float64(maxWorkers))
	c.MinInterval.Set(minInterval.Seconds())

	return c
}

// JourneyProcessed counts one completed journey.
func (c *Collector) JourneyProcessed(failed bool) {
	c.JourneysProcessed.Inc()
	if failed {
		c.JourneysFailed.Inc()
	}
}

// TaskResult counts one completed mode task.
func (c *Collector) TaskResult(mode string, failed bool) {
	c.Tasks.WithLabelValues(mode).Inc()
	if failed {
		c.TaskErrors.WithLabelValues(mode).Inc()
	}
}

func (c *Collector) ObserveJourneyDuration(d time.Duration) {
	c.JourneyDuration.Observe(d.Seconds())
}

func (c *Collector) ObserveBatchDuration(d time.Duration) {
	c.BatchDuration.Observe(d.Seconds())
}

func (c *Collector) SetActiveJourneys(n int) {
	c.ActiveJourneys.Set(float64(n))
}

// MessagePublished counts one NATS publish attempt.
func (c *Collector) MessagePublished(err error) {
	if err != nil {
		c.NATSPublishErrs.Inc()
		return
	}
	c.NATSPublished.Inc()
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
