package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"journey-metrics-service/internal/domain"
)

// NATSPublisher pushes committed measurements onto a NATS subject per
// journey and mode, "<prefix>.<journey>.<mode>". Downstream consumers
// (dashboards, alerting) subscribe with wildcards.
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	debug   bool
	metrics PublisherMetrics
}

type PublisherMetrics interface {
	MessagePublished(err error)
}

func NewNATSPublisher(url, prefix string, debug bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("journey-metrics"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	if prefix == "" {
		prefix = "measurements"
	}
	return &NATSPublisher{nc: nc, prefix: prefix, debug: debug, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

type MeasurementMessage struct {
	JourneyName     string    `json:"journeyName"`
	Mode            string    `json:"mode"`
	MeasuredAt      time.Time `json:"measuredAt"`
	LocalMeasuredAt time.Time `json:"localMeasuredAt"`
	DurationSeconds int       `json:"durationSeconds"`
	DistanceMeters  int       `json:"distanceMeters"`
	SpeedKPH        float64   `json:"speedKph"`
	Legs            int       `json:"legs"`
}

// PublishMeasurement implements the scheduler's publisher hook.
func (p *NATSPublisher) PublishMeasurement(journeyName string, m *domain.Measurement) error {
	subject := fmt.Sprintf("%s.%s.%s", p.prefix, subjectToken(journeyName), subjectToken(m.Mode.String()))

	b, err := json.Marshal(MeasurementMessage{
		JourneyName:     journeyName,
		Mode:            m.Mode.String(),
		MeasuredAt:      m.Timestamp,
		LocalMeasuredAt: m.LocalTimestamp,
		DurationSeconds: m.DurationSeconds,
		DistanceMeters:  m.DistanceMeters,
		SpeedKPH:        m.SpeedKPH,
		Legs:            len(m.Legs),
	})
	if err != nil {
		return fmt.Errorf("marshal measurement message: %w", err)
	}

	if p.debug {
		log.Printf("nats publish subject=%s", subject)
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.MessagePublished(err)
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
