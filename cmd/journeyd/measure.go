package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"journey-metrics-service/internal/adapters/directions"
	"journey-metrics-service/internal/config"
	"journey-metrics-service/internal/metrics"
	"journey-metrics-service/internal/publisher"
	"journey-metrics-service/internal/services"
)

var measureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Run one measurement batch over all active journeys",
	RunE:  measure,
}

var (
	maxRetries int
	retryDelay time.Duration
)

func init() {
	measureCmd.Flags().IntVarP(&maxRetries, "max-retries", "r", 3, "Attempts before giving up on a failed batch")
	measureCmd.Flags().DurationVarP(&retryDelay, "retry-delay", "d", 5*time.Minute, "Wait between batch attempts")
}

func measure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.GoogleMapsAPIKey == "" {
		return errors.New("GOOGLE_MAPS_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, conn, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	provider, err := directions.NewGoogleDirectionsProvider(cfg.GoogleMapsAPIKey)
	if err != nil {
		return err
	}

	calc := services.NewCalculator(provider, services.CalculatorConfig{
		MaxWorkers: cfg.MaxWorkers,
		Debug:      cfg.Debug,
	})
	defer calc.Close()

	sched := services.NewScheduler(store, calc, services.NewReporter(os.Stdout), services.SchedulerConfig{
		MinInterval: cfg.MinInterval,
	})

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.NewCollector(cfg.MaxWorkers, cfg.MinInterval)
		srv := collector.Serve(cfg.MetricsAddr)
		defer srv.Close()
		sched.WithMetrics(collector)
	}

	if cfg.NATSURL != "" {
		var pubMetrics publisher.PublisherMetrics
		if collector != nil {
			pubMetrics = collector
		}
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.Debug, pubMetrics)
		if err != nil {
			return err
		}
		defer pub.Close()
		sched.WithPublisher(pub)
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		start := time.Now()
		summary, err := sched.Run(ctx)
		if err == nil {
			if collector != nil {
				collector.ObserveBatchDuration(time.Since(start))
			}
			if summary.Skipped {
				log.Printf("batch skipped")
			}
			return nil
		}

		log.Printf("batch attempt %d/%d failed: %v", attempt, maxRetries, err)
		if attempt == maxRetries {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil
}
