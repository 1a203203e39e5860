package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	SQLitePath        string
	GoogleMapsAPIKey  string
	JourneysFile      string
	MaxWorkers        int
	MinInterval       time.Duration
	Debug             bool
	MetricsAddr       string
	NATSURL           string
	NATSSubjectPrefix string
}

// Load reads the configuration from the environment, with a .env file
// merged in when present. Exactly one of DatabaseURL and SQLitePath is
// set: an explicit SQLITE_PATH selects the sqlite backend, otherwise
// a postgres DSN is required.
func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	if cfg.SQLitePath == "" {
		dsn := firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("PG_DSN"),
		)
		if dsn == "" {
			host := getenvDefault("PGHOST", "127.0.0.1")
			port := getenvDefault("PGPORT", "5432")
			user := getenvDefault("PGUSER", "postgres")
			pass := os.Getenv("PGPASSWORD")
			db := os.Getenv("PGDATABASE")
			if db == "" {
				return nil, errors.New("one of SQLITE_PATH, DATABASE_URL or PGDATABASE must be set")
			}
			sslmode := getenvDefault("PGSSLMODE", "disable")
			if pass != "" {
				dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
			} else {
				dsn = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
			}
		}
		cfg.DatabaseURL = dsn
	}

	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.JourneysFile = getenvDefault("JOURNEYS_FILE", "journeys.json")

	if v := os.Getenv("MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_WORKERS: %q", v)
		}
		cfg.MaxWorkers = n
	} else {
		cfg.MaxWorkers = 4
	}

	// Minimum age of the newest measurement before a new batch runs
	// (minutes). Zero disables the gate.
	if v := os.Getenv("MIN_MEASUREMENT_INTERVAL_MIN"); v != "" {
		min, err := strconv.Atoi(v)
		if err != nil || min < 0 {
			return nil, fmt.Errorf("invalid MIN_MEASUREMENT_INTERVAL_MIN: %q", v)
		}
		cfg.MinInterval = time.Duration(min) * time.Minute
	} else {
		cfg.MinInterval = 15 * time.Minute
	}

	if v := os.Getenv("DEBUG"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.Debug = true
		default:
			cfg.Debug = false
		}
	}

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	// NATS measurement publishing. Empty URL disables it.
	cfg.NATSURL = os.Getenv("NATS_URL")
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", "measurements")

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
