package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"journey-metrics-service/internal/adapters/repositories"
	"journey-metrics-service/internal/config"
	"journey-metrics-service/internal/platform/db"
	"journey-metrics-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var rootCmd = &cobra.Command{
	Use:          "journeyd",
	Short:        "Journey travel-time measurement service",
	Long:         "Measures travel times for configured journeys across transit modes and records them per day-of-week and time-slot bucket.",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(measureCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// openStore wires the configured SQL backend behind the JourneyStore
// port. The caller owns the returned handle.
func openStore(cfg *config.Config) (ports.JourneyStore, *sql.DB, repositories.Dialect, error) {
	if cfg.SQLitePath != "" {
		conn, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, 0, err
		}
		return repositories.NewSqliteJourneyStore(conn), conn, repositories.DialectSqlite, nil
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, 0, err
	}
	return repositories.NewPostgresJourneyStore(conn), conn, repositories.DialectPostgres, nil
}
