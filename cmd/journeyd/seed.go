package main

import (
	"log"

	"github.com/spf13/cobra"

	"journey-metrics-service/internal/adapters/repositories"
	"journey-metrics-service/internal/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the schema and seed reference data and journeys",
	RunE:  seed,
}

var journeysFile string

func init() {
	seedCmd.Flags().StringVarP(&journeysFile, "journeys", "j", "", "Journeys JSON file (defaults to JOURNEYS_FILE)")
}

func seed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	_, conn, dialect, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if dialect == repositories.DialectSqlite {
		err = repositories.InitSqliteSchema(conn)
	} else {
		err = repositories.InitPostgresSchema(conn)
	}
	if err != nil {
		return err
	}
	log.Println("Schema ready.")

	log.Println("Seeding reference data...")
	if err := repositories.SeedReference(conn, dialect); err != nil {
		return err
	}

	path := journeysFile
	if path == "" {
		path = cfg.JourneysFile
	}
	log.Printf("Seeding journeys from %s...", path)
	if err := repositories.SeedJourneysFromJSON(conn, dialect, path); err != nil {
		return err
	}
	log.Println("Seeding complete.")

	return nil
}
