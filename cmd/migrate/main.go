package main

import (
	"flag"
	"log"

	"github.com/dustinwells/sprinter-leads/pkg/config"
	"github.com/dustinwells/sprinter-leads/pkg/database"
)

func main() {
	var (
		path = flag.String("path", "migrations", "path to the migrations directory")
		down = flag.Bool("down", false, "roll back the most recent migration instead of applying")
	)
	flag.Parse()

	cfg, err := config.Load("migrate")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	databaseURL := cfg.Database.URL()

	if *down {
		if err := database.MigrateDown(databaseURL, *path); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		log.Println("Rolled back one migration")
		return
	}

	if err := database.Migrate(databaseURL, *path); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
