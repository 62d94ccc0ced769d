// Command migrate applies the schema and exits. The server also migrates
// at startup; this exists for deploy pipelines that run migrations as a
// separate step.
package main

import (
	"context"
	"log"
	"os"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.Open(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.New(db).Migrate(context.Background()); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations applied")
}
