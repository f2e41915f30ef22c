package main

import (
	"flag"

	"aspataal/internal/config"
	"aspataal/internal/store/postgres"

	"github.com/rs/zerolog/log"
)

func main() {
	steps := flag.Int("steps", 0, "versions to apply; 0 migrates up fully, negative rolls back")
	flag.Parse()

	cfg := config.Load()
	if cfg.DB.Driver != config.DriverPostgres {
		log.Fatal().Str("driver", cfg.DB.Driver).Msg("migrations need STORE_DRIVER=postgres")
	}
	if err := postgres.Migrate(cfg.DB.DSN, *steps); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
}
