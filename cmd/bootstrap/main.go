// cmd/bootstrap migrates the schema and seeds the baseline rows without
// starting the API. With -reset-admin it also rewrites the admin password
// from ADMIN_PASSWORD.
// Usage: go run ./cmd/bootstrap [-reset-admin]
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"inventrack/internal/config"
	"inventrack/internal/infra"
	"inventrack/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	resetAdmin := flag.Bool("reset-admin", false, "overwrite the admin password with ADMIN_PASSWORD and reactivate the account")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := infra.Seed(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	if *resetAdmin {
		hash, err := infra.HashPassword(cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("bcrypt error")
		}
		res := db.WithContext(ctx).Model(&model.User{}).
			Where("username = ?", cfg.AdminUsername).
			Updates(map[string]interface{}{"password_hash": hash, "is_active": true, "role": model.RoleAdmin})
		if res.Error != nil {
			log.Fatal().Err(res.Error).Msg("reset admin failed")
		}
		log.Info().Str("username", cfg.AdminUsername).Int64("rows", res.RowsAffected).Msg("admin password reset")
	}

	log.Info().Str("driver", cfg.DBDriver).Msg("bootstrap complete")
}
