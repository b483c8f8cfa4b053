package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"eventboard/internal/config"
	"eventboard/internal/db"
	"eventboard/internal/repository"
	"eventboard/internal/service"
)

// seed creates the bootstrap admin account from ADMIN_NAME, ADMIN_EMAIL and
// ADMIN_PASSWORD. Running it again is harmless.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting seed")

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	if err := db.Migrate(gormDB, false); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(gormDB)
	admin, created, err := service.SeedAdmin(ctx, users, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed admin")
	}

	logger.Info().
		Str("user_id", admin.ID.String()).
		Str("email", admin.Email).
		Bool("created", created).
		Msg("admin account ready")
}
