// cmd/reserve/main.go
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ncapps/court-reserve/internal/config"
	"github.com/ncapps/court-reserve/internal/handler"
	"github.com/ncapps/court-reserve/internal/notify"
	"github.com/ncapps/court-reserve/internal/secrets"
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Environment)

	ctx := context.Background()

	store, err := secrets.NewManagerStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create secret store")
	}

	var sender notify.Sender
	if cfg.NotifyTo != "" {
		ses, err := notify.NewSESSender(ctx, cfg.AWSRegion, cfg.NotifyFrom, cfg.NotifyTo)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create notification sender")
		}
		sender = ses
	}

	h := handler.New(cfg, store, handler.DefaultSiteFactory, sender, log.Logger)
	resp, err := h.Handle(ctx, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Run failed")
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Str("message", resp.Message).Msg("Run finished with fault")
		os.Exit(1)
	}
	log.Info().Str("message", resp.Message).Msg("Run complete")
}
