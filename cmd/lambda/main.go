// cmd/lambda/main.go
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ncapps/court-reserve/internal/config"
	"github.com/ncapps/court-reserve/internal/handler"
	"github.com/ncapps/court-reserve/internal/notify"
	"github.com/ncapps/court-reserve/internal/secrets"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

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
	lambda.Start(h.Handle)
}
