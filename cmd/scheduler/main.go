// cmd/scheduler/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ncapps/court-reserve/internal/config"
	"github.com/ncapps/court-reserve/internal/handler"
	"github.com/ncapps/court-reserve/internal/notify"
	"github.com/ncapps/court-reserve/internal/scheduler"
	"github.com/ncapps/court-reserve/internal/secrets"
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", "scheduler.yaml", "path to scheduler config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Environment)

	schedCfg, err := config.LoadScheduler(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scheduler configuration")
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

	svc, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	_, err = svc.AddJob("court-reserve", schedCfg.Scheduler.Cron, func() {
		resp, err := h.Handle(context.Background(), nil)
		if err != nil {
			log.Error().Err(err).Msg("Reservation run failed")
			return
		}
		if resp.StatusCode != http.StatusOK {
			log.Error().Int("status", resp.StatusCode).Str("message", resp.Message).Msg("Reservation run finished with fault")
			return
		}
		log.Info().Str("message", resp.Message).Msg("Reservation run complete")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register reservation job")
	}

	// Graceful shutdown on interrupt
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, runCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		svc.Start()
		<-runCtx.Done()
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()
		log.Info().Msg("Shutting down scheduler")
		return svc.Stop()
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Scheduler terminated with error")
		os.Exit(1)
	}
}
