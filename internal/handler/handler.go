// internal/handler/handler.go
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ncapps/court-reserve/internal/booking"
	"github.com/ncapps/court-reserve/internal/config"
	"github.com/ncapps/court-reserve/internal/courtreserve"
	"github.com/ncapps/court-reserve/internal/notify"
	"github.com/ncapps/court-reserve/internal/secrets"
	"github.com/ncapps/court-reserve/internal/workflow"
)

// Response is the structured result returned to the invocation trigger.
// Business outcomes report 200; faults (secret, configuration, auth,
// adapter) report 500.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// SiteFactory builds a site adapter for one run from the member settings.
type SiteFactory func(settings *secrets.Settings, cfg *config.Settings) (booking.Site, error)

// DefaultSiteFactory builds the app.courtreserve.com client.
func DefaultSiteFactory(settings *secrets.Settings, cfg *config.Settings) (booking.Site, error) {
	courtIDs := make([]string, 0, len(settings.Courts))
	for id := range settings.Courts {
		courtIDs = append(courtIDs, id)
	}
	sort.Strings(courtIDs)

	return courtreserve.New(courtreserve.Config{
		OrgID:        settings.OrgID,
		CostTypeID:   settings.CostTypeID,
		MemberIDs:    settings.MemberIDs,
		CourtIDs:     courtIDs,
		TimezoneName: cfg.TimezoneName,
		Timezone:     cfg.Timezone,
	})
}

// Handler wires the secret store, site adapter and workflow into a single
// invocation entry point.
type Handler struct {
	cfg     *config.Settings
	store   secrets.Store
	newSite SiteFactory
	sender  notify.Sender
	logger  zerolog.Logger
	now     func() time.Time
}

// New creates a Handler. The sender may be nil to disable notifications.
func New(cfg *config.Settings, store secrets.Store, newSite SiteFactory, sender notify.Sender, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		store:   store,
		newSite: newSite,
		sender:  sender,
		logger:  logger,
		now:     time.Now,
	}
}

// Handle runs one reservation attempt. The event payload is accepted for
// trigger compatibility and ignored; all inputs come from configuration and
// the secret store. The error return is always nil: every outcome, fault or
// not, is reported through the Response.
func (h *Handler) Handle(ctx context.Context, _ json.RawMessage) (Response, error) {
	logger := h.logger.With().Str("run_id", uuid.NewString()).Logger()

	settings, err := h.store.GetSettings(ctx, h.cfg.SecretID)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load settings")
		return Response{StatusCode: http.StatusInternalServerError, Message: err.Error()}, nil
	}

	site, err := h.newSite(settings, h.cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build site adapter")
		return Response{StatusCode: http.StatusInternalServerError, Message: err.Error()}, nil
	}

	date := h.cfg.TargetDate(h.now())
	logger.Info().
		Str("date", date.Format("2006-01-02")).
		Bool("dry_run", h.cfg.DryRun).
		Msg("Starting reservation run")

	result, err := workflow.New(site, settings, date, h.cfg.DryRun, logger).Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Workflow configuration error")
		return Response{StatusCode: http.StatusInternalServerError, Message: err.Error()}, nil
	}

	notify.RunOutcome(ctx, h.sender, result, logger)

	status := http.StatusOK
	if result.Status.Fault() {
		status = http.StatusInternalServerError
	}
	return Response{StatusCode: status, Message: result.Detail}, nil
}
