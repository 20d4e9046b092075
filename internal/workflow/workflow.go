// internal/workflow/workflow.go
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ncapps/court-reserve/internal/booking"
	"github.com/ncapps/court-reserve/internal/secrets"
)

// maxLoginAttempts bounds the retry on a login redirected back to the login
// page. Any other login error is not retried.
const maxLoginAttempts = 2

// Status is the terminal outcome of one workflow run.
type Status string

const (
	StatusReserved             Status = "reserved"
	StatusNoPreferenceForDay   Status = "no_preference_for_day"
	StatusNoOpenCourtFound     Status = "no_open_court_found"
	StatusAuthenticationFailed Status = "authentication_failed"
	StatusAdapterError         Status = "adapter_error"
)

// Fault reports whether the status is an error outcome rather than a normal
// business result.
func (s Status) Fault() bool {
	return s == StatusAuthenticationFailed || s == StatusAdapterError
}

// Result is the single authoritative outcome of a run. It is created once
// and never mutated after return.
type Result struct {
	Status Status
	Detail string

	// Court is set when Status is StatusReserved.
	Court *booking.Candidate
}

// state names one step of the reservation pipeline.
type state int

const (
	stateStart state = iota
	stateAuthenticating
	stateFetchingBookings
	stateMatching
	stateReserving
	stateConfirming
	stateDone
)

// Workflow sequences one reservation attempt: authenticate, fetch existing
// bookings, pick the best open candidate, submit, confirm. Every remote step
// depends on the previous response, so the pipeline is strictly sequential.
type Workflow struct {
	site     booking.Site
	settings *secrets.Settings
	date     time.Time
	dryRun   bool
	logger   zerolog.Logger
}

// New builds a workflow for a single run against the given target date.
func New(site booking.Site, settings *secrets.Settings, date time.Time, dryRun bool, logger zerolog.Logger) *Workflow {
	return &Workflow{
		site:     site,
		settings: settings,
		date:     date,
		dryRun:   dryRun,
		logger:   logger,
	}
}

// Run drives the state machine to a terminal Result. The returned error is
// non-nil only for configuration faults (malformed preferences); every other
// outcome, including adapter failures, is reported through the Result.
func (w *Workflow) Run(ctx context.Context) (Result, error) {
	var (
		st         = stateStart
		candidates []booking.Candidate
		merged     map[string][]booking.TimeRange
		winner     booking.Candidate
		confirmed  booking.Confirmation
		result     Result
	)

	for st != stateDone {
		switch st {
		case stateStart:
			// Expand preferences before touching the network: a day with no
			// preferences ends the run without a single request.
			var err error
			candidates, err = booking.ExpandPreferences(w.settings.Prefs, w.date)
			if err != nil {
				return Result{}, fmt.Errorf("expand preferences: %w", err)
			}
			if len(candidates) == 0 {
				result = Result{
					Status: StatusNoPreferenceForDay,
					Detail: fmt.Sprintf("no preferences for %s", w.date.Format("Monday, Jan 2")),
				}
				st = stateDone
				continue
			}
			w.logger.Info().
				Int("candidates", len(candidates)).
				Str("date", w.date.Format("2006-01-02")).
				Msg("Expanded preferences")
			st = stateAuthenticating

		case stateAuthenticating:
			if err := w.authenticate(ctx); err != nil {
				if errors.Is(err, booking.ErrLoginFailed) {
					result = Result{Status: StatusAuthenticationFailed, Detail: err.Error()}
				} else {
					result = Result{Status: StatusAdapterError, Detail: err.Error()}
				}
				st = stateDone
				continue
			}
			st = stateFetchingBookings

		case stateFetchingBookings:
			records, err := w.site.ListReservations(ctx, w.date)
			if err != nil {
				result = Result{Status: StatusAdapterError, Detail: fmt.Sprintf("list reservations: %v", err)}
				st = stateDone
				continue
			}
			merged = booking.MergeByCourt(records)
			w.logger.Info().
				Int("records", len(records)).
				Int("courts", len(merged)).
				Msg("Fetched existing reservations")
			st = stateMatching

		case stateMatching:
			var ok bool
			winner, ok = booking.FindOpenCourt(merged, candidates)
			if !ok {
				result = Result{
					Status: StatusNoOpenCourtFound,
					Detail: fmt.Sprintf("no open court for %s", w.date.Format("Monday, Jan 2")),
				}
				st = stateDone
				continue
			}
			w.logger.Info().
				Str("court_id", winner.CourtID).
				Time("start", winner.Start).
				Time("end", winner.End).
				Msg("Found open court")
			st = stateReserving

		case stateReserving:
			if w.dryRun {
				court := winner
				result = Result{
					Status: StatusReserved,
					Detail: fmt.Sprintf("dry run: reservation for %s not submitted", w.settings.CourtLabel(winner.CourtID)),
					Court:  &court,
				}
				st = stateDone
				continue
			}
			var err error
			confirmed, err = w.site.CreateReservation(ctx, booking.ReservationRequest{
				CourtID:    winner.CourtID,
				CourtLabel: w.settings.CourtLabel(winner.CourtID),
				Start:      winner.Start,
				End:        winner.End,
				MemberIDs:  w.settings.MemberIDs,
			})
			if err != nil {
				// The remote side may or may not have registered the booking.
				result = Result{Status: StatusAdapterError, Detail: fmt.Sprintf("create reservation: %v", err)}
				st = stateDone
				continue
			}
			st = stateConfirming

		case stateConfirming:
			if !confirmed.Success {
				result = Result{
					Status: StatusAdapterError,
					Detail: fmt.Sprintf("reservation not confirmed: %s", confirmed.Message),
				}
				st = stateDone
				continue
			}
			court := winner
			detail := confirmed.Message
			if detail == "" {
				detail = fmt.Sprintf("reserved %s from %s to %s",
					w.settings.CourtLabel(winner.CourtID),
					winner.Start.Format("3:04 PM"),
					winner.End.Format("3:04 PM"))
			}
			result = Result{Status: StatusReserved, Detail: detail, Court: &court}
			st = stateDone
		}
	}

	w.logger.Info().
		Str("status", string(result.Status)).
		Str("detail", result.Detail).
		Msg("Workflow finished")
	return result, nil
}

// authenticate logs in, retrying once when the site bounces the attempt back
// to its login page.
func (w *Workflow) authenticate(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		err := w.site.Login(ctx, w.settings.Username, w.settings.Password)
		if err == nil {
			w.logger.Info().Int("attempt", attempt).Msg("Login succeeded")
			return nil
		}
		if !errors.Is(err, booking.ErrLoginFailed) {
			return fmt.Errorf("login: %w", err)
		}
		w.logger.Warn().Int("attempt", attempt).Err(err).Msg("Login rejected")
		lastErr = err
	}
	return lastErr
}
