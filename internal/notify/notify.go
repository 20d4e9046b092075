// internal/notify/notify.go
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ncapps/court-reserve/internal/workflow"
)

// Sender provides a testable abstraction over outcome delivery.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// RunOutcome sends the run result through the sender. Notification failures
// are logged, never fatal: the reservation outcome stands on its own.
func RunOutcome(ctx context.Context, sender Sender, result workflow.Result, logger zerolog.Logger) {
	if sender == nil {
		return
	}

	subject := fmt.Sprintf("Court reservation: %s", result.Status)
	body := result.Detail
	if result.Court != nil {
		body = fmt.Sprintf("%s\nCourt %s from %s to %s",
			result.Detail,
			result.Court.CourtID,
			result.Court.Start.Format("Mon Jan 2 3:04 PM"),
			result.Court.End.Format("3:04 PM"))
	}

	if err := sender.Send(ctx, subject, body); err != nil {
		logger.Error().Err(err).Str("status", string(result.Status)).Msg("Failed to send outcome notification")
	}
}
