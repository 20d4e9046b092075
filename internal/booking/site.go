// internal/booking/site.go
package booking

import (
	"context"
	"errors"
	"time"
)

// ErrLoginFailed marks a login attempt the site rejected by redirecting back
// to its login page. Any other login error is an adapter fault.
var ErrLoginFailed = errors.New("login failed")

// ReservationRequest describes the reservation to submit for the winning
// candidate.
type ReservationRequest struct {
	CourtID    string
	CourtLabel string
	Start      time.Time
	End        time.Time
	MemberIDs  []string
}

// Confirmation is the site's answer to a reservation request. Success must
// be explicitly true for the reservation to count as created.
type Confirmation struct {
	Success bool
	Message string
}

// Site is the narrow surface of the remote reservation site consumed by the
// booking workflow. Implementations own all HTTP and HTML concerns,
// including the cookie session established by Login.
type Site interface {
	Login(ctx context.Context, username, password string) error
	ListReservations(ctx context.Context, date time.Time) ([]Booking, error)
	CreateReservation(ctx context.Context, req ReservationRequest) (Confirmation, error)
}
