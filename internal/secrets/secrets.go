// internal/secrets/secrets.go
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/ncapps/court-reserve/internal/booking"
)

// ErrSecretUnavailable marks any failure to retrieve or decode the secret.
// Retrieval is never retried.
var ErrSecretUnavailable = errors.New("secret unavailable")

// Settings is the member configuration stored in the secret: site
// credentials plus the weekly booking preferences.
type Settings struct {
	OrgID      string                    `json:"org_id"`
	Username   string                    `json:"username"`
	Password   string                    `json:"password"`
	CostTypeID string                    `json:"cost_type_id"`
	MemberIDs  []string                  `json:"member_ids"`
	Courts     map[string]string         `json:"courts"`
	Prefs      booking.WeeklyPreferences `json:"preferences"`
}

// Validate checks the fields the workflow cannot run without.
func (s *Settings) Validate() error {
	if s.OrgID == "" {
		return fmt.Errorf("org_id is required")
	}
	if s.Username == "" || s.Password == "" {
		return fmt.Errorf("username and password are required")
	}
	if len(s.MemberIDs) == 0 {
		return fmt.Errorf("at least one member id is required")
	}
	if len(s.Prefs) == 0 {
		return fmt.Errorf("preferences are required")
	}
	return nil
}

// CourtLabel returns the display label for a court id, falling back to the
// id itself when the courts map has no entry.
func (s *Settings) CourtLabel(courtID string) string {
	if label, ok := s.Courts[courtID]; ok && label != "" {
		return label
	}
	return courtID
}

// ParseSettings decodes and validates the secret JSON payload.
func ParseSettings(payload []byte) (*Settings, error) {
	var s Settings
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("%w: decode settings: %v", ErrSecretUnavailable, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Store retrieves member settings for a run.
type Store interface {
	GetSettings(ctx context.Context, secretID string) (*Settings, error)
}

// ManagerStore reads settings from AWS Secrets Manager.
type ManagerStore struct {
	client *secretsmanager.Client
}

// NewManagerStore creates a Secrets Manager store using the default AWS
// credential chain.
func NewManagerStore(ctx context.Context) (*ManagerStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &ManagerStore{client: secretsmanager.NewFromConfig(awsCfg)}, nil
}

// GetSettings fetches and parses the settings secret.
func (m *ManagerStore) GetSettings(ctx context.Context, secretID string) (*Settings, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get secret %s: %v", ErrSecretUnavailable, secretID, err)
	}
	if out.SecretString == nil {
		return nil, fmt.Errorf("%w: secret %s has no string value", ErrSecretUnavailable, secretID)
	}
	return ParseSettings([]byte(*out.SecretString))
}
