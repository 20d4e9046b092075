// internal/notify/ses.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESSender delivers outcome emails through AWS SESv2.
type SESSender struct {
	client *sesv2.Client
	from   string
	to     string
}

// NewSESSender initializes an SES sender for a fixed sender and recipient.
func NewSESSender(ctx context.Context, region, from, to string) (*SESSender, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("sender and recipient are required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SESSender{
		client: sesv2.NewFromConfig(awsCfg),
		from:   from,
		to:     to,
	}, nil
}

// Send delivers a simple text email.
func (s *SESSender) Send(ctx context.Context, subject, body string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("ses sender is not initialized")
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{s.to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
		FromEmailAddress: aws.String(s.from),
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send ses email: %w", err)
	}
	return nil
}
