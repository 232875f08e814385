package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/pkg/logger"
)

// SESAPI is the subset of the SES v2 client used by SESSender.
type SESAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSettings configures NewSESSender.
type SESSettings struct {
	Region    string
	AccessKey string
	SecretKey string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// SESSender sends emails via AWS SES using the SDK v2.
type SESSender struct {
	client  SESAPI
	from    string
	timeout time.Duration
}

// NewSESSender builds an SES client. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain.
func NewSESSender(ctx context.Context, s SESSettings) (*SESSender, error) {
	if s.Region == "" {
		s.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(s.Region)}
	if s.AccessKey != "" && s.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), s.FromName, s.FromEmail, s.Timeout), nil
}

// NewSESSenderWithClient wires an existing client.
func NewSESSenderWithClient(client SESAPI, fromName, fromEmail string, timeout time.Duration) *SESSender {
	from := fromEmail
	if fromName != "" {
		// Quotes or RFC 2047 encodes the display name as needed.
		from = (&mail.Address{Name: fromName, Address: fromEmail}).String()
	}
	return &SESSender{client: client, from: from, timeout: timeout}
}

// From returns the formatted sender address.
func (s *SESSender) From() string { return s.from }

// Send delivers msg through SES. Messages with attachments are sent as raw
// MIME; all others use simple content.
func (s *SESSender) Send(ctx context.Context, msg domain.NotificationEmail) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
	}

	if len(msg.Attachments) == 0 {
		input.Content = &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		}
	} else {
		raw, err := buildRawMessage(s.from, msg)
		if err != nil {
			return fmt.Errorf("%w: building MIME message: %v", ErrDispatch, err)
		}
		input.Content = &types.EmailContent{Raw: &types.RawMessage{Data: raw}}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("SES send failed", "to", msg.To, "subject", msg.Subject, "error", err.Error())
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	logger.Info("SES email sent",
		"to", msg.To,
		"message_id", aws.ToString(result.MessageId),
		"attachments", len(msg.Attachments),
	)
	return nil
}
