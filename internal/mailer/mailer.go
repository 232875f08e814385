// Package mailer hands composed notification emails to a delivery provider.
// Delivery is attempted once; callers decide what a failure means.
package mailer

import (
	"context"
	"errors"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/pkg/logger"
)

// ErrDispatch wraps every delivery failure.
var ErrDispatch = errors.New("email dispatch failed")

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, msg domain.NotificationEmail) error
}

// LogSender logs messages instead of delivering them. Used for local
// development with mail.driver=log.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg domain.NotificationEmail) error {
	logger.Info("email not delivered (log driver)",
		"to", msg.To,
		"subject", msg.Subject,
		"html_bytes", len(msg.HTML),
		"attachments", len(msg.Attachments),
	)
	return nil
}
