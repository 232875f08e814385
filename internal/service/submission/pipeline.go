package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/intake"
	"github.com/guaraci/paylink/internal/mailer"
	"github.com/guaraci/paylink/internal/metrics"
	"github.com/guaraci/paylink/internal/pkg/logger"
	"github.com/guaraci/paylink/internal/service/paylink"
)

// LinkService issues and resolves payment links.
type LinkService interface {
	CreateLink(ctx context.Context, redirectURL string) (*domain.PaymentLink, error)
	FindLink(ctx context.Context, id string) (*domain.PaymentLink, error)
}

// Composer builds the two notification emails.
type Composer interface {
	OperatorEmail(sub domain.Submission, now time.Time, to string) (domain.NotificationEmail, error)
	SubmitterEmail(sub domain.Submission, now time.Time) (domain.NotificationEmail, error)
}

// Result is returned for a fully processed submission.
type Result struct {
	RedirectURL string
	Outcome     domain.DispatchOutcome
}

// Pipeline is safe for concurrent use; each call works on its own submission.
type Pipeline struct {
	links         LinkService
	composer      Composer
	sender        mailer.Sender
	operatorEmail string
	metrics       *metrics.Metrics
	now           func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithMetrics records results and dispatch outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock replaces the clock used for notification timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(links LinkService, composer Composer, sender mailer.Sender, operatorEmail string, opts ...Option) *Pipeline {
	p := &Pipeline{
		links:         links,
		composer:      composer,
		sender:        sender,
		operatorEmail: operatorEmail,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateLink issues a new payment link.
func (p *Pipeline) CreateLink(ctx context.Context, redirectURL string) (*domain.PaymentLink, error) {
	link, err := p.links.CreateLink(ctx, redirectURL)
	if err != nil {
		return nil, err
	}
	p.metrics.LinkCreated()
	logger.Info("payment link created", "link_id", link.ID)
	return link, nil
}

// Submit processes a submission whose attachments were fully extracted.
func (p *Pipeline) Submit(ctx context.Context, sub domain.Submission) (*Result, error) {
	return p.SubmitUpload(ctx, sub, nil)
}

// SubmitUpload processes a submission together with the error, if any, from
// attachment extraction. Missing-field errors still take precedence over
// attachment errors.
func (p *Pipeline) SubmitUpload(ctx context.Context, sub domain.Submission, extractErr error) (*Result, error) {
	var outcome domain.DispatchOutcome
	stage := StageReceived
	result := metrics.ResultError
	defer func() {
		p.record(sub.LinkID, stage, result, outcome)
	}()

	if err := validate(sub, extractErr); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			switch verr.Kind {
			case KindFields:
				result = metrics.ResultInvalidFields
			default:
				result = metrics.ResultInvalidFiles
			}
		}
		return nil, err
	}
	stage = StageValidated

	link, err := p.links.FindLink(ctx, sub.LinkID)
	if errors.Is(err, paylink.ErrNotFound) {
		result = metrics.ResultLinkNotFound
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving payment link: %w", err)
	}
	stage = StageLinkResolved

	now := p.now()

	opMsg, err := p.composer.OperatorEmail(sub, now, p.operatorEmail)
	if err != nil {
		return nil, fmt.Errorf("composing operator email: %w", err)
	}
	if err := p.sender.Send(ctx, opMsg); err != nil {
		p.metrics.Dispatch(metrics.RecipientOperator, metrics.StatusFailed)
		result = metrics.ResultDispatchFailure
		return nil, &DispatchError{Stage: StageNotifiedOperator, Outcome: outcome, Err: err}
	}
	p.metrics.Dispatch(metrics.RecipientOperator, metrics.StatusSent)
	outcome.OperatorSent = true
	stage = StageNotifiedOperator

	subMsg, err := p.composer.SubmitterEmail(sub, now)
	if err != nil {
		return nil, fmt.Errorf("composing submitter email: %w", err)
	}
	if err := p.sender.Send(ctx, subMsg); err != nil {
		p.metrics.Dispatch(metrics.RecipientSubmitter, metrics.StatusFailed)
		result = metrics.ResultDispatchFailure
		return nil, &DispatchError{Stage: StageNotifiedSubmitter, Outcome: outcome, Err: err}
	}
	p.metrics.Dispatch(metrics.RecipientSubmitter, metrics.StatusSent)
	outcome.SubmitterSent = true
	stage = StageComplete
	result = metrics.ResultOK

	return &Result{RedirectURL: link.RedirectURL, Outcome: outcome}, nil
}

func validate(sub domain.Submission, extractErr error) error {
	if missing := sub.MissingFields(); len(missing) > 0 {
		return &ValidationError{Kind: KindFields, Missing: missing}
	}
	switch {
	case extractErr == nil, errors.Is(extractErr, intake.ErrMissingAttachment):
	case errors.Is(extractErr, intake.ErrTooManyFiles), errors.Is(extractErr, intake.ErrAttachmentRejected):
		return &ValidationError{Kind: KindInvalidAttachments, Err: extractErr}
	default:
		return fmt.Errorf("reading attachments: %w", extractErr)
	}
	if missing := sub.MissingAttachments(); len(missing) > 0 {
		return &ValidationError{Kind: KindAttachments, Missing: missing}
	}
	return nil
}

func (p *Pipeline) record(linkID string, stage Stage, result string, outcome domain.DispatchOutcome) {
	p.metrics.Submission(result)

	fields := []interface{}{
		"link_id", linkID,
		"stage", stage.String(),
		"result", result,
		"operator_sent", outcome.OperatorSent,
		"submitter_sent", outcome.SubmitterSent,
	}
	switch {
	case outcome.Partial():
		p.metrics.PartialDispatch()
		logger.Warn("submission partially notified", fields...)
	case result == metrics.ResultOK:
		logger.Info("submission processed", fields...)
	case result == metrics.ResultError || result == metrics.ResultDispatchFailure:
		logger.Error("submission failed", fields...)
	default:
		logger.Info("submission rejected", fields...)
	}
}
