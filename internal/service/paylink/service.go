package paylink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guaraci/paylink/internal/domain"
)

// IDFunc generates link ids. The default is a random (v4) UUID.
type IDFunc func() string

// Service implements payment link business logic. It is safe for concurrent use.
type Service struct {
	repo  Repository
	newID IDFunc
	now   func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithIDFunc replaces the id generator.
func WithIDFunc(fn IDFunc) Option {
	return func(s *Service) { s.newID = fn }
}

// WithClock replaces the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a payment link service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLink issues a new link pointing at redirectURL. The URL is stored as
// given; blank input is rejected.
func (s *Service) CreateLink(ctx context.Context, redirectURL string) (*domain.PaymentLink, error) {
	if strings.TrimSpace(redirectURL) == "" {
		return nil, ErrRedirectURLRequired
	}

	link := &domain.PaymentLink{
		ID:          s.newID(),
		RedirectURL: redirectURL,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, link); err != nil {
		return nil, fmt.Errorf("insert payment link: %w", err)
	}
	return link, nil
}

// FindLink looks up a link by exact id. No trimming or case folding is
// applied: the id must match what CreateLink returned.
func (s *Service) FindLink(ctx context.Context, id string) (*domain.PaymentLink, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	link, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return link, nil
}

// Ping checks the repository.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
