package paylink

import (
	"context"

	"github.com/guaraci/paylink/internal/domain"
)

// Repository defines the data access contract for payment links.
type Repository interface {
	// Insert persists a new link. Returns ErrDuplicateID if the id is taken.
	Insert(ctx context.Context, link *domain.PaymentLink) error

	// FindByID returns the link with exactly this id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*domain.PaymentLink, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
