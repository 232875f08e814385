// Package memory provides a process-local payment link repository for
// development and tests. Links do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/service/paylink"
)

// PaymentLinkRepo implements paylink.Repository with a mutex-guarded map.
type PaymentLinkRepo struct {
	mu    sync.RWMutex
	links map[string]domain.PaymentLink
}

// NewPaymentLinkRepo creates an empty in-memory repository.
func NewPaymentLinkRepo() *PaymentLinkRepo {
	return &PaymentLinkRepo{links: make(map[string]domain.PaymentLink)}
}

func (r *PaymentLinkRepo) Insert(_ context.Context, link *domain.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.links[link.ID]; exists {
		return paylink.ErrDuplicateID
	}
	r.links[link.ID] = *link
	return nil
}

func (r *PaymentLinkRepo) FindByID(_ context.Context, id string) (*domain.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	link, ok := r.links[id]
	if !ok {
		return nil, paylink.ErrNotFound
	}
	return &link, nil
}

func (r *PaymentLinkRepo) Ping(context.Context) error { return nil }

// Len returns the number of stored links.
func (r *PaymentLinkRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links)
}
