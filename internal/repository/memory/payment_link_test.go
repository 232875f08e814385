package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFind(t *testing.T) {
	repo := NewPaymentLinkRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.PaymentLink{ID: "a", RedirectURL: "https://example.com/a"}))

	link, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", link.RedirectURL)

	_, err = repo.FindByID(ctx, "b")
	assert.ErrorIs(t, err, paylink.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}

func TestInsertDuplicate(t *testing.T) {
	repo := NewPaymentLinkRepo()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.PaymentLink{ID: "a", RedirectURL: "https://example.com/1"}))
	err := repo.Insert(ctx, &domain.PaymentLink{ID: "a", RedirectURL: "https://example.com/2"})
	assert.ErrorIs(t, err, paylink.ErrDuplicateID)

	link, _ := repo.FindByID(ctx, "a")
	assert.Equal(t, "https://example.com/1", link.RedirectURL)
}

func TestReturnedCopyIsDetached(t *testing.T) {
	repo := NewPaymentLinkRepo()
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.PaymentLink{ID: "a", RedirectURL: "https://example.com/a"}))

	link, _ := repo.FindByID(ctx, "a")
	link.RedirectURL = "mutated"

	again, _ := repo.FindByID(ctx, "a")
	assert.Equal(t, "https://example.com/a", again.RedirectURL)
}

func TestConcurrentInserts(t *testing.T) {
	repo := NewPaymentLinkRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Insert(ctx, &domain.PaymentLink{ID: fmt.Sprintf("id-%d", i)})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, repo.Len())
}
