package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/pkg/lazyconn"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE for a primary key / unique index conflict.
const uniqueViolation = "23505"

// PaymentLinkRepo implements paylink.Repository against PostgreSQL.
type PaymentLinkRepo struct {
	conn *lazyconn.Handle[*sqlx.DB]
}

// NewPaymentLinkRepo creates a Postgres-backed payment link repository.
func NewPaymentLinkRepo(conn *lazyconn.Handle[*sqlx.DB]) *PaymentLinkRepo {
	return &PaymentLinkRepo{conn: conn}
}

type paymentLinkRow struct {
	ID          string    `db:"id"`
	RedirectURL string    `db:"redirect_url"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *PaymentLinkRepo) Insert(ctx context.Context, link *domain.PaymentLink) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO payment_links (id, redirect_url, created_at) VALUES ($1, $2, $3)`,
		link.ID, link.RedirectURL, link.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return paylink.ErrDuplicateID
		}
		return fmt.Errorf("insert payment link: %w", err)
	}
	return nil
}

func (r *PaymentLinkRepo) FindByID(ctx context.Context, id string) (*domain.PaymentLink, error) {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	var row paymentLinkRow
	err = db.GetContext(ctx, &row,
		`SELECT id, redirect_url, created_at FROM payment_links WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, paylink.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment link: %w", err)
	}
	return &domain.PaymentLink{ID: row.ID, RedirectURL: row.RedirectURL, CreatedAt: row.CreatedAt}, nil
}

func (r *PaymentLinkRepo) Ping(ctx context.Context) error {
	db, err := r.conn.Get(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Dial returns a lazyconn dialer opening a pooled *sqlx.DB for dsn. Connect
// and statement timeouts are appended when the DSN does not set them.
func Dial(dsn string) lazyconn.DialFunc[*sqlx.DB] {
	return func(ctx context.Context) (*sqlx.DB, error) {
		db, err := sqlx.ConnectContext(ctx, "postgres", WithTimeouts(dsn))
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		return db, nil
	}
}

// Close is the lazyconn close function for *sqlx.DB handles.
func Close(_ context.Context, db *sqlx.DB) error {
	return db.Close()
}

// WithTimeouts appends connect_timeout and statement_timeout parameters to a
// URL-style DSN unless they are already present.
func WithTimeouts(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	if !strings.Contains(dsn, "connect_timeout") {
		dsn += sep + "connect_timeout=5"
		sep = "&"
	}
	if !strings.Contains(dsn, "statement_timeout") {
		dsn += sep + "options=-c%20statement_timeout%3D15000"
	}
	return dsn
}
