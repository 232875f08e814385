// Package mongodb stores payment links in MongoDB. Documents use the same
// collection and field names as the links issued by earlier deployments
// ({id, redirectUrl} in "paymentlinks"), so existing links keep resolving.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/pkg/lazyconn"
	"github.com/guaraci/paylink/internal/service/paylink"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the collection holding payment link documents.
const CollectionName = "paymentlinks"

// PaymentLinkRepo implements paylink.Repository against MongoDB.
type PaymentLinkRepo struct {
	conn     *lazyconn.Handle[*mongo.Client]
	database string
}

// NewPaymentLinkRepo creates a Mongo-backed payment link repository.
func NewPaymentLinkRepo(conn *lazyconn.Handle[*mongo.Client], database string) *PaymentLinkRepo {
	return &PaymentLinkRepo{conn: conn, database: database}
}

type paymentLinkDoc struct {
	ID          string    `bson:"id"`
	RedirectURL string    `bson:"redirectUrl"`
	CreatedAt   time.Time `bson:"createdAt,omitempty"`
}

func (r *PaymentLinkRepo) collection(ctx context.Context) (*mongo.Collection, error) {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return client.Database(r.database).Collection(CollectionName), nil
}

func (r *PaymentLinkRepo) Insert(ctx context.Context, link *domain.PaymentLink) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, paymentLinkDoc{
		ID:          link.ID,
		RedirectURL: link.RedirectURL,
		CreatedAt:   link.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return paylink.ErrDuplicateID
	}
	if err != nil {
		return fmt.Errorf("insert payment link: %w", err)
	}
	return nil
}

func (r *PaymentLinkRepo) FindByID(ctx context.Context, id string) (*domain.PaymentLink, error) {
	coll, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	var doc paymentLinkDoc
	err = coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, paylink.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment link: %w", err)
	}
	return &domain.PaymentLink{ID: doc.ID, RedirectURL: doc.RedirectURL, CreatedAt: doc.CreatedAt}, nil
}

func (r *PaymentLinkRepo) Ping(ctx context.Context) error {
	client, err := r.conn.Get(ctx)
	if err != nil {
		return err
	}
	return client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the unique index on id. Safe to run repeatedly.
func (r *PaymentLinkRepo) EnsureIndexes(ctx context.Context) error {
	coll, err := r.collection(ctx)
	if err != nil {
		return err
	}
	return ensureIndexes(ctx, coll)
}

func ensureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("id_unique"),
	})
	if err != nil {
		return fmt.Errorf("create payment link index: %w", err)
	}
	return nil
}

// Dial returns a lazyconn dialer for uri. The client pools connections and
// is safe for concurrent use. Every successful dial pings the primary and
// ensures the id index in database, so the index exists whenever the first
// connection is made, not only when the store was reachable at boot.
func Dial(uri, database string, timeout time.Duration) lazyconn.DialFunc[*mongo.Client] {
	return func(ctx context.Context) (*mongo.Client, error) {
		opts := options.Client().
			ApplyURI(uri).
			SetConnectTimeout(timeout).
			SetServerSelectionTimeout(timeout)
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := prepare(ctx, client, database, timeout); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return client, nil
	}
}

// prepare readies a freshly connected client. A failure leaves the handle
// disconnected so the next request dials again.
func prepare(ctx context.Context, client *mongo.Client, database string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return ensureIndexes(ctx, client.Database(database).Collection(CollectionName))
}

// Close is the lazyconn close function for *mongo.Client handles.
func Close(ctx context.Context, client *mongo.Client) error {
	return client.Disconnect(ctx)
}
