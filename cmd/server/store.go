package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/guaraci/paylink/internal/config"
	"github.com/guaraci/paylink/internal/pkg/lazyconn"
	"github.com/guaraci/paylink/internal/repository/dynamo"
	"github.com/guaraci/paylink/internal/repository/memory"
	"github.com/guaraci/paylink/internal/repository/mongodb"
	"github.com/guaraci/paylink/internal/repository/postgres"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

// linkStore bundles the selected repository with its lifecycle hooks.
type linkStore struct {
	repo  paylink.Repository
	warm  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func noop(context.Context) error { return nil }

func openStore(ctx context.Context, cfg config.StoreConfig) (*linkStore, error) {
	switch cfg.Driver {
	case config.StoreMongo:
		dial := mongodb.Dial(cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout())
		handle := lazyconn.New[*mongo.Client]("mongo", dial, mongodb.Close)
		repo := mongodb.NewPaymentLinkRepo(handle, cfg.MongoDatabase)
		return &linkStore{repo: repo, warm: repo.Ping, close: handle.Close}, nil

	case config.StorePostgres:
		handle := lazyconn.New[*sqlx.DB]("postgres", postgres.Dial(cfg.DatabaseURL), postgres.Close)
		repo := postgres.NewPaymentLinkRepo(handle)
		return &linkStore{repo: repo, warm: repo.Ping, close: handle.Close}, nil

	case config.StoreDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		repo := dynamo.NewPaymentLinkRepo(client, cfg.DynamoDBTable)
		return &linkStore{repo: repo, warm: repo.Ping, close: noop}, nil

	case config.StoreMemory:
		log.Println("[store] Warning: in-memory store, links are lost on restart")
		return &linkStore{repo: memory.NewPaymentLinkRepo(), warm: noop, close: noop}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// warmUp connects in the background. Failures are logged only; the next
// request retries the connection.
func (s *linkStore) warmUp(ctx context.Context, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	warmCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := s.warm(warmCtx); err != nil {
		log.Printf("[store] Warning: warm-up failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[store] ready in %s", time.Since(start).Round(time.Millisecond))
}
