package storage

import (
	"context"
	"log/slog"
	"time"

	"bookrecords/internal/book"
	"bookrecords/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Open connects the configured backend. The returned func releases
// the connection.
func Open(ctx context.Context, cfg config.Config) (book.Collection, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := openPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return book.NewPostgresCollection(pool, cfg.StoreTimeout), pool.Close, nil
	case config.DriverMemory:
		slog.Warn("using in-memory store; data is lost on restart")
		return book.NewMemoryCollection(), func() {}, nil
	default:
		client, err := openMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				slog.Warn("mongo disconnect", "error", err)
			}
		}
		coll := book.NewMongoCollection(
			client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection),
			cfg.StoreTimeout,
		)
		if err := coll.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return coll, closeFn, nil
	}
}

func openMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("mongo connection OK", "uri", config.RedactDSN(uri))
	return client, nil
}

func openPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("database connection OK", "dsn", config.RedactDSN(dsn))
	return pool, nil
}
