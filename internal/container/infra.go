package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sethvargo/go-retry"
	"github.com/serroba/linkgate/internal/store"
	"go.uber.org/zap"
)

const (
	connectAttempts = 5
	connectBackoff  = 200 * time.Millisecond
	connectTimeout  = 30 * time.Second
)

// Redis holds the shared Redis client. Client is nil when Redis is not configured.
type Redis struct {
	Client *redis.Client
}

// Shutdown closes the client.
func (r *Redis) Shutdown() error {
	if r.Client == nil {
		return nil
	}

	return r.Client.Close()
}

// Postgres holds the shared connection pool. Pool is nil when PostgreSQL is not configured.
type Postgres struct {
	Pool *pgxpool.Pool
}

// Shutdown closes the pool.
func (p *Postgres) Shutdown() error {
	if p.Pool != nil {
		p.Pool.Close()
	}

	return nil
}

// LoggerPackage provides the application logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client, verified with a few pings on startup.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return &Redis{}, nil
		}

		logger := do.MustInvoke[*zap.Logger](i)
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		err := probe(logger, "redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		if err != nil {
			_ = client.Close()

			return nil, err
		}

		return &Redis{Client: client}, nil
	})
}

// PostgresPackage provides the PostgreSQL pool with the schema migrated.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.DatabaseURL == "" {
			return &Postgres{}, nil
		}

		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}

		if err := probe(logger, "postgres", pool.Ping); err != nil {
			pool.Close()

			return nil, err
		}

		if err := store.Migrate(ctx, pool); err != nil {
			pool.Close()

			return nil, err
		}

		logger.Info("postgres ready")

		return &Postgres{Pool: pool}, nil
	})
}

// probe retries ping with exponential backoff until it succeeds or attempts run out.
func probe(logger *zap.Logger, name string, ping func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(connectAttempts, retry.NewExponential(connectBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := ping(ctx); err != nil {
			logger.Warn("dependency not ready", zap.String("dependency", name), zap.Error(err))

			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", name, err)
	}

	return nil
}
