package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkgate/internal/links"
	"go.uber.org/zap"
)

// RedisCacheRepository wraps a links.Repository with Redis caching for reads.
type RedisCacheRepository struct {
	store  links.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store links.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link_cache:",
		ttl:    ttl,
		logger: logger,
	}
}

// Save stores a link in the underlying store and refreshes the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, link *links.Link) error {
	if err := r.store.Save(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// GetBySlug retrieves a link by slug, checking the cache first.
// Cache failures fall through to the underlying store.
func (r *RedisCacheRepository) GetBySlug(ctx context.Context, slug links.Slug) (*links.Link, error) {
	link, err := r.getFromCache(ctx, slug)
	if err == nil {
		return link, nil
	}

	if !isRedisMiss(err) {
		r.logger.Warn("link cache read failed", zap.String("slug", string(slug)), zap.Error(err))
	}

	link, err = r.store.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, slug links.Slug) (*links.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(slug)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, links.ErrNotFound
	}

	return linkFromHash(result)
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *links.Link) {
	key := r.prefix + string(link.Slug)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, linkFields(link))

		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}

		return nil
	})
	if err != nil {
		r.logger.Warn("link cache write failed", zap.String("slug", string(link.Slug)), zap.Error(err))
	}
}

// Compile-time check.
var _ links.Repository = (*RedisCacheRepository)(nil)
