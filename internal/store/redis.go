package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/linkgate/internal/analytics"
	"github.com/serroba/linkgate/internal/links"
)

// RedisStore is a Redis implementation of links.Repository.
// Each link is a hash under "link:<slug>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "link:",
	}
}

func (r *RedisStore) Save(ctx context.Context, link *links.Link) error {
	key := r.prefix + string(link.Slug)

	// Replace the whole hash so cleared fields do not linger.
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, linkFields(link))

		return nil
	})

	return err
}

func (r *RedisStore) GetBySlug(ctx context.Context, slug links.Slug) (*links.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(slug)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, links.ErrNotFound
	}

	return linkFromHash(result)
}

// SaveClick increments the click counter of the clicked link.
func (r *RedisStore) SaveClick(ctx context.Context, event *analytics.ClickEvent) error {
	key := r.prefix + event.Slug

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	if exists == 0 {
		return links.ErrNotFound
	}

	return r.client.HIncrBy(ctx, key, "clicks", 1).Err()
}

func linkFields(link *links.Link) map[string]any {
	fields := map[string]any{
		"slug":          string(link.Slug),
		"target_url":    link.TargetURL,
		"active":        strconv.FormatBool(link.Active),
		"password_hash": link.PasswordHash,
		"clicks":        link.Clicks,
		"created_at":    link.CreatedAt.UnixNano(),
	}

	if link.ExpiresAt != nil {
		fields["expires_at"] = link.ExpiresAt.UnixNano()
	}

	return fields
}

func linkFromHash(h map[string]string) (*links.Link, error) {
	link := &links.Link{
		Slug:         links.Slug(h["slug"]),
		TargetURL:    h["target_url"],
		PasswordHash: h["password_hash"],
	}

	var err error

	if link.Active, err = strconv.ParseBool(h["active"]); err != nil {
		return nil, fmt.Errorf("decode link %s active: %w", link.Slug, err)
	}

	if v, ok := h["clicks"]; ok {
		if link.Clicks, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("decode link %s clicks: %w", link.Slug, err)
		}
	}

	if v, ok := h["created_at"]; ok {
		nanos, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode link %s created_at: %w", link.Slug, err)
		}

		link.CreatedAt = time.Unix(0, nanos).UTC()
	}

	if v, ok := h["expires_at"]; ok && v != "" {
		nanos, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode link %s expires_at: %w", link.Slug, err)
		}

		expires := time.Unix(0, nanos).UTC()
		link.ExpiresAt = &expires
	}

	return link, nil
}

// isRedisMiss reports whether err is a plain cache miss.
func isRedisMiss(err error) bool {
	return errors.Is(err, redis.Nil) || errors.Is(err, links.ErrNotFound)
}

var (
	_ links.Repository = (*RedisStore)(nil)
	_ analytics.Store  = (*RedisStore)(nil)
)
