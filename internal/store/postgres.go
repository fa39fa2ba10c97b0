package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/linkgate/internal/analytics"
	"github.com/serroba/linkgate/internal/links"
)

// PostgresStore is a PostgreSQL implementation of links.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, link *links.Link) error {
	query := `
		INSERT INTO links (slug, target_url, active, expires_at, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO UPDATE SET
			target_url = EXCLUDED.target_url,
			active = EXCLUDED.active,
			expires_at = EXCLUDED.expires_at,
			password_hash = EXCLUDED.password_hash
	`

	_, err := p.pool.Exec(ctx, query,
		string(link.Slug),
		link.TargetURL,
		link.Active,
		link.ExpiresAt,
		nullableString(link.PasswordHash),
		link.CreatedAt,
	)

	return err
}

func (p *PostgresStore) GetBySlug(ctx context.Context, slug links.Slug) (*links.Link, error) {
	query := `
		SELECT slug, target_url, active, expires_at, password_hash, clicks, created_at
		FROM links
		WHERE slug = $1
	`

	var link links.Link

	var passwordHash *string

	err := p.pool.QueryRow(ctx, query, string(slug)).Scan(
		&link.Slug,
		&link.TargetURL,
		&link.Active,
		&link.ExpiresAt,
		&passwordHash,
		&link.Clicks,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, links.ErrNotFound
		}

		return nil, err
	}

	if passwordHash != nil {
		link.PasswordHash = *passwordHash
	}

	return &link, nil
}

// PostgresClickStore persists click events and maintains links.clicks.
type PostgresClickStore struct {
	pool *pgxpool.Pool
}

// NewPostgresClickStore creates a new PostgreSQL-backed click store.
func NewPostgresClickStore(pool *pgxpool.Pool) *PostgresClickStore {
	return &PostgresClickStore{pool: pool}
}

// SaveClick records the click and bumps the link counter in one transaction.
// Redelivered events are recognised by ID and counted once.
func (p *PostgresClickStore) SaveClick(ctx context.Context, event *analytics.ClickEvent) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO clicks (
				id, slug, target_url, clicked_at, referer, ip, city, region, country,
				latitude, longitude, language, device_model, browser_name, engine_name,
				os_name, cpu_architecture, is_bot
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO NOTHING
		`,
			event.ID,
			event.Slug,
			event.TargetURL,
			event.ClickedAt,
			nullableString(event.Referer),
			nullableString(event.IP),
			nullableString(event.City),
			nullableString(event.Region),
			nullableString(event.Country),
			nullableString(event.Latitude),
			nullableString(event.Longitude),
			nullableString(event.Language),
			nullableString(event.DeviceModel),
			nullableString(event.BrowserName),
			nullableString(event.EngineName),
			nullableString(event.OSName),
			nullableString(event.CPUArchitecture),
			event.IsBot,
		)
		if err != nil {
			return fmt.Errorf("insert click %s: %w", event.ID, err)
		}

		if tag.RowsAffected() == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `UPDATE links SET clicks = clicks + 1 WHERE slug = $1`, event.Slug)
		if err != nil {
			return fmt.Errorf("increment clicks for %s: %w", event.Slug, err)
		}

		return nil
	})
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

var (
	_ links.Repository = (*PostgresStore)(nil)
	_ analytics.Store  = (*PostgresClickStore)(nil)
)
