package links

import (
	"context"
	"errors"
	"regexp"
	"time"
)

var ErrNotFound = errors.New("link not found")

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Slug identifies a short link. Slugs are case-sensitive.
type Slug string

// Valid reports whether s is a well-formed slug.
func (s Slug) Valid() bool {
	return slugPattern.MatchString(string(s))
}

// Link represents a short link as stored by the resolver.
type Link struct {
	Slug         Slug
	TargetURL    string
	Active       bool
	ExpiresAt    *time.Time // nil means the link never expires
	PasswordHash string     // bcrypt hash, empty when the link is not protected
	Clicks       int64
	CreatedAt    time.Time
}

// Expired reports whether the link expired before now.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Protected reports whether the link requires a password.
func (l *Link) Protected() bool {
	return l.PasswordHash != ""
}

// Repository defines link storage operations used by the resolver.
type Repository interface {
	Save(ctx context.Context, link *Link) error
	// GetBySlug returns ErrNotFound when no link exists for the slug.
	GetBySlug(ctx context.Context, slug Slug) (*Link, error)
}
