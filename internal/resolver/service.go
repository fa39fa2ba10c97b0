package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/linkgate/internal/analytics"
	"github.com/serroba/linkgate/internal/links"
	"github.com/serroba/linkgate/internal/messaging"
	"github.com/serroba/linkgate/internal/resolution"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Service decides the outcome of a visit from the stored link.
type Service struct {
	repo    links.Repository
	publish messaging.Publish[analytics.ClickEvent]
	newID   func() string
	now     func() time.Time
	logger  *zap.Logger
}

// NewService creates a resolver service. Successful resolutions are published as click events.
func NewService(
	repo links.Repository,
	publish messaging.Publish[analytics.ClickEvent],
	newID func() string,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:    repo,
		publish: publish,
		newID:   newID,
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock overrides the time source used for expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

// Resolve applies link policy in order: lookup, expiry, activity, password.
func (s *Service) Resolve(ctx context.Context, req *resolution.Request) resolution.Outcome {
	slug := links.Slug(req.Slug)
	if !slug.Valid() {
		return resolution.Missing()
	}

	link, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, links.ErrNotFound) {
			return resolution.Missing()
		}

		s.logger.Error("link lookup failed", zap.String("slug", req.Slug), zap.Error(err))

		return resolution.SystemError()
	}

	now := s.now()

	switch {
	case link.Expired(now):
		return resolution.Expired()
	case !link.Active:
		return resolution.Disabled()
	case link.Protected() && req.Password == "":
		return resolution.PasswordRequired()
	case link.Protected() && !passwordMatches(link.PasswordHash, req.Password):
		return resolution.IncorrectPassword()
	}

	s.recordClick(ctx, req, link, now)

	return resolution.Target(link.TargetURL)
}

// recordClick never changes the outcome of a visit.
func (s *Service) recordClick(ctx context.Context, req *resolution.Request, link *links.Link, now time.Time) {
	if s.publish == nil {
		return
	}

	event := analytics.NewClickEvent(s.newID(), req, link.TargetURL, now.UTC())

	if err := s.publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish click event",
			zap.String("slug", req.Slug),
			zap.Error(err),
		)
	}
}

func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword returns the bcrypt hash stored for protected links.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}
