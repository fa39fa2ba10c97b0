package store

import (
	"context"

	"github.com/serroba/linkgate/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs click events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveClick(_ context.Context, event *analytics.ClickEvent) error {
	n.logger.Info("link clicked",
		zap.String("id", event.ID),
		zap.String("slug", event.Slug),
		zap.String("targetUrl", event.TargetURL),
		zap.String("country", event.Country),
		zap.String("browser", event.BrowserName),
		zap.Bool("bot", event.IsBot),
		zap.Time("clickedAt", event.ClickedAt),
	)

	return nil
}
