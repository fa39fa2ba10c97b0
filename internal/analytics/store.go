package analytics

import "context"

// Store defines the interface for persisting click events.
type Store interface {
	SaveClick(ctx context.Context, event *ClickEvent) error
}

// HandleClick returns a consumer handler that persists click events to store.
func HandleClick(store Store) func(ctx context.Context, event *ClickEvent) error {
	return func(ctx context.Context, event *ClickEvent) error {
		return store.SaveClick(ctx, event)
	}
}
