package store

import (
	"context"
	"sync"

	"github.com/serroba/linkgate/internal/analytics"
	"github.com/serroba/linkgate/internal/links"
)

// MemoryStore is an in-memory implementation of links.Repository.
// It also counts clicks so it can serve as an analytics.Store.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[links.Slug]links.Link
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links: make(map[links.Slug]links.Link),
	}
}

func (m *MemoryStore) Save(_ context.Context, link *links.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.Slug] = *link

	return nil
}

func (m *MemoryStore) GetBySlug(_ context.Context, slug links.Slug) (*links.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[slug]
	if !ok {
		return nil, links.ErrNotFound
	}

	return &link, nil
}

// SaveClick increments the click counter of the clicked link.
func (m *MemoryStore) SaveClick(_ context.Context, event *analytics.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slug := links.Slug(event.Slug)

	link, ok := m.links[slug]
	if !ok {
		return links.ErrNotFound
	}

	link.Clicks++
	m.links[slug] = link

	return nil
}

var (
	_ links.Repository = (*MemoryStore)(nil)
	_ analytics.Store  = (*MemoryStore)(nil)
)
