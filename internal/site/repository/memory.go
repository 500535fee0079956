package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/site"
)

// MemorySiteRepo is an in-memory SiteRepository used when no MongoDB URI is
// configured and in unit tests. Returned values are copies.
type MemorySiteRepo struct {
	mu    sync.RWMutex
	store map[string]*site.Site
}

func NewMemorySiteRepo() *MemorySiteRepo {
	return &MemorySiteRepo{store: make(map[string]*site.Site)}
}

func (m *MemorySiteRepo) Create(_ context.Context, s *site.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MemorySiteRepo) Get(_ context.Context, id string) (*site.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemorySiteRepo) ListByOwner(_ context.Context, ownerID string) ([]*site.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*site.Site, 0)
	for _, s := range m.store {
		if s.OwnerID == ownerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemorySiteRepo) Update(_ context.Context, id string, u site.Update) (*site.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	if u.Title != nil {
		s.Title = *u.Title
	}
	if u.DraftContent != nil {
		s.DraftContent = *u.DraftContent
	}
	if u.PublishedContent != nil {
		s.PublishedContent = *u.PublishedContent
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
	s.UpdatedAt = u.UpdatedAt
	cp := *s
	return &cp, nil
}

// MemoryHistoryRepo keeps history entries per site id.
type MemoryHistoryRepo struct {
	mu    sync.RWMutex
	store map[string][]*site.HistoryEntry
}

func NewMemoryHistoryRepo() *MemoryHistoryRepo {
	return &MemoryHistoryRepo{store: make(map[string][]*site.HistoryEntry)}
}

func (m *MemoryHistoryRepo) Append(_ context.Context, e *site.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.store[e.SiteID] = append(m.store[e.SiteID], &cp)
	return nil
}

func (m *MemoryHistoryRepo) Latest(ctx context.Context, siteID string) (*site.HistoryEntry, error) {
	list, err := m.List(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

func (m *MemoryHistoryRepo) List(_ context.Context, siteID string) ([]*site.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := m.store[siteID]
	out := make([]*site.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].SavedAt.After(out[j].SavedAt)
	})
	return out, nil
}

func (m *MemoryHistoryRepo) Get(_ context.Context, siteID, id string) (*site.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.store[siteID] {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
