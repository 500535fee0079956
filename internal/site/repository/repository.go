package repository

import (
	"context"
	"errors"

	"github.com/sitecraft/sitecraft/backend/go-services/internal/site"
)

var (
	ErrNotFound = errors.New("not found")
)

// SiteRepository persists site documents.
type SiteRepository interface {
	Create(ctx context.Context, s *site.Site) error
	Get(ctx context.Context, id string) (*site.Site, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*site.Site, error)
	Update(ctx context.Context, id string, u site.Update) (*site.Site, error)
}

// HistoryRepository is append-only: entries are never updated or deleted.
type HistoryRepository interface {
	Append(ctx context.Context, e *site.HistoryEntry) error
	// Latest returns the most recent entry of a site, or ErrNotFound.
	Latest(ctx context.Context, siteID string) (*site.HistoryEntry, error)
	// List returns entries of a site ordered savedAt desc, id desc.
	List(ctx context.Context, siteID string) ([]*site.HistoryEntry, error)
	Get(ctx context.Context, siteID, id string) (*site.HistoryEntry, error)
}
