package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/site"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/site/repository"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

// UpdateRequest is a partial site update. Publish promotes DraftContent to
// the published copy in the same write.
type UpdateRequest struct {
	Title        *string `json:"title,omitempty"`
	DraftContent *string `json:"draftContent,omitempty"`
	Publish      bool    `json:"publish,omitempty"`
}

// SaveVersionRequest carries the snapshot as the editor serialized it. Content
// and PageStyles are opaque strings.
type SaveVersionRequest struct {
	Content     string `json:"content"`
	PageStyles  string `json:"pageStyles"`
	VersionName string `json:"versionName"`
}

// Service implements site and history operations. Every site-scoped call
// re-checks ownership against the store.
type Service struct {
	sites   repository.SiteRepository
	history repository.HistoryRepository
	now     func() time.Time
}

func New(sites repository.SiteRepository, history repository.HistoryRepository) *Service {
	return &Service{
		sites:   sites,
		history: history,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// NewMemoryService returns a Service backed by the in-memory repositories.
func NewMemoryService() *Service {
	return New(repository.NewMemorySiteRepo(), repository.NewMemoryHistoryRepo())
}

// NewMongoService returns a Service backed by the sites and site_history
// collections of db, creating their indexes.
func NewMongoService(ctx context.Context, db *mongo.Database) (*Service, error) {
	sites, err := repository.NewMongoSiteRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	history, err := repository.NewMongoHistoryRepo(ctx, db)
	if err != nil {
		return nil, err
	}
	return New(sites, history), nil
}

// Authorize loads the site and checks that uid owns it. A missing site is
// reported as Forbidden so callers cannot discover ids.
func (s *Service) Authorize(ctx context.Context, uid, siteID string) (*site.Site, error) {
	if uid == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}
	st, err := s.sites.Get(ctx, siteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Forbidden("forbidden")
		}
		return nil, apperr.Internal(err)
	}
	if st.OwnerID != uid {
		return nil, apperr.Forbidden("forbidden")
	}
	return st, nil
}

func (s *Service) Create(ctx context.Context, uid, title string) (*site.Site, error) {
	if uid == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	now := s.now()
	st := &site.Site{
		ID:        uuid.NewString(),
		OwnerID:   uid,
		Title:     title,
		Status:    site.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sites.Create(ctx, st); err != nil {
		return nil, apperr.Internal(err)
	}
	return st, nil
}

func (s *Service) ListOwned(ctx context.Context, uid string) ([]*site.Site, error) {
	if uid == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}
	list, err := s.sites.ListByOwner(ctx, uid)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, uid, siteID string) (*site.Site, error) {
	return s.Authorize(ctx, uid, siteID)
}

func (s *Service) Update(ctx context.Context, uid, siteID string, req UpdateRequest) (*site.Site, error) {
	if _, err := s.Authorize(ctx, uid, siteID); err != nil {
		return nil, err
	}
	if req.Title == nil && req.DraftContent == nil {
		return nil, apperr.BadRequest("no content to update")
	}
	if req.Publish && req.DraftContent == nil {
		return nil, apperr.BadRequest("draftContent is required to publish")
	}

	u := site.Update{Title: req.Title, DraftContent: req.DraftContent, UpdatedAt: s.now()}
	if req.Publish {
		published := *req.DraftContent
		status := site.StatusPublished
		u.PublishedContent = &published
		u.Status = &status
	}
	updated, err := s.sites.Update(ctx, siteID, u)
	if err != nil {
		// deleted between the ownership check and the write
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Forbidden("forbidden")
		}
		return nil, apperr.Internal(err)
	}
	if req.Publish {
		metrics.Publishes.Inc()
	}
	return updated, nil
}

// SaveVersion appends a history entry and returns its id. For saves issued one
// after another, SavedAt never goes backwards within a site even if the clock
// does. Concurrent saves are not serialized and may be stored out of SavedAt
// order; listings still sort by SavedAt then id.
func (s *Service) SaveVersion(ctx context.Context, uid, siteID string, req SaveVersionRequest) (string, error) {
	if _, err := s.Authorize(ctx, uid, siteID); err != nil {
		return "", err
	}
	if req.Content == "" || req.PageStyles == "" || req.VersionName == "" {
		return "", apperr.BadRequest("content, pageStyles and versionName are required")
	}

	savedAt := s.now()
	latest, err := s.history.Latest(ctx, siteID)
	switch {
	case err == nil:
		if savedAt.Before(latest.SavedAt) {
			savedAt = latest.SavedAt
		}
	case !errors.Is(err, repository.ErrNotFound):
		return "", apperr.Internal(err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", apperr.Internal(err)
	}
	entry := &site.HistoryEntry{
		ID:          id.String(),
		SiteID:      siteID,
		Content:     req.Content,
		PageStyles:  req.PageStyles,
		VersionName: req.VersionName,
		UID:         uid,
		SavedAt:     savedAt,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return "", apperr.Internal(err)
	}
	metrics.HistorySaves.Inc()
	return entry.ID, nil
}

func (s *Service) ListVersions(ctx context.Context, uid, siteID string) ([]*site.HistoryEntry, error) {
	if _, err := s.Authorize(ctx, uid, siteID); err != nil {
		return nil, err
	}
	list, err := s.history.List(ctx, siteID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return list, nil
}

func (s *Service) GetVersion(ctx context.Context, uid, siteID, versionID string) (*site.HistoryEntry, error) {
	if _, err := s.Authorize(ctx, uid, siteID); err != nil {
		return nil, err
	}
	e, err := s.history.Get(ctx, siteID, versionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("version not found")
		}
		return nil, apperr.Internal(err)
	}
	return e, nil
}
