package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/apperr"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/site"
	"github.com/sitecraft/sitecraft/backend/go-services/internal/site/repository"
	"github.com/sitecraft/sitecraft/backend/go-services/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func newSite(t *testing.T, svc *Service, owner string) *site.Site {
	t.Helper()
	st, err := svc.Create(context.Background(), owner, "My site")
	require.NoError(t, err)
	return st
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	got, err := svc.Authorize(ctx, "alice", st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.ID, got.ID)

	_, err = svc.Authorize(ctx, "bob", st.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Authorize(ctx, "alice", "missing")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.Authorize(ctx, "", st.ID)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

type failingSites struct{ repository.SiteRepository }

func (failingSites) Get(context.Context, string) (*site.Site, error) {
	return nil, errors.New("connection reset")
}

func TestAuthorize_StoreFailureIsInternal(t *testing.T) {
	svc := New(failingSites{}, repository.NewMemoryHistoryRepo())
	_, err := svc.Authorize(context.Background(), "alice", "s1")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, "internal server error", apperr.Message(err))
}

func TestCreateAndListOwned(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()

	_, err := svc.Create(ctx, "alice", "  ")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	a := newSite(t, svc, "alice")
	assert.Equal(t, site.StatusDraft, a.Status)
	assert.Equal(t, "alice", a.OwnerID)
	newSite(t, svc, "bob")

	list, err := svc.ListOwned(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
}

func TestUpdate_NoContent(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	_, err := svc.Update(ctx, "alice", st.ID, UpdateRequest{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "no content to update", apperr.Message(err))

	after, err := svc.Get(ctx, "alice", st.ID)
	require.NoError(t, err)
	assert.Equal(t, st.UpdatedAt, after.UpdatedAt)
}

func TestUpdate_TitleOnly(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")
	svc.now = func() time.Time { return st.UpdatedAt.Add(time.Minute) }

	got, err := svc.Update(ctx, "alice", st.ID, UpdateRequest{Title: strp("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, site.StatusDraft, got.Status)
	assert.Equal(t, "alice", got.OwnerID)
	assert.True(t, got.UpdatedAt.After(st.UpdatedAt))
}

func TestUpdate_Publish(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")
	before := testutil.ToFloat64(metrics.Publishes)

	got, err := svc.Update(ctx, "alice", st.ID, UpdateRequest{DraftContent: strp("<h1>hi</h1>"), Publish: true})
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", got.DraftContent)
	assert.Equal(t, "<h1>hi</h1>", got.PublishedContent)
	assert.Equal(t, site.StatusPublished, got.Status)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Publishes))

	// a later draft edit leaves the published copy alone
	got, err = svc.Update(ctx, "alice", st.ID, UpdateRequest{DraftContent: strp("wip")})
	require.NoError(t, err)
	assert.Equal(t, "wip", got.DraftContent)
	assert.Equal(t, "<h1>hi</h1>", got.PublishedContent)
	assert.Equal(t, site.StatusPublished, got.Status)
}

func TestUpdate_PublishWithoutDraft(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	_, err := svc.Update(ctx, "alice", st.ID, UpdateRequest{Title: strp("x"), Publish: true})
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	after, err := svc.Get(ctx, "alice", st.ID)
	require.NoError(t, err)
	assert.Equal(t, site.StatusDraft, after.Status)
	assert.Equal(t, "My site", after.Title)
}

func TestUpdate_NonOwnerForbidden(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	_, err := svc.Update(ctx, "bob", st.ID, UpdateRequest{Title: strp("pwned")})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	after, _ := svc.Get(ctx, "alice", st.ID)
	assert.Equal(t, "My site", after.Title)
}

func TestSaveVersion_RequiresAllFields(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	for _, req := range []SaveVersionRequest{
		{PageStyles: "p", VersionName: "v"},
		{Content: "c", VersionName: "v"},
		{Content: "c", PageStyles: "p"},
	} {
		_, err := svc.SaveVersion(ctx, "alice", st.ID, req)
		assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	}
	list, err := svc.ListVersions(ctx, "alice", st.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveVersion_ListAndFetch(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")
	before := testutil.ToFloat64(metrics.HistorySaves)

	id1, err := svc.SaveVersion(ctx, "alice", st.ID, SaveVersionRequest{Content: "c1", PageStyles: "p1", VersionName: "v1"})
	require.NoError(t, err)
	id2, err := svc.SaveVersion(ctx, "alice", st.ID, SaveVersionRequest{Content: "c2", PageStyles: "p2", VersionName: "v2"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.HistorySaves))

	list, err := svc.ListVersions(ctx, "alice", st.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID)
	assert.Equal(t, id1, list[1].ID)
	assert.False(t, list[0].SavedAt.Before(list[1].SavedAt))

	e, err := svc.GetVersion(ctx, "alice", st.ID, id1)
	require.NoError(t, err)
	assert.Equal(t, "c1", e.Content)
	assert.Equal(t, "alice", e.UID)

	_, err = svc.GetVersion(ctx, "alice", st.ID, "nope")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, "version not found", apperr.Message(err))
}

func TestSaveVersion_ClockGoingBackwards(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	st := newSite(t, svc, "alice")

	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	_, err := svc.SaveVersion(ctx, "alice", st.ID, SaveVersionRequest{Content: "a", PageStyles: "p", VersionName: "v"})
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(-time.Hour) }
	_, err = svc.SaveVersion(ctx, "alice", st.ID, SaveVersionRequest{Content: "b", PageStyles: "p", VersionName: "v"})
	require.NoError(t, err)

	list, err := svc.ListVersions(ctx, "alice", st.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, t0, list[0].SavedAt)
	assert.Equal(t, t0, list[1].SavedAt)
	// v7 ids break the tie in insertion order
	assert.Equal(t, "b", list[0].Content)
}

func TestVersions_ScopedToSite(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryService()
	a := newSite(t, svc, "alice")
	b := newSite(t, svc, "alice")

	id, err := svc.SaveVersion(ctx, "alice", a.ID, SaveVersionRequest{Content: "c", PageStyles: "p", VersionName: "v"})
	require.NoError(t, err)

	_, err = svc.GetVersion(ctx, "alice", b.ID, id)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.ListVersions(ctx, "bob", a.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.GetVersion(ctx, "bob", a.ID, id)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, err = svc.SaveVersion(ctx, "bob", a.ID, SaveVersionRequest{Content: "c", PageStyles: "p", VersionName: "v"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
