package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

var now = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()
	col := store.NewCollection[models.ContentItem](store.NewMemoryStore(), store.Content)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(col, log, WithClock(func() time.Time { return now }))
}

func TestCreateStartsInDraft(t *testing.T) {
	svc := newService(t)
	item, err := svc.Create(context.Background(), NewContent{
		ProjectID: "p1", Title: "  Launch post ", Platform: "LinkedIn",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, item.Status)
	assert.Equal(t, models.PriorityMedium, item.Priority)
	assert.Equal(t, models.TypePost, item.Type)
	assert.Equal(t, "Launch post", item.Title)
	assert.Equal(t, "linkedin", item.Platform)
	assert.Equal(t, now, item.CreatedAt)
	assert.Equal(t, 1, item.Version)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := []NewContent{
		{ProjectID: "p1"},
		{Title: "x"},
		{ProjectID: "p1", Title: "x", Type: "podcast"},
		{ProjectID: "p1", Title: "x", Priority: "asap"},
		{ProjectID: "p1", Title: "x", FunnelStage: "ZOFU"},
	}
	for _, in := range cases {
		_, err := svc.Create(ctx, in)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "%+v: %v", in, err)
	}
}

func TestListFilters(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	for _, in := range []NewContent{
		{ProjectID: "p1", Title: "a", Platform: "twitter"},
		{ProjectID: "p1", Title: "b", Platform: "linkedin"},
		{ProjectID: "p2", Title: "c", Platform: "twitter"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, Filter{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, Filter{Platforms: []string{"twitter"}})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.List(ctx, Filter{Statuses: []models.ContentStatus{models.StatusApproved}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPatchRoutesStatusThroughWorkflow(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	published := models.StatusPublished
	title := "renamed"
	_, err = svc.Patch(ctx, item.ID, Patch{Title: &title, Status: &published})
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	stored, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", stored.Title, "rejected transition must not persist field edits")
	assert.Equal(t, models.StatusDraft, stored.Status)

	for _, st := range []models.ContentStatus{models.StatusReadyForReview, models.StatusApproved} {
		item, err = svc.Transition(ctx, item.ID, st, "")
		require.NoError(t, err)
	}

	when := now.Add(72 * time.Hour)
	scheduled := models.StatusScheduled
	item, err = svc.Patch(ctx, item.ID, Patch{ScheduledFor: &when, Status: &scheduled})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, item.Status)
	assert.Equal(t, when, *item.ScheduledFor)
	assert.Equal(t, 4, item.Version)
}

func TestPatchVersionCheck(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	stale := 7
	body := "new body"
	_, err = svc.Patch(ctx, item.ID, Patch{Body: &body, Version: &stale})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = svc.Patch(ctx, item.ID, Patch{Body: &body, Version: &item.Version})
	assert.NoError(t, err)
}

func TestClearScheduleOnScheduledItemFails(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)
	item, err = svc.ForceStatus(ctx, item.ID, models.StatusApproved, "imported", "")
	require.NoError(t, err)
	when := now.Add(24 * time.Hour)
	scheduled := models.StatusScheduled
	_, err = svc.Patch(ctx, item.ID, Patch{ScheduledFor: &when, Status: &scheduled})
	require.NoError(t, err)

	_, err = svc.Patch(ctx, item.ID, Patch{ClearSchedule: true})
	assert.True(t, errors.Is(err, apperr.ErrPreconditionFailed))
}

func TestForceStatusIsAudited(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	_, err = svc.ForceStatus(ctx, item.ID, models.StatusPublished, "", "robert")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	out, err := svc.ForceStatus(ctx, item.ID, models.StatusPublished, "posted manually", "robert")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, out.Status)
	require.Len(t, out.StatusOverrides, 1)
	assert.Equal(t, "robert", out.StatusOverrides[0].Actor)
}

func TestTransitionToSameStatusRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, item.ID, models.StatusDraft, "")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition), "%v", err)
	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Version, got.Version)

	for _, st := range []models.ContentStatus{models.StatusReadyForReview, models.StatusApproved, models.StatusPublished} {
		got, err = svc.Transition(ctx, item.ID, st, "")
		require.NoError(t, err)
	}
	_, err = svc.Transition(ctx, item.ID, models.StatusPublished, "")
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition), "%v", err)
	after, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Version, after.Version)
	assert.Equal(t, got.UpdatedAt, after.UpdatedAt)
}

func TestPatchWithoutChangesKeepsVersion(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	draft := models.StatusDraft
	title := "a"
	got, err := svc.Patch(ctx, item.ID, Patch{Title: &title, Status: &draft})
	require.NoError(t, err)
	assert.Equal(t, item.Version, got.Version)

	stored, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Version, stored.Version)
}

func TestSelfLinkRejected(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	links := []models.ContentLink{{ContentID: item.ID, LinkType: models.LinkLeadsTo}}
	_, err = svc.Patch(ctx, item.ID, Patch{LinkedContent: &links})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	item, err := svc.Create(ctx, NewContent{ProjectID: "p1", Title: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, item.ID), apperr.ErrNotFound))
	_, err = svc.Patch(ctx, item.ID, Patch{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestAttachmentValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	bad := []NewContent{
		{ProjectID: "p1", Title: "a", Media: []models.Media{{Type: "image", URL: "not a url"}}},
		{ProjectID: "p1", Title: "a", Link: &models.OutboundLink{URL: "ftp://x.example"}},
		{ProjectID: "p1", Title: "a", LinkedContent: []models.ContentLink{{ContentID: "x", LinkType: "blocks"}}},
		{ProjectID: "p1", Title: "a", LinkedContent: []models.ContentLink{{LinkType: models.LinkRelated}}},
	}
	for _, in := range bad {
		_, err := svc.Create(ctx, in)
		assert.True(t, errors.Is(err, apperr.ErrValidation), "%+v: %v", in, err)
	}

	item, err := svc.Create(ctx, NewContent{
		ProjectID: "p1",
		Title:     "a",
		Media:     []models.Media{{Type: "image", URL: "https://cdn.example.com/a.png"}},
		Link:      &models.OutboundLink{URL: "https://example.com/post"},
	})
	require.NoError(t, err)

	link := models.OutboundLink{URL: "nope"}
	_, err = svc.Patch(ctx, item.ID, Patch{Link: &link})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}
