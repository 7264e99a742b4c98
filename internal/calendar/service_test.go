package calendar

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

var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, items ...models.ContentItem) (*Service, *Collection) {
	t.Helper()
	col := store.NewCollection[models.ContentItem](store.NewMemoryStore(), store.Content)
	for _, it := range items {
		_, err := col.Insert(context.Background(), it)
		require.NoError(t, err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(col, log, WithClock(func() time.Time { return now })), col
}

func at(t time.Time) *time.Time { return &t }

func content(id, project string, status models.ContentStatus, scheduled *time.Time) models.ContentItem {
	return models.ContentItem{
		Meta:         models.Meta{ID: id, CreatedAt: now},
		ProjectID:    project,
		Status:       status,
		ScheduledFor: scheduled,
		Title:        id,
	}
}

func TestGetEventsInclusiveEnd(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 7, 10, 0, 0, 0, time.UTC)
	svc, _ := setup(t,
		content("on-end", "p1", models.StatusScheduled, at(end)),
		content("past-end", "p1", models.StatusScheduled, at(end.Add(time.Nanosecond))),
		content("on-start", "p1", models.StatusScheduled, at(start)),
	)

	res, err := svc.GetEvents(context.Background(), nil, start, end)
	require.NoError(t, err)

	var ids []string
	for _, e := range res.Events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"on-start", "on-end"}, ids)
}

func TestGetEventsPublishedAndUnscheduled(t *testing.T) {
	pub := content("pub", "p1", models.StatusPublished, nil)
	pub.PublishedAt = at(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	svc, _ := setup(t,
		pub,
		content("draft", "p1", models.StatusDraft, nil),
		content("approved", "p2", models.StatusApproved, nil),
		content("other", "p3", models.StatusDraft, nil),
	)

	res, err := svc.GetEvents(context.Background(), []string{"p1", "p2"},
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, res.Events, 1)
	assert.Equal(t, "pub", res.Events[0].ID)
	assert.Equal(t, *pub.PublishedAt, res.Events[0].Date)

	var backlog []string
	for _, c := range res.Unscheduled {
		backlog = append(backlog, c.ID)
	}
	assert.ElementsMatch(t, []string{"draft", "approved"}, backlog)
}

func TestGetEventsRejectsInvertedRange(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.GetEvents(context.Background(), nil, now, now.Add(-time.Second))
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestRescheduleViaDrop(t *testing.T) {
	svc, col := setup(t, content("c1", "p1", models.StatusApproved, nil))

	out, err := svc.RescheduleViaDrop(context.Background(), "c1", time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, out.Status)
	assert.Equal(t, time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC), *out.ScheduledFor)
	assert.Equal(t, now, out.UpdatedAt)

	stored, err := col.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, stored.Status)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, out.ScheduledFor.Equal(*stored.ScheduledFor))
}

func TestRescheduleViaDropPublishedItem(t *testing.T) {
	pub := content("c1", "p1", models.StatusPublished, nil)
	pub.PublishedAt = at(now.Add(-time.Hour))
	svc, _ := setup(t, pub)

	out, err := svc.RescheduleViaDrop(context.Background(), "c1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, out.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), *out.ScheduledFor)
}

func TestRescheduleViaDropUnknownID(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.RescheduleViaDrop(context.Background(), "missing", now)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDropAllowsSameDay(t *testing.T) {
	svc, _ := setup(t,
		content("a", "p1", models.StatusDraft, nil),
		content("b", "p1", models.StatusDraft, nil),
	)
	day := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "b"} {
		_, err := svc.RescheduleViaDrop(context.Background(), id, day)
		require.NoError(t, err)
	}
	events, err := svc.Day(context.Background(), nil, day)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSlotUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	col := store.NewCollection[models.ContentItem](store.NewMemoryStore(), store.Content)
	svc := NewService(col, slog.New(slog.NewTextHandler(io.Discard, nil)), WithLocation(ny), WithSlotHour(9))

	got := svc.Slot(time.Date(2024, 5, 2, 0, 0, 0, 0, ny))
	assert.Equal(t, time.Date(2024, 5, 2, 9, 0, 0, 0, ny), got)
}
