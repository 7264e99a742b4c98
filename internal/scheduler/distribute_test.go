package scheduler

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
	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

var today = time.Date(2024, 1, 1, 15, 45, 0, 0, time.UTC)

type fixture struct {
	sched *Scheduler
	col   *store.Collection[models.ContentItem, *models.ContentItem]
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	col := store.NewCollection[models.ContentItem](store.NewMemoryStore(), store.Content)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return today }
	cal := calendar.NewService(col, log, calendar.WithClock(clock))
	opts = append([]Option{WithClock(clock)}, opts...)
	return fixture{sched: New(col, cal, log, opts...), col: col}
}

func (f fixture) add(t *testing.T, id string, status models.ContentStatus, prio models.Priority, created time.Time) {
	t.Helper()
	_, err := f.col.Insert(context.Background(), models.ContentItem{
		Meta:      models.Meta{ID: id, CreatedAt: created},
		ProjectID: "p1",
		Status:    status,
		Priority:  prio,
	})
	require.NoError(t, err)
}

func day(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

func TestAutoDistributeCadence(t *testing.T) {
	f := newFixture(t)
	base := today.Add(-30 * 24 * time.Hour)
	f.add(t, "old-medium", models.StatusApproved, models.PriorityMedium, base)
	f.add(t, "new-medium", models.StatusApproved, models.PriorityMedium, base.Add(time.Hour))
	f.add(t, "urgent", models.StatusApproved, models.PriorityUrgent, base.Add(2*time.Hour))

	got, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 2})
	require.NoError(t, err)

	assert.Equal(t, []models.Assignment{
		{ContentID: "urgent", ScheduledFor: day(2)},
		{ContentID: "old-medium", ScheduledFor: day(4)},
		{ContentID: "new-medium", ScheduledFor: day(6)},
	}, got)

	stored, err := f.col.Get(context.Background(), "old-medium")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, stored.Status)
	assert.True(t, day(4).Equal(*stored.ScheduledFor))
	assert.True(t, today.Equal(stored.UpdatedAt))
}

func TestAutoDistributeGuard(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a1", models.StatusApproved, models.PriorityHigh, today)
	f.add(t, "a2", models.StatusApproved, models.PriorityLow, today)
	f.add(t, "d1", models.StatusDraft, models.PriorityUrgent, today)

	_, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 1})
	var warn *apperr.UnapprovedWarning
	require.True(t, errors.As(err, &warn))
	assert.Equal(t, 1, warn.Count)

	items, err := f.col.List(context.Background())
	require.NoError(t, err)
	for _, c := range items {
		assert.Nil(t, c.ScheduledFor, c.ID)
		assert.Equal(t, 1, c.Version, c.ID)
	}

	got, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 1, ConfirmUnapproved: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ContentID)
	assert.Equal(t, "a2", got[1].ContentID)

	draft, err := f.col.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Nil(t, draft.ScheduledFor)
	assert.Equal(t, models.StatusDraft, draft.Status)
}

func TestAutoDistributeRerunOnlyTouchesRemainder(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a", models.StatusApproved, models.PriorityMedium, today)
	_, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 3})
	require.NoError(t, err)

	f.add(t, "b", models.StatusApproved, models.PriorityMedium, today)
	got, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ContentID)

	a, err := f.col.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Version, "already scheduled item must not be rewritten")

	again, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 3})
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAutoDistributeInvalidCadence(t *testing.T) {
	f := newFixture(t)
	for _, c := range []int{0, -2} {
		_, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: c})
		assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	}
}

func TestAutoDistributeSkipsPublishedAndOtherProjects(t *testing.T) {
	f := newFixture(t)
	f.add(t, "pub", models.StatusPublished, models.PriorityUrgent, today)
	_, err := f.col.Insert(context.Background(), models.ContentItem{
		Meta: models.Meta{ID: "elsewhere"}, ProjectID: "p2", Status: models.StatusDraft,
	})
	require.NoError(t, err)

	got, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAutoDistributeMaxPerDay(t *testing.T) {
	f := newFixture(t, WithMaxPerDay(1))
	_, err := f.col.Insert(context.Background(), models.ContentItem{
		Meta: models.Meta{ID: "busy"}, ProjectID: "p1", Status: models.StatusScheduled,
		ScheduledFor: ptr(day(2)),
	})
	require.NoError(t, err)
	f.add(t, "a", models.StatusApproved, models.PriorityHigh, today)
	f.add(t, "b", models.StatusApproved, models.PriorityLow, today)

	got, err := f.sched.AutoDistribute(context.Background(), Request{ProjectID: "p1", CadenceDays: 1})
	require.NoError(t, err)
	assert.Equal(t, []models.Assignment{
		{ContentID: "a", ScheduledFor: day(3)},
		{ContentID: "b", ScheduledFor: day(4)},
	}, got)
}

func TestSortForDistribution(t *testing.T) {
	items := []models.ContentItem{
		{Meta: models.Meta{ID: "low"}, Priority: models.PriorityLow},
		{Meta: models.Meta{ID: "high"}, Priority: models.PriorityHigh},
		{Meta: models.Meta{ID: "unset"}},
		{Meta: models.Meta{ID: "urgent"}, Priority: models.PriorityUrgent},
	}
	SortForDistribution(items)

	var ids []string
	for _, c := range items {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"urgent", "high", "unset", "low"}, ids)
}

func ptr(t time.Time) *time.Time { return &t }
