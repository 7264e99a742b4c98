// Package scheduler spreads approved, unscheduled content over the calendar
// at a fixed cadence.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/metrics"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

type Scheduler struct {
	col       *store.Collection[models.ContentItem, *models.ContentItem]
	cal       *calendar.Service
	log       *slog.Logger
	met       *metrics.Recorder
	maxPerDay int
	now       func() time.Time
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option  { return func(s *Scheduler) { s.now = now } }
func WithMetrics(m *metrics.Recorder) Option { return func(s *Scheduler) { s.met = m } }

// WithMaxPerDay skips days that already hold n scheduled items of the
// project. Zero means no limit.
func WithMaxPerDay(n int) Option { return func(s *Scheduler) { s.maxPerDay = n } }

func New(col *store.Collection[models.ContentItem, *models.ContentItem], cal *calendar.Service, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{col: col, cal: cal, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Request struct {
	ProjectID         string `json:"projectId"`
	CadenceDays       int    `json:"cadenceDays"`
	ConfirmUnapproved bool   `json:"confirmUnapproved"`
}

// AutoDistribute assigns a slot to every approved item of the project that
// has no scheduledFor yet, starting tomorrow at the slot hour and moving
// CadenceDays forward per item. Items are saved one at a time; on a write
// error the assignments made so far are returned with the error.
func (s *Scheduler) AutoDistribute(ctx context.Context, req Request) ([]models.Assignment, error) {
	if req.CadenceDays <= 0 {
		return nil, apperr.InvalidArgument("cadenceDays must be positive, got %d", req.CadenceDays)
	}
	if req.ProjectID == "" {
		return nil, apperr.InvalidArgument("projectId is required")
	}

	items, err := s.col.Find(ctx, func(c models.ContentItem) bool { return c.ProjectID == req.ProjectID })
	if err != nil {
		return nil, err
	}

	var eligible []models.ContentItem
	ineligible := 0
	perDay := map[string]int{}
	for _, c := range items {
		if c.ScheduledFor != nil {
			if c.Status == models.StatusScheduled {
				perDay[s.dayKey(*c.ScheduledFor)]++
			}
			continue
		}
		switch c.Status {
		case models.StatusPublished:
		case models.StatusApproved:
			eligible = append(eligible, c)
		default:
			ineligible++
		}
	}
	if ineligible > 0 && !req.ConfirmUnapproved {
		return nil, &apperr.UnapprovedWarning{Count: ineligible}
	}

	SortForDistribution(eligible)

	now := s.now()
	cursor := s.cal.Slot(now).AddDate(0, 0, 1)
	out := []models.Assignment{}
	for _, c := range eligible {
		for s.maxPerDay > 0 && perDay[s.dayKey(cursor)] >= s.maxPerDay {
			cursor = cursor.AddDate(0, 0, 1)
		}
		slot := cursor
		prev := c.Status
		c.ScheduledFor = &slot
		c.Status = models.StatusScheduled
		c.UpdatedAt = now
		if _, err := s.col.Update(ctx, c); err != nil {
			s.met.Assigned(len(out))
			return out, fmt.Errorf("schedule content %q: %w", c.ID, err)
		}
		s.met.Transition(prev, models.StatusScheduled, false)
		perDay[s.dayKey(slot)]++
		out = append(out, models.Assignment{ContentID: c.ID, ScheduledFor: slot})
		cursor = cursor.AddDate(0, 0, req.CadenceDays)
	}

	s.met.Assigned(len(out))
	s.log.Info("auto-distribute complete",
		slog.String("project_id", req.ProjectID),
		slog.Int("cadence_days", req.CadenceDays),
		slog.Int("assigned", len(out)),
		slog.Int("skipped_unapproved", ineligible))
	return out, nil
}

func (s *Scheduler) dayKey(t time.Time) string {
	return t.In(s.cal.Location()).Format("2006-01-02")
}

// SortForDistribution orders items by priority (urgent first), then oldest
// createdAt, then id.
func SortForDistribution(items []models.ContentItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
