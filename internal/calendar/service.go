// Package calendar answers date-range queries over content and applies
// drag-and-drop reschedules.
package calendar

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/metrics"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

type Collection = store.Collection[models.ContentItem, *models.ContentItem]

type Service struct {
	col      *Collection
	log      *slog.Logger
	met      *metrics.Recorder
	loc      *time.Location
	slotHour int
	now      func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option  { return func(s *Service) { s.now = now } }
func WithMetrics(m *metrics.Recorder) Option { return func(s *Service) { s.met = m } }
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }
func WithSlotHour(h int) Option              { return func(s *Service) { s.slotHour = h } }

func NewService(col *Collection, log *slog.Logger, opts ...Option) *Service {
	s := &Service{col: col, log: log, loc: time.UTC, slotHour: 10, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Slot returns day's calendar date at the configured slot hour.
func (s *Service) Slot(day time.Time) time.Time {
	y, m, d := day.In(s.loc).Date()
	return time.Date(y, m, d, s.slotHour, 0, 0, 0, s.loc)
}

func (s *Service) Location() *time.Location { return s.loc }

type Result struct {
	Events      []models.CalendarEvent `json:"events"`
	Unscheduled []models.ContentItem   `json:"unscheduled"`
}

// GetEvents returns every placed item whose date falls in [start, end]
// (both ends inclusive) plus the unscheduled, unpublished backlog. An empty
// projectIDs selects all projects.
func (s *Service) GetEvents(ctx context.Context, projectIDs []string, start, end time.Time) (Result, error) {
	if end.Before(start) {
		return Result{}, apperr.InvalidArgument("calendar range end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	items, err := s.col.Find(ctx, func(c models.ContentItem) bool {
		return len(projectIDs) == 0 || slices.Contains(projectIDs, c.ProjectID)
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{Events: []models.CalendarEvent{}, Unscheduled: []models.ContentItem{}}
	for _, c := range items {
		if c.Placed() {
			d := c.CalendarDate()
			if !d.Before(start) && !d.After(end) {
				res.Events = append(res.Events, models.EventOf(c))
			}
		}
		if c.ScheduledFor == nil && c.Status != models.StatusPublished {
			res.Unscheduled = append(res.Unscheduled, c)
		}
	}
	sort.SliceStable(res.Events, func(i, j int) bool {
		if !res.Events[i].Date.Equal(res.Events[j].Date) {
			return res.Events[i].Date.Before(res.Events[j].Date)
		}
		return res.Events[i].ID < res.Events[j].ID
	})
	sort.SliceStable(res.Unscheduled, func(i, j int) bool {
		return res.Unscheduled[i].CreatedAt.Before(res.Unscheduled[j].CreatedAt)
	})
	return res, nil
}

// Day returns the events of one calendar day in the service location.
func (s *Service) Day(ctx context.Context, projectIDs []string, day time.Time) ([]models.CalendarEvent, error) {
	y, m, d := day.In(s.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	res, err := s.GetEvents(ctx, projectIDs, start, start.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// RescheduleViaDrop moves an item to day at the slot hour and marks it
// scheduled. There is no cadence or conflict check, and a published item is
// moved back to scheduled.
func (s *Service) RescheduleViaDrop(ctx context.Context, contentID string, day time.Time) (models.ContentItem, error) {
	item, err := s.col.Get(ctx, contentID)
	if err != nil {
		return models.ContentItem{}, err
	}
	prev := item.Status
	at := s.Slot(day)
	item.ScheduledFor = &at
	item.Status = models.StatusScheduled
	item.UpdatedAt = s.now()

	saved, err := s.col.Update(ctx, item)
	if err != nil {
		return models.ContentItem{}, err
	}
	if prev == models.StatusPublished {
		s.log.Warn("published content moved back to scheduled by calendar drop",
			slog.String("content_id", contentID),
			slog.Time("scheduled_for", at))
	}
	s.met.Rescheduled()
	if prev != models.StatusScheduled {
		s.met.Transition(prev, models.StatusScheduled, true)
	}
	return saved, nil
}
