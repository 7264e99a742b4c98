// Package content is the create/list/patch/delete service for content items.
// Status changes go through the workflow package.
package content

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/metrics"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/store"
)

type Collection = store.Collection[models.ContentItem, *models.ContentItem]

type Service struct {
	col *Collection
	log *slog.Logger
	met *metrics.Recorder
	now func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option  { return func(s *Service) { s.now = now } }
func WithMetrics(m *metrics.Recorder) Option { return func(s *Service) { s.met = m } }

func NewService(col *Collection, log *slog.Logger, opts ...Option) *Service {
	s := &Service{col: col, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

type NewContent struct {
	ProjectID     string               `json:"projectId"`
	Type          models.ContentType   `json:"type"`
	Platform      string               `json:"platform"`
	FunnelStage   models.FunnelStage   `json:"funnelStage"`
	Title         string               `json:"title"`
	Body          string               `json:"body"`
	Media         []models.Media       `json:"media"`
	Link          *models.OutboundLink `json:"link"`
	Hashtags      []string             `json:"hashtags"`
	Priority      models.Priority      `json:"priority"`
	LinkedContent []models.ContentLink `json:"linkedContent"`
	CreatedBy     string               `json:"createdBy"`
	Assignee      string               `json:"assignee"`
}

// Create stores a new item in draft.
func (s *Service) Create(ctx context.Context, in NewContent) (models.ContentItem, error) {
	if strings.TrimSpace(in.Title) == "" {
		return models.ContentItem{}, apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return models.ContentItem{}, apperr.Validation("projectId is required")
	}
	if in.Type == "" {
		in.Type = models.TypePost
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if err := validateFields(in.Type, in.Priority, in.FunnelStage); err != nil {
		return models.ContentItem{}, err
	}

	item := models.ContentItem{
		ProjectID:     in.ProjectID,
		Type:          in.Type,
		Platform:      strings.ToLower(strings.TrimSpace(in.Platform)),
		FunnelStage:   in.FunnelStage,
		Title:         strings.TrimSpace(in.Title),
		Body:          in.Body,
		Media:         in.Media,
		Link:          in.Link,
		Hashtags:      in.Hashtags,
		Status:        models.StatusDraft,
		Priority:      in.Priority,
		LinkedContent: in.LinkedContent,
		CreatedBy:     in.CreatedBy,
		Assignee:      in.Assignee,
	}
	if err := checkAttachments(item); err != nil {
		return models.ContentItem{}, err
	}
	item.Stamp(s.now())
	return s.col.Insert(ctx, item)
}

// Filter narrows List. Empty fields match everything; Statuses and
// Platforms match any of their values.
type Filter struct {
	ProjectID string
	Statuses  []models.ContentStatus
	Platforms []string
}

func (f Filter) match(c models.ContentItem) bool {
	if f.ProjectID != "" && c.ProjectID != f.ProjectID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, c.Status) {
		return false
	}
	if len(f.Platforms) > 0 && !slices.Contains(f.Platforms, strings.ToLower(c.Platform)) {
		return false
	}
	return true
}

// List returns matching items, newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.ContentItem, error) {
	items, err := s.col.Find(ctx, f.match)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.ContentItem, error) {
	return s.col.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.col.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("content deleted", slog.String("content_id", id))
	return nil
}

// Transition moves one item through the state machine and persists it.
// A target equal to the current status is not an edge and is rejected.
func (s *Service) Transition(ctx context.Context, id string, target models.ContentStatus, feedback string) (models.ContentItem, error) {
	return s.Patch(ctx, id, Patch{Status: &target, Feedback: feedback, transition: true})
}

// ForceStatus applies the audited override and persists it.
func (s *Service) ForceStatus(ctx context.Context, id string, status models.ContentStatus, reason, actor string) (models.ContentItem, error) {
	return s.Patch(ctx, id, Patch{Status: &status, Force: true, Reason: reason, Actor: actor})
}

func validateFields(t models.ContentType, p models.Priority, f models.FunnelStage) error {
	if !t.Valid() {
		return apperr.Validation("unknown content type %q", t)
	}
	if !p.Valid() {
		return apperr.Validation("unknown priority %q", p)
	}
	if !f.Valid() {
		return apperr.Validation("unknown funnel stage %q", f)
	}
	return nil
}
