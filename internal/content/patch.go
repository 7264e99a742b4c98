package content

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/workflow"
)

// Patch is a partial update. Nil fields are left alone. Field edits are
// applied before the status change, so {scheduledFor, status: scheduled}
// schedules an approved item in one call.
type Patch struct {
	Title         *string               `json:"title"`
	Body          *string               `json:"body"`
	Type          *models.ContentType   `json:"type"`
	Platform      *string               `json:"platform"`
	FunnelStage   *models.FunnelStage   `json:"funnelStage"`
	Priority      *models.Priority      `json:"priority"`
	Media         *[]models.Media       `json:"media"`
	Link          *models.OutboundLink  `json:"link"`
	Hashtags      *[]string             `json:"hashtags"`
	LinkedContent *[]models.ContentLink `json:"linkedContent"`
	Assignee      *string               `json:"assignee"`
	ScheduledFor  *time.Time            `json:"scheduledFor"`
	ClearSchedule bool                  `json:"clearSchedule"`

	Status   *models.ContentStatus `json:"status"`
	Feedback string                `json:"feedback"`
	Force    bool                  `json:"force"`
	Reason   string                `json:"reason"`
	Actor    string                `json:"actor"`

	// Version, when set, must match the stored version.
	Version *int `json:"version"`

	// transition makes Status go through the table even when it equals
	// the current status.
	transition bool
}

func (s *Service) Patch(ctx context.Context, id string, p Patch) (models.ContentItem, error) {
	cur, err := s.col.Get(ctx, id)
	if err != nil {
		return models.ContentItem{}, err
	}
	if p.Version != nil && *p.Version != cur.Version {
		return models.ContentItem{}, apperr.Conflict("content %q is at version %d, patch was based on %d", id, cur.Version, *p.Version)
	}
	now := s.now()

	next, err := applyFields(cur, p)
	if err != nil {
		return models.ContentItem{}, err
	}
	statusChange := p.Status != nil && (*p.Status != cur.Status || p.Force || p.transition)
	if !statusChange && reflect.DeepEqual(next, cur) {
		return cur, nil
	}
	next.UpdatedAt = now

	if statusChange {
		if p.Force {
			next, err = workflow.ForceStatus(next, *p.Status, p.Reason, p.Actor, now)
		} else {
			next, err = workflow.ApplyTransition(next, *p.Status, workflow.Context{Now: now, Feedback: p.Feedback})
		}
		if err != nil {
			return models.ContentItem{}, err
		}
		if p.Force {
			s.log.Warn("content status forced",
				slog.String("content_id", id),
				slog.String("from", string(cur.Status)),
				slog.String("to", string(next.Status)),
				slog.String("reason", strings.TrimSpace(p.Reason)),
				slog.String("actor", p.Actor))
		}
		s.met.Transition(cur.Status, next.Status, p.Force)
	}

	if next.Status == models.StatusScheduled && next.ScheduledFor == nil {
		return models.ContentItem{}, apperr.PreconditionFailed("scheduled content %q needs a scheduledFor date", id)
	}

	saved, err := s.col.Update(ctx, next)
	if err != nil {
		return models.ContentItem{}, err
	}
	if p.Status != nil && cur.Status != saved.Status && !p.Force {
		s.log.Info("content status changed",
			slog.String("content_id", id),
			slog.String("from", string(cur.Status)),
			slog.String("to", string(saved.Status)))
	}
	return saved, nil
}

func applyFields(item models.ContentItem, p Patch) (models.ContentItem, error) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return item, apperr.Validation("title must not be empty")
		}
		item.Title = t
	}
	if p.Body != nil {
		item.Body = *p.Body
	}
	if p.Type != nil {
		item.Type = *p.Type
	}
	if p.Platform != nil {
		item.Platform = strings.ToLower(strings.TrimSpace(*p.Platform))
	}
	if p.FunnelStage != nil {
		item.FunnelStage = *p.FunnelStage
	}
	if p.Priority != nil {
		item.Priority = *p.Priority
	}
	if p.Media != nil {
		item.Media = *p.Media
	}
	if p.Link != nil {
		item.Link = p.Link
	}
	if p.Hashtags != nil {
		item.Hashtags = *p.Hashtags
	}
	if p.LinkedContent != nil {
		for _, l := range *p.LinkedContent {
			if l.ContentID == item.ID {
				return item, apperr.Validation("content %q cannot link to itself", item.ID)
			}
		}
		item.LinkedContent = *p.LinkedContent
	}
	if p.Assignee != nil {
		item.Assignee = *p.Assignee
	}
	if p.ClearSchedule {
		item.ScheduledFor = nil
	}
	if p.ScheduledFor != nil {
		at := *p.ScheduledFor
		item.ScheduledFor = &at
	}
	if err := validateFields(item.Type, item.Priority, item.FunnelStage); err != nil {
		return item, err
	}
	if err := checkAttachments(item); err != nil {
		return item, err
	}
	return item, nil
}
