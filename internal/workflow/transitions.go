// Package workflow validates and applies content status changes.
package workflow

import (
	"strings"
	"time"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
)

// allowed lists every legal source -> target edge. published is terminal.
var allowed = map[models.ContentStatus][]models.ContentStatus{
	models.StatusDraft:            {models.StatusReadyForReview},
	models.StatusReadyForReview:   {models.StatusApproved, models.StatusChangesRequested},
	models.StatusChangesRequested: {models.StatusReadyForReview},
	models.StatusApproved:         {models.StatusScheduled, models.StatusPublished},
	models.StatusScheduled:        {models.StatusPublished},
}

// Context carries the inputs a transition may need beyond the item itself.
type Context struct {
	Now      time.Time
	Feedback string
}

// CanTransition reports whether from -> to is an edge of the table. A status
// never transitions to itself.
func CanTransition(from, to models.ContentStatus) bool {
	for _, t := range allowed[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Targets returns the statuses reachable from s in one step.
func Targets(s models.ContentStatus) []models.ContentStatus {
	return append(make([]models.ContentStatus, 0, len(allowed[s])), allowed[s]...)
}

// ApplyTransition returns a copy of item moved to target. The input is
// never modified, so a rejected transition leaves the caller's item intact.
func ApplyTransition(item models.ContentItem, target models.ContentStatus, tc Context) (models.ContentItem, error) {
	if !CanTransition(item.Status, target) {
		return item, apperr.InvalidTransition("cannot move content %q from %s to %s", item.ID, item.Status, target)
	}
	now := tc.Now
	if now.IsZero() {
		now = time.Now()
	}

	next := item
	switch target {
	case models.StatusChangesRequested:
		fb := strings.TrimSpace(tc.Feedback)
		if fb == "" {
			return item, apperr.Validation("feedback is required to request changes")
		}
		next.ReviewFeedback = fb
	case models.StatusScheduled:
		if item.ScheduledFor == nil {
			return item, apperr.PreconditionFailed("content %q has no scheduledFor date", item.ID)
		}
		if !item.ScheduledFor.After(now) {
			return item, apperr.PreconditionFailed("content %q is scheduled in the past (%s)", item.ID, item.ScheduledFor.Format(time.RFC3339))
		}
	case models.StatusPublished:
		at := now
		next.PublishedAt = &at
	}
	next.Status = target
	next.UpdatedAt = now
	return next, nil
}

// ForceStatus sets any known status, bypassing the transition table. It is
// the override for stuck items: a reason is mandatory and the change is
// appended to the item's override trail.
func ForceStatus(item models.ContentItem, status models.ContentStatus, reason, actor string, now time.Time) (models.ContentItem, error) {
	if !status.Valid() {
		return item, apperr.InvalidArgument("unknown status %q", status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return item, apperr.Validation("a reason is required to force a status")
	}
	if now.IsZero() {
		now = time.Now()
	}

	next := item
	next.StatusOverrides = append(append([]models.StatusOverride(nil), item.StatusOverrides...), models.StatusOverride{
		From:   item.Status,
		To:     status,
		Reason: reason,
		Actor:  actor,
		At:     now,
	})
	if status == models.StatusPublished && next.PublishedAt == nil {
		at := now
		next.PublishedAt = &at
	}
	next.Status = status
	next.UpdatedAt = now
	return next, nil
}
