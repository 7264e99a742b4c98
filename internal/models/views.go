package models

import "time"

// CalendarEvent is a read projection of a ContentItem, never persisted.
type CalendarEvent struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"projectId"`
	Title       string        `json:"title"`
	Date        time.Time     `json:"date"`
	Status      ContentStatus `json:"status"`
	Type        ContentType   `json:"type"`
	Platform    string        `json:"platform"`
	FunnelStage FunnelStage   `json:"funnelStage,omitempty"`
	Priority    Priority      `json:"priority"`
	Assignee    string        `json:"assignee,omitempty"`
}

func EventOf(c ContentItem) CalendarEvent {
	return CalendarEvent{
		ID:          c.ID,
		ProjectID:   c.ProjectID,
		Title:       c.Title,
		Date:        c.CalendarDate(),
		Status:      c.Status,
		Type:        c.Type,
		Platform:    c.Platform,
		FunnelStage: c.FunnelStage,
		Priority:    c.Priority,
		Assignee:    c.Assignee,
	}
}

// FunnelChain is one reconstructed TOFU -> MOFU -> BOFU path.
type FunnelChain struct {
	TOFU []ContentItem `json:"tofu"`
	MOFU []ContentItem `json:"mofu"`
	BOFU []ContentItem `json:"bofu"`
}

type Assignment struct {
	ContentID    string    `json:"contentId"`
	ScheduledFor time.Time `json:"scheduledFor"`
}
