package models

import (
	"slices"
	"time"
)

type ContentStatus string

const (
	StatusDraft            ContentStatus = "draft"
	StatusReadyForReview   ContentStatus = "ready_for_review"
	StatusChangesRequested ContentStatus = "changes_requested"
	StatusApproved         ContentStatus = "approved"
	StatusScheduled        ContentStatus = "scheduled"
	StatusPublished        ContentStatus = "published"
)

var ContentStatuses = []ContentStatus{
	StatusDraft, StatusReadyForReview, StatusChangesRequested,
	StatusApproved, StatusScheduled, StatusPublished,
}

func (s ContentStatus) Valid() bool { return slices.Contains(ContentStatuses, s) }

type ContentType string

const (
	TypePost    ContentType = "post"
	TypeArticle ContentType = "article"
	TypeTweet   ContentType = "tweet"
	TypeThread  ContentType = "thread"
)

func (t ContentType) Valid() bool {
	switch t {
	case TypePost, TypeArticle, TypeTweet, TypeThread:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities, urgent highest. Unknown values rank with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityLow:
		return 0
	}
	return 1
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type FunnelStage string

const (
	StageTOFU FunnelStage = "TOFU"
	StageMOFU FunnelStage = "MOFU"
	StageBOFU FunnelStage = "BOFU"
)

func (f FunnelStage) Valid() bool {
	switch f {
	case "", StageTOFU, StageMOFU, StageBOFU:
		return true
	}
	return false
}

type LinkType string

const (
	LinkLeadsTo LinkType = "leads_to"
	LinkRelated LinkType = "related"
)

type ContentLink struct {
	ContentID string   `json:"contentId" validate:"required"`
	LinkType  LinkType `json:"linkType" validate:"oneof=leads_to related"`
}

type Media struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	URL      string `json:"url" validate:"required,url"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type OutboundLink struct {
	URL  string `json:"url" validate:"required,http_url"`
	Text string `json:"text,omitempty"`
}

// StatusOverride records a status set outside the transition table.
type StatusOverride struct {
	From   ContentStatus `json:"from"`
	To     ContentStatus `json:"to"`
	Reason string        `json:"reason"`
	Actor  string        `json:"actor,omitempty"`
	At     time.Time     `json:"at"`
}

type ContentItem struct {
	Meta
	ProjectID       string           `json:"projectId"`
	Type            ContentType      `json:"type"`
	Platform        string           `json:"platform"`
	FunnelStage     FunnelStage      `json:"funnelStage,omitempty"`
	Title           string           `json:"title"`
	Body            string           `json:"body"`
	Media           []Media          `json:"media,omitempty"`
	Link            *OutboundLink    `json:"link,omitempty"`
	Hashtags        []string         `json:"hashtags,omitempty"`
	Status          ContentStatus    `json:"status"`
	Priority        Priority         `json:"priority"`
	ScheduledFor    *time.Time       `json:"scheduledFor,omitempty"`
	PublishedAt     *time.Time       `json:"publishedAt,omitempty"`
	LinkedContent   []ContentLink    `json:"linkedContent,omitempty"`
	CreatedBy       string           `json:"createdBy,omitempty"`
	Assignee        string           `json:"assignee,omitempty"`
	ReviewFeedback  string           `json:"reviewFeedback,omitempty"`
	StatusOverrides []StatusOverride `json:"statusOverrides,omitempty"`
}

// LeadsTo reports whether the item has a leads_to edge into id.
func (c ContentItem) LeadsTo(id string) bool {
	for _, l := range c.LinkedContent {
		if l.ContentID == id && l.LinkType == LinkLeadsTo {
			return true
		}
	}
	return false
}

// CalendarDate is the date the item is drawn on: scheduledFor, else
// publishedAt, else createdAt.
func (c ContentItem) CalendarDate() time.Time {
	if c.ScheduledFor != nil {
		return *c.ScheduledFor
	}
	if c.PublishedAt != nil {
		return *c.PublishedAt
	}
	return c.CreatedAt
}

// Placed reports whether the item has a scheduled or published date.
func (c ContentItem) Placed() bool { return c.ScheduledFor != nil || c.PublishedAt != nil }
