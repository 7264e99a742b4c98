package models

import "time"

// Meta is embedded by every stored record. Version is bumped by the store on
// each successful write and doubles as the optimistic concurrency token.
type Meta struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Meta) RecordID() string       { return m.ID }
func (m *Meta) SetRecordID(id string)  { m.ID = id }
func (m *Meta) RecordVersion() int     { return m.Version }
func (m *Meta) SetRecordVersion(v int) { m.Version = v }
func (m *Meta) Metadata() *Meta        { return m }

func (m *Meta) Stamp(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

type Project struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

type Task struct {
	Meta
	ProjectID   string     `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

type Idea struct {
	Meta
	ProjectID string   `json:"projectId"`
	Title     string   `json:"title"`
	Notes     string   `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Status    string   `json:"status,omitempty"`
}

type Campaign struct {
	Meta
	ProjectID   string     `json:"projectId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	ContentIDs  []string   `json:"contentIds,omitempty"`
}

type ContentTemplate struct {
	Meta
	Name     string      `json:"name"`
	Platform string      `json:"platform,omitempty"`
	Type     ContentType `json:"type,omitempty"`
	Body     string      `json:"body"`
	Hashtags []string    `json:"hashtags,omitempty"`
}

type HashtagGroup struct {
	Meta
	Name     string   `json:"name"`
	Hashtags []string `json:"hashtags"`
}
