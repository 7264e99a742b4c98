// Package store persists homogeneous record collections as opaque JSON
// documents. Backends only move bytes; Collection adds typing, ids and
// version checks on top.
package store

import "context"

// Backend is a document key-value store keyed by collection name
// ("content", "campaigns", "ideas", ...).
type Backend interface {
	// Load returns the stored document, or nil when the collection is empty.
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, doc []byte) error
	// Update runs fn on the current document and stores its result as one
	// read-modify-write step. An error from fn aborts without writing.
	Update(ctx context.Context, collection string, fn func(doc []byte) ([]byte, error)) error
}

// Collection names used by the dashboard.
const (
	Content       = "content"
	Projects      = "projects"
	Tasks         = "tasks"
	Ideas         = "ideas"
	Campaigns     = "campaigns"
	Templates     = "templates"
	HashtagGroups = "hashtag_groups"
)
