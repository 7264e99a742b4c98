package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
)

// Record is implemented (on the pointer) by every stored type through
// models.Meta.
type Record interface {
	RecordID() string
	SetRecordID(string)
	RecordVersion() int
	SetRecordVersion(int)
}

// Collection is a typed view over one backend document. Every call reads
// the full document and, for writes, stores the full document back.
type Collection[T any, P interface {
	*T
	Record
}] struct {
	b    Backend
	name string
}

func NewCollection[T any, P interface {
	*T
	Record
}](b Backend, name string) *Collection[T, P] {
	return &Collection[T, P]{b: b, name: name}
}

func (c *Collection[T, P]) Name() string { return c.name }

func (c *Collection[T, P]) decode(doc []byte) ([]T, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	var recs []T
	if err := json.Unmarshal(doc, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return recs, nil
}

func (c *Collection[T, P]) encode(recs []T) ([]byte, error) {
	if recs == nil {
		recs = []T{}
	}
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return b, nil
}

func (c *Collection[T, P]) List(ctx context.Context) ([]T, error) {
	doc, err := c.b.Load(ctx, c.name)
	if err != nil {
		return nil, err
	}
	return c.decode(doc)
}

func (c *Collection[T, P]) Find(ctx context.Context, match func(T) bool) ([]T, error) {
	recs, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *Collection[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	recs, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, r := range recs {
		if P(&r).RecordID() == id {
			return r, nil
		}
	}
	return zero, apperr.NotFound("%s %q not found", c.name, id)
}

// Insert adds rec with version 1, assigning a uuid when the id is empty.
func (c *Collection[T, P]) Insert(ctx context.Context, rec T) (T, error) {
	p := P(&rec)
	if p.RecordID() == "" {
		p.SetRecordID(uuid.NewString())
	}
	p.SetRecordVersion(1)
	err := c.mutate(ctx, func(recs []T) ([]T, error) {
		for _, r := range recs {
			if P(&r).RecordID() == p.RecordID() {
				return nil, apperr.Conflict("%s %q already exists", c.name, p.RecordID())
			}
		}
		return append(recs, rec), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update replaces the stored record with the same id. The stored version
// must equal rec's version; the saved copy carries the next version.
func (c *Collection[T, P]) Update(ctx context.Context, rec T) (T, error) {
	id, base := P(&rec).RecordID(), P(&rec).RecordVersion()
	next := rec
	P(&next).SetRecordVersion(base + 1)
	err := c.mutate(ctx, func(recs []T) ([]T, error) {
		for i := range recs {
			cur := P(&recs[i])
			if cur.RecordID() != id {
				continue
			}
			if cur.RecordVersion() != base {
				return nil, apperr.Conflict("%s %q is at version %d, write was based on %d",
					c.name, id, cur.RecordVersion(), base)
			}
			recs[i] = next
			return recs, nil
		}
		return nil, apperr.NotFound("%s %q not found", c.name, id)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return next, nil
}

func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(recs []T) ([]T, error) {
		for i := range recs {
			if P(&recs[i]).RecordID() == id {
				return append(recs[:i], recs[i+1:]...), nil
			}
		}
		return nil, apperr.NotFound("%s %q not found", c.name, id)
	})
}

func (c *Collection[T, P]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return c.b.Update(ctx, c.name, func(doc []byte) ([]byte, error) {
		recs, err := c.decode(doc)
		if err != nil {
			return nil, err
		}
		recs, err = fn(recs)
		if err != nil {
			return nil, err
		}
		return c.encode(recs)
	})
}
