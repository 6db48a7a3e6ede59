// Package docstore is the document-store port the rest of the system
// reads and writes through: two collections of JSON documents with
// whole-document writes, field-path updates, and per-document
// subscriptions.
package docstore

import (
	"context"
	"errors"
)

// Collection names the two document collections.
type Collection string

const (
	Users    Collection = "users"
	Kingdoms Collection = "kingdoms"
)

// Store errors.
var (
	// ErrNotFound is returned when a document id has no snapshot.
	ErrNotFound = errors.New("document not found")
	// ErrGuardExists is returned by ApplyIfAbsent when the guard path
	// is already populated.
	ErrGuardExists = errors.New("guarded field already set")
)

// Field is one field-path update within a document. Paths are segment
// slices, not dotted strings, because map keys (habit names, dates)
// may themselves contain dots.
type Field struct {
	Path  []string
	Value any
	// Remove deletes the path instead of setting it; Value is ignored.
	Remove bool
}

// DocUpdate addresses one document and the fields to change in it.
type DocUpdate struct {
	Collection Collection
	ID         string
	Fields     []Field
}

// Guard addresses a field path that must be absent for a conditional
// write to proceed.
type Guard struct {
	Collection Collection
	ID         string
	Path       []string
}

// Snapshot is the current state of a document as raw JSON.
type Snapshot struct {
	ID   string
	Data []byte
}

// ChangeFunc receives the new snapshot after a document changes.
type ChangeFunc func(Snapshot)

// Store is the document-store surface. Apply commits every update in
// one atomic batch; last write wins at the field-path level for
// concurrent writers.
type Store interface {
	// Get returns the current snapshot, or ErrNotFound.
	Get(ctx context.Context, coll Collection, id string) (Snapshot, error)
	// Set creates or replaces a whole document.
	Set(ctx context.Context, coll Collection, id string, doc any) error
	// Apply commits field updates across one or more documents
	// atomically. Targets must already exist.
	Apply(ctx context.Context, updates ...DocUpdate) error
	// ApplyIfAbsent is Apply guarded by a path that must not yet be
	// set; returns ErrGuardExists otherwise.
	ApplyIfAbsent(ctx context.Context, guard Guard, updates ...DocUpdate) error
	// Subscribe registers a change callback for one document and
	// returns its cancel function. After cancel returns, the callback
	// is never invoked again.
	Subscribe(ctx context.Context, coll Collection, id string, fn ChangeFunc) (func(), error)
}
