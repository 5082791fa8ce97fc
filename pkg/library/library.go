// Package library stores named concept map documents.
//
// A library is a flat collection of [Entry] values, each holding one
// document in its JSON wire form. The CLI pushes and pulls files through it
// and the HTTP service serves it.
//
// Four backends implement [Store]:
//   - [FileStore]: one JSON file per entry in a directory (the default)
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: a hash per entry plus an index set, for shared deployments
//   - [MongoStore]: one document per entry in a MongoDB collection
//
// [Open] picks the backend named in the configuration:
//
//	store, err := library.Open(ctx, cfg.Library, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	entry, err := library.NewEntry("photosynthesis", data)
//	if err != nil {
//	    return err
//	}
//	err = store.Put(ctx, entry)
//
// All stores are safe for concurrent use.
package library

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("not found")

// Entry is a stored document.
type Entry struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Data      json.RawMessage `json:"data" bson:"data"`
	Nodes     int             `json:"nodes" bson:"nodes"`
	Arrows    int             `json:"arrows" bson:"arrows"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// Summary describes an entry without its document.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Arrows    int       `json:"arrows" bson:"arrows"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Summary returns the summary of e.
func (e *Entry) Summary() Summary {
	return Summary{ID: e.ID, Name: e.Name, Nodes: e.Nodes, Arrows: e.Arrows, UpdatedAt: e.UpdatedAt}
}

// Store persists entries.
type Store interface {
	// Put inserts or replaces the entry with e.ID. It sets UpdatedAt, and
	// CreatedAt when zero.
	Put(ctx context.Context, e *Entry) error
	// Get returns the entry with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)
	// List returns all entries, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes the entry with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases the backend's resources.
	Close() error
}

// NewEntry returns an entry with a fresh random ID.
func NewEntry(name string, data []byte) (*Entry, error) {
	e := &Entry{ID: uuid.NewString(), Name: name, Data: data}
	if err := e.prepare(time.Now()); err != nil {
		return nil, err
	}
	return e, nil
}

// prepare validates e, counts its nodes and arrows, and stamps the times.
func (e *Entry) prepare(now time.Time) error {
	if e.ID == "" {
		return fmt.Errorf("entry id is empty")
	}
	var shape struct {
		Nodes  []json.RawMessage `json:"nodes"`
		Arrows []json.RawMessage `json:"arrows"`
	}
	if err := json.Unmarshal(e.Data, &shape); err != nil {
		return fmt.Errorf("entry %s: %w", e.ID, err)
	}
	e.Nodes, e.Arrows = len(shape.Nodes), len(shape.Arrows)

	now = now.UTC().Truncate(time.Millisecond)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	return nil
}

// sortSummaries orders by UpdatedAt descending, then by ID.
func sortSummaries(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
