// Package catalog is the durable metadata store: an ordered collection of
// article records backed by a single JSON file. Every mutation rewrites the
// whole file through a staging copy and an atomic rename, so a crash at any
// point leaves the previous, fully valid copy on disk. Mutations are
// serialized by a mutex; reads return copies of committed state.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gaurav-prasanna/webshelf/core"
)

// Catalog holds all article records, loaded at startup and flushed
// synchronously on every mutation. There is no in-memory-only state that
// could diverge from the durable copy.
type Catalog struct {
	path string

	mu      sync.RWMutex
	records []core.ArticleRecord
}

// Open loads the catalog file at path, starting empty when it is absent.
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0) {
		return c, nil
	}
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "reading catalog", err)
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "decoding catalog", err)
	}
	c.records = records
	return c, nil
}

// decodeRecords parses the durable catalog strictly: unknown fields and
// records missing required fields are rejected rather than accepted as
// arbitrary shapes.
func decodeRecords(data []byte) ([]core.ArticleRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []core.ArticleRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == "" || rec.SourceURL == "" || rec.ArtifactRef == "" {
			return nil, errors.New("record missing id, url, or filename")
		}
	}
	return records, nil
}

// Add appends a new record and flushes. The duplicate check is defensive:
// IDs are freshly generated and should never collide.
func (c *Catalog) Add(record core.ArticleRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, rec := range c.records {
		if rec.ID == record.ID {
			return core.Errf(core.ErrDuplicateID, "%s", record.ID)
		}
	}

	next := append(append([]core.ArticleRecord(nil), c.records...), record)
	if err := c.flush(next); err != nil {
		return err
	}
	c.records = next
	return nil
}

// Remove deletes a record by id, returning it.
func (c *Catalog) Remove(id string) (core.ArticleRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, rec := range c.records {
		if rec.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ArticleRecord{}, core.Errf(core.ErrNotFound, "article %s", id)
	}

	removed := c.records[idx]
	next := append([]core.ArticleRecord(nil), c.records[:idx]...)
	next = append(next, c.records[idx+1:]...)
	if err := c.flush(next); err != nil {
		return core.ArticleRecord{}, err
	}
	c.records = next
	return removed, nil
}

// Get looks up a single record by id.
func (c *Catalog) Get(id string) (core.ArticleRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rec := range c.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return core.ArticleRecord{}, core.Errf(core.ErrNotFound, "article %s", id)
}

// List returns all records ordered by SavedAt descending, ties broken by
// ID descending. The ordering is deterministic and stable across reads.
// The slice is never nil, so an empty catalog serializes as a JSON array.
func (c *Catalog) List() []core.ArticleRecord {
	c.mu.RLock()
	out := make([]core.ArticleRecord, 0, len(c.records))
	out = append(out, c.records...)
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Refs returns the set of artifact references held by current records,
// for reconciliation against the artifact store.
func (c *Catalog) Refs() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make(map[string]bool, len(c.records))
	for _, rec := range c.records {
		refs[rec.ArtifactRef] = true
	}
	return refs
}

// flush writes the full record set to a staging file next to the catalog
// and renames it into place. A failure leaves the previous durable copy
// intact; the caller keeps serving from it. Caller holds the write lock.
func (c *Catalog) flush(records []core.ArticleRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return core.Wrap(core.ErrStorage, "encoding catalog", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return core.Wrap(core.ErrStorage, "creating catalog staging file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return core.Wrap(core.ErrStorage, "writing catalog staging file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return core.Wrap(core.ErrStorage, "closing catalog staging file", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return core.Wrap(core.ErrStorage, "replacing catalog", err)
	}
	return nil
}
