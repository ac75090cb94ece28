// Package store persists rendered artifacts on the local filesystem.
// Objects are opaque to callers: Put returns a reference, Get and Delete
// take one back. A put writes to a staging file in the same directory and
// atomically renames it into place, so a concurrent Get never observes a
// partially written object.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/webshelf/core"
)

const stagingPrefix = ".staging-"

// sweepGrace is the age below which Sweep leaves a file alone. An artifact
// published by an in-flight submission is unreferenced until its catalog
// commit lands; the grace window keeps a concurrent sweep from collecting
// it mid-pipeline.
const sweepGrace = time.Minute

// Store writes artifacts under a single directory, one file per object.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.Wrap(core.ErrStorage, "creating artifact directory", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// Put stores a new object and returns its reference. References are fresh
// UUID-based filenames, so two puts never collide.
func (s *Store) Put(data []byte, ext string) (string, error) {
	ref := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, stagingPrefix+"*")
	if err != nil {
		return "", core.Wrap(core.ErrStorage, "creating staging file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", core.Wrap(core.ErrStorage, "writing staging file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", core.Wrap(core.ErrStorage, "closing staging file", err)
	}

	// Atomic publish: same directory, so the rename cannot cross devices.
	if err := os.Rename(tmpName, filepath.Join(s.dir, ref)); err != nil {
		os.Remove(tmpName)
		return "", core.Wrap(core.ErrStorage, "publishing artifact", err)
	}
	return ref, nil
}

// Get retrieves a stored object byte-exact.
func (s *Store) Get(ref string) ([]byte, error) {
	path, err := s.refPath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.Errf(core.ErrNotFound, "artifact %s", ref)
	}
	if err != nil {
		return nil, core.Wrap(core.ErrStorage, "reading artifact", err)
	}
	return data, nil
}

// Delete removes an object. Deleting an absent object is not an error.
func (s *Store) Delete(ref string) error {
	path, err := s.refPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.Wrap(core.ErrStorage, "deleting artifact", err)
	}
	return nil
}

// Sweep deletes every artifact whose reference is not in referenced and
// returns how many were removed. Staging leftovers from interrupted puts
// are swept too. This is the reconciliation pass for orphans left by a
// crash between artifact publish and catalog commit. Files younger than
// sweepGrace are spared: they may belong to a submission that is still
// between publish and commit.
func (s *Store) Sweep(referenced map[string]bool) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, core.Wrap(core.ErrStorage, "listing artifacts", err)
	}

	cutoff := time.Now().Add(-sweepGrace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, stagingPrefix) && referenced[name] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed underneath us between ReadDir and here.
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, core.Wrap(core.ErrStorage, fmt.Sprintf("sweeping %s", name), err)
		}
		removed++
	}
	return removed, nil
}

// refPath validates a reference and resolves it inside the store directory.
// References are flat filenames; anything path-like is rejected.
func (s *Store) refPath(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || strings.HasPrefix(ref, ".") {
		return "", core.Errf(core.ErrNotFound, "invalid artifact ref %q", ref)
	}
	return filepath.Join(s.dir, ref), nil
}
