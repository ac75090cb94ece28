// Package library orchestrates the capture pipeline for one submitted URL:
// fetch → extract → render → artifact put → catalog add. The artifact and
// the catalog record live in independently durable stores with no shared
// transaction, so the pipeline guarantees "both or neither" itself: the
// artifact is written first (cheap to orphan) and deleted again whenever the
// catalog commit does not happen.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gaurav-prasanna/webshelf/core"
	"github.com/gaurav-prasanna/webshelf/core/catalog"
	"github.com/gaurav-prasanna/webshelf/core/extract"
	"github.com/gaurav-prasanna/webshelf/core/fetch"
	"github.com/gaurav-prasanna/webshelf/core/render"
	"github.com/gaurav-prasanna/webshelf/core/store"
)

// Library is the capture and retrieval facade any transport wraps.
type Library struct {
	catalog   *catalog.Catalog
	store     *store.Store
	fetcher   core.Fetcher
	extractor core.Extractor
	renderer  core.Renderer
	logger    *slog.Logger

	// Injected for tests; default to time.Now and uuid.NewString.
	now   func() time.Time
	newID func() string
}

// Option configures a Library.
type Option func(*Library)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f core.Fetcher) Option {
	return func(l *Library) { l.fetcher = f }
}

// WithExtractor replaces the default readability extractor.
func WithExtractor(e core.Extractor) Option {
	return func(l *Library) { l.extractor = e }
}

// WithRenderer replaces the default PDF renderer.
func WithRenderer(r core.Renderer) Option {
	return func(l *Library) { l.renderer = r }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) { l.logger = logger }
}

// WithClock overrides the SavedAt clock.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(l *Library) { l.newID = newID }
}

// Open initializes the library under dataDir: the catalog at
// articles.json and one artifact per record under pdfs/.
func Open(dataDir string, opts ...Option) (*Library, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	cat, err := catalog.Open(filepath.Join(dataDir, "articles.json"))
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	st, err := store.New(filepath.Join(dataDir, "pdfs"))
	if err != nil {
		return nil, fmt.Errorf("opening artifact store: %w", err)
	}

	l := &Library{
		catalog:   cat,
		store:     st,
		fetcher:   fetch.New(),
		extractor: extract.New(),
		renderer:  render.NewPDFRenderer(),
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Submit captures the page at rawURL end to end and returns the committed
// record. Fetch, extract, and render failures abort with no state created.
// Once the artifact is stored, any later failure (including caller
// cancellation) deletes it again before the error is surfaced.
func (l *Library) Submit(ctx context.Context, rawURL string) (core.ArticleRecord, error) {
	if err := validateURL(rawURL); err != nil {
		return core.ArticleRecord{}, err
	}

	result, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return core.ArticleRecord{}, err
	}

	extraction, err := l.extractor.Extract(result.HTML, rawURL)
	if err != nil {
		return core.ArticleRecord{}, err
	}

	data, err := l.renderer.Render(extraction.Title, extraction.BodyHTML, rawURL)
	if err != nil {
		return core.ArticleRecord{}, err
	}

	if err := ctx.Err(); err != nil {
		return core.ArticleRecord{}, err
	}

	ref, err := l.store.Put(data, l.renderer.Extension())
	if err != nil {
		return core.ArticleRecord{}, err
	}

	// The artifact is durable from here on: every early return below must
	// delete it so a failed submission leaves no orphan.
	if err := ctx.Err(); err != nil {
		l.compensate(ref)
		return core.ArticleRecord{}, err
	}

	title := extraction.Title
	if title == "" {
		title = rawURL
	}

	record := core.ArticleRecord{
		ID:          l.newID(),
		Title:       title,
		SourceURL:   rawURL,
		Domain:      extraction.Domain,
		SavedAt:     l.now(),
		ArtifactRef: ref,
	}

	if err := l.catalog.Add(record); err != nil {
		l.compensate(ref)
		return core.ArticleRecord{}, err
	}

	l.logger.Info("article saved",
		"id", record.ID,
		"domain", record.Domain,
		"title", record.Title,
		"artifact", record.ArtifactRef,
	)
	return record, nil
}

// Delete removes a record and its artifact together. When the catalog has
// no such record the store is not touched.
func (l *Library) Delete(id string) error {
	removed, err := l.catalog.Remove(id)
	if err != nil {
		return err
	}
	if err := l.store.Delete(removed.ArtifactRef); err != nil {
		// The record is gone; the leftover artifact is an orphan the
		// next Reconcile will collect.
		l.logger.Warn("artifact delete failed after catalog remove",
			"id", id, "artifact", removed.ArtifactRef, "error", err)
		return err
	}
	l.logger.Info("article deleted", "id", id)
	return nil
}

// Get looks up a single record.
func (l *Library) Get(id string) (core.ArticleRecord, error) {
	return l.catalog.Get(id)
}

// List returns all records, newest first.
func (l *Library) List() []core.ArticleRecord {
	return l.catalog.List()
}

// Page returns one page of the ordered listing.
func (l *Library) Page(pageNumber, pageSize int) core.PageView {
	return catalog.Paginate(l.catalog.List(), pageNumber, pageSize)
}

// ReadArtifact returns a record and its rendered document bytes.
func (l *Library) ReadArtifact(id string) (core.ArticleRecord, []byte, error) {
	record, err := l.catalog.Get(id)
	if err != nil {
		return core.ArticleRecord{}, nil, err
	}
	data, err := l.store.Get(record.ArtifactRef)
	if err != nil {
		return core.ArticleRecord{}, nil, err
	}
	return record, data, nil
}

// Reconcile deletes artifacts unreferenced by any catalog record, cleaning
// up the crash window between artifact publish and catalog commit. Recent
// artifacts are spared, so reconciling while submissions are in flight
// cannot collect one that is about to be committed.
func (l *Library) Reconcile() (int, error) {
	removed, err := l.store.Sweep(l.catalog.Refs())
	if removed > 0 {
		l.logger.Info("reconciled orphaned artifacts", "removed", removed)
	}
	return removed, err
}

// compensate rolls back a stored artifact after a failed commit.
func (l *Library) compensate(ref string) {
	if err := l.store.Delete(ref); err != nil {
		// Orphan until the next Reconcile.
		l.logger.Warn("compensating delete failed", "artifact", ref, "error", err)
	}
}

// validateURL requires an absolute http(s) URL before any network work.
// The failure kind is distinct from ErrFetch so transports can blame the
// caller rather than the upstream site.
func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return core.Wrap(core.ErrInvalidURL, rawURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return core.Errf(core.ErrInvalidURL, "%q: must be absolute http(s)", rawURL)
	}
	return nil
}
