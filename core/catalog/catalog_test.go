package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gaurav-prasanna/webshelf/core"
)

func record(id string, savedAt time.Time) core.ArticleRecord {
	return core.ArticleRecord{
		ID:          id,
		Title:       "Article " + id,
		SourceURL:   "https://example.com/" + id,
		Domain:      "example.com",
		SavedAt:     savedAt,
		ArtifactRef: id + ".pdf",
	}
}

func openCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "articles.json")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return c, path
}

func TestAddGetRemove(t *testing.T) {
	c, _ := openCatalog(t)
	rec := record("a1", time.Now().UTC())

	if err := c.Add(rec); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get("a1")
	if err != nil {
		t.Fatal(err)
	}
	if got != rec {
		t.Errorf("Get = %+v, want %+v", got, rec)
	}

	removed, err := c.Remove("a1")
	if err != nil {
		t.Fatal(err)
	}
	if removed != rec {
		t.Errorf("Remove = %+v, want %+v", removed, rec)
	}
	if _, err := c.Get("a1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddDuplicateID(t *testing.T) {
	c, _ := openCatalog(t)
	if err := c.Add(record("dup", time.Now())); err != nil {
		t.Fatal(err)
	}
	err := c.Add(record("dup", time.Now()))
	if !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 (failed add must not mutate)", c.Len())
	}
}

func TestRemoveMissing(t *testing.T) {
	c, path := openCatalog(t)
	if err := c.Add(record("keep", time.Now())); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Remove("absent"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("failed remove rewrote the durable catalog")
	}
}

func TestListOrdering(t *testing.T) {
	c, _ := openCatalog(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Insert out of order, including a SavedAt tie broken by ID descending.
	for _, rec := range []core.ArticleRecord{
		record("b", base),
		record("d", base.Add(2*time.Hour)),
		record("a", base),
		record("c", base.Add(time.Hour)),
	} {
		if err := c.Add(rec); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	for _, rec := range c.List() {
		got = append(got, rec.ID)
	}
	want := []string{"d", "c", "b", "a"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", got, want)
	}

	// Stable across repeated reads.
	var again []string
	for _, rec := range c.List() {
		again = append(again, rec.ID)
	}
	if strings.Join(got, ",") != strings.Join(again, ",") {
		t.Error("ordering not stable across reads")
	}
}

func TestListEmptyIsNonNil(t *testing.T) {
	c, _ := openCatalog(t)

	got := c.List()
	if got == nil {
		t.Fatal("List on empty catalog returned nil, want empty slice")
	}
	// The distinction matters at the API boundary: nil encodes as JSON
	// null, an empty slice as [].
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("empty list encodes as %s, want []", data)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	c, path := openCatalog(t)
	rec := record("persist", time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC))
	if err := c.Add(rec); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get("persist")
	if err != nil {
		t.Fatal(err)
	}
	if !got.SavedAt.Equal(rec.SavedAt) || got.Title != rec.Title || got.ArtifactRef != rec.ArtifactRef {
		t.Errorf("reloaded = %+v, want %+v", got, rec)
	}
}

func TestOpenMissingFile(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}

func TestOpenRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	data := `[{"id":"x","title":"t","url":"https://e.com","domain":"e.com",
		"saved_at":"2026-01-01T00:00:00Z","filename":"x.pdf","surprise":true}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, core.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage for unknown field", err)
	}
}

func TestOpenRejectsMissingRequiredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "articles.json")
	data := `[{"id":"","title":"t","url":"https://e.com","domain":"e.com",
		"saved_at":"2026-01-01T00:00:00Z","filename":"x.pdf"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, core.ErrStorage) {
		t.Fatalf("err = %v, want ErrStorage for missing id", err)
	}
}

func TestFlushLeavesNoStagingFiles(t *testing.T) {
	c, path := openCatalog(t)
	if err := c.Add(record("a", time.Now())); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "articles.json" {
		t.Errorf("catalog dir entries = %v, want only articles.json", entries)
	}
}

func TestConcurrentMutation(t *testing.T) {
	c, path := openCatalog(t)
	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := c.Add(record(fmt.Sprintf("id-%02d", i), time.Now())); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != n {
		t.Fatalf("Len = %d, want %d (no lost updates)", c.Len(), n)
	}

	// The durable copy holds every record too.
	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Len() != n {
		t.Fatalf("durable Len = %d, want %d", reopened.Len(), n)
	}
}

func TestConcurrentRemoveSameID(t *testing.T) {
	c, _ := openCatalog(t)
	if err := c.Add(record("contested", time.Now())); err != nil {
		t.Fatal(err)
	}

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.Remove("contested")
			results <- err
		}()
	}

	var wins, misses int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			wins++
		} else if errors.Is(err, core.ErrNotFound) {
			misses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || misses != 1 {
		t.Errorf("wins = %d, misses = %d, want exactly one of each", wins, misses)
	}
}
