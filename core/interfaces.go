// Package core defines the pipeline interfaces and shared types for webshelf.
// Each stage of the capture pipeline is a clean, testable interface.
package core

import (
	"context"
	"time"
)

// FetchResult holds the raw HTML and response metadata from a fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// Extraction is the normalized output of the readability stage: the
// article title, the cleaned body fragment, and the source domain.
type Extraction struct {
	Title    string
	BodyHTML string
	Domain   string
}

// ArticleRecord is one captured article in the catalog. All fields are
// immutable once the record is committed; JSON names match the durable
// catalog layout.
type ArticleRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SourceURL   string    `json:"url"`
	Domain      string    `json:"domain"`
	SavedAt     time.Time `json:"saved_at"`
	ArtifactRef string    `json:"filename"`
}

// PageView is one page of the catalog listing, 1-indexed.
type PageView struct {
	Items      []ArticleRecord `json:"items"`
	PageNumber int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	HasPrev    bool            `json:"has_prev"`
	HasNext    bool            `json:"has_next"`
}

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor reduces raw HTML to the readable article content.
type Extractor interface {
	Extract(html string, pageURL string) (*Extraction, error)
}

// Renderer converts an extracted article into the final document bytes.
type Renderer interface {
	Render(title string, bodyHTML string, sourceURL string) ([]byte, error)
	// Extension returns the file extension of the produced format (".pdf").
	Extension() string
}
