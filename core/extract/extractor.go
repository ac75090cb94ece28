// Package extract implements the Extractor interface.
// It isolates the readable article from a full HTML page by:
//  1. Running a readability heuristic (reader-mode scoring of DOM subtrees)
//  2. Sanitizing the winning fragment so no script or event handler survives
//  3. Deriving the source domain from the page URL
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"

	"github.com/gaurav-prasanna/webshelf/core"
)

// minContentChars is the smallest extracted text considered a real article.
// Shorter results mean the heuristic found only page chrome.
const minContentChars = 150

// ReadabilityExtractor extracts article content with go-readability and
// sanitizes it with bluemonday. Extraction is deterministic and never
// executes embedded scripts (pure parsing).
type ReadabilityExtractor struct {
	policy *bluemonday.Policy
}

// New creates a ReadabilityExtractor.
func New() *ReadabilityExtractor {
	// UGC policy keeps text formatting, links, and images; strips
	// scripts, styles, iframes, and event-handler attributes.
	return &ReadabilityExtractor{policy: bluemonday.UGCPolicy()}
}

// Extract reduces raw HTML to the (title, body, domain) triple.
func (e *ReadabilityExtractor) Extract(html string, pageURL string) (*core.Extraction, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, core.Wrap(core.ErrExtract, "parsing page URL", err)
	}

	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return nil, core.Wrap(core.ErrExtract, "readability", err)
	}

	body := e.policy.Sanitize(article.Content)

	if n := textLength(body); n < minContentChars {
		return nil, core.Errf(core.ErrExtract,
			"content too sparse: %d chars (minimum %d)", n, minContentChars)
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = fallbackTitle(html)
	}

	return &core.Extraction{
		Title:    title,
		BodyHTML: body,
		Domain:   Domain(parsed),
	}, nil
}

// Domain returns the host of a parsed URL with any "www." prefix removed.
func Domain(u *url.URL) string {
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// textLength measures the visible text of an HTML fragment.
func textLength(fragment string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0
	}
	return len(strings.TrimSpace(doc.Text()))
}

// fallbackTitle pulls a title from the raw page when readability found none:
// <title>, then the first <h1>, then og:title.
func fallbackTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		return strings.TrimSpace(t)
	}
	return ""
}
