// Package render — PDF renderer.
// Converts an extracted HTML fragment into a fixed e-reader layout:
// A4, serif typography, bounded text column, title block and source line.
// The fragment is first normalized to Markdown (the canonical intermediate),
// then laid out line by line with gofpdf.
package render

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/webshelf/core"
)

// Layout constants. The wide margins bound the text column for readability.
const (
	pageMargin = 25.0 // mm, left/right/top
	bodySize   = 12.0
	titleSize  = 19.0
	lineHeight = 6.0
)

// creationDate is embedded in every PDF instead of the wall clock so that
// identical inputs produce identical bytes.
var creationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

var numberedItem = regexp.MustCompile(`^\d+\.\s`)

// PDFRenderer renders extracted articles as fixed-layout PDF documents.
// It is purely functional: no I/O, no external state.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// Render converts the article into PDF bytes. Malformed input surfaces as a
// typed render failure, never a crash.
func (r *PDFRenderer) Render(title string, bodyHTML string, sourceURL string) (out []byte, err error) {
	// The conversion layer parses arbitrary markup; contain any panic as
	// a typed failure so one bad page cannot take the process down.
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, core.Errf(core.ErrRender, "layout engine panic: %v", rec)
		}
	}()

	markdown, err := htmltomarkdown.ConvertString(bodyHTML)
	if err != nil {
		return nil, core.Wrap(core.ErrRender, "converting HTML to markdown", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(creationDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin*0.8)
	pdf.AddPage()
	pdf.SetTextColor(34, 34, 34)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title block.
	if title != "" {
		pdf.SetFont("Times", "B", titleSize)
		pdf.MultiCell(0, 8.5, tr(title), "", "L", false)
		pdf.Ln(2)
	}

	// Source line in muted gray.
	if sourceURL != "" {
		pdf.SetFont("Times", "I", 9)
		pdf.SetTextColor(102, 102, 102)
		pdf.MultiCell(0, 5, tr(sourceURL), "", "L", false)
		pdf.SetTextColor(34, 34, 34)
		pdf.Ln(5)
	}

	writeMarkdown(pdf, tr, markdown)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, core.Wrap(core.ErrRender, "writing PDF", err)
	}
	return buf.Bytes(), nil
}

// writeMarkdown lays out Markdown line by line: headings, lists, code
// blocks, and paragraphs in high-contrast serif type.
func writeMarkdown(pdf *gofpdf.Fpdf, tr func(string) string, markdown string) {
	inCodeBlock := false

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			inCodeBlock = !inCodeBlock
			pdf.Ln(2)
			continue
		}

		if inCodeBlock {
			pdf.SetFont("Courier", "", 9.5)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4.5, tr(line), "", "L", true)
			continue
		}

		if trimmed == "" {
			pdf.Ln(3)
			continue
		}

		if level := headingLevel(trimmed); level > 0 {
			text := strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			writeHeading(pdf, tr, text, level)
			continue
		}

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			pdf.SetFont("Times", "", bodySize)
			pdf.MultiCell(0, lineHeight, tr("• "+cleanInline(trimmed[2:])), "", "L", false)
			continue
		}

		if numberedItem.MatchString(trimmed) {
			pdf.SetFont("Times", "", bodySize)
			pdf.MultiCell(0, lineHeight, tr(cleanInline(trimmed)), "", "L", false)
			continue
		}

		pdf.SetFont("Times", "", bodySize)
		pdf.MultiCell(0, lineHeight, tr(cleanInline(line)), "", "L", false)
	}
}

// headingLevel returns the ATX heading level of a line, or 0.
func headingLevel(line string) int {
	level := 0
	for _, ch := range line {
		if ch != '#' {
			break
		}
		level++
	}
	if level == 0 || level > 6 || len(line) <= level || line[level] != ' ' {
		return 0
	}
	return level
}

// writeHeading sets the font size by heading level and writes the text.
func writeHeading(pdf *gofpdf.Fpdf, tr func(string) string, text string, level int) {
	sizes := map[int]float64{1: 16, 2: 14.5, 3: 13, 4: 12.5, 5: 12, 6: 12}
	size := sizes[level]
	pdf.Ln(4)
	pdf.SetFont("Times", "B", size)
	pdf.MultiCell(0, size*0.55, tr(cleanInline(text)), "", "L", false)
	pdf.Ln(2)
}

// cleanInline strips inline Markdown formatting left after conversion.
func cleanInline(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`).ReplaceAllString(text, " $1 ")
	text = regexp.MustCompile("`([^`]+)`").ReplaceAllString(text, "$1")
	text = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`).ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
