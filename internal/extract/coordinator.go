// Package extract drives a single PDF through the four extraction facets
// (metadata, page text, tables, images) and assembles the intermediate
// representation consumed by the XML serializer.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/karan4533/pdf-to-xml-converter/internal/extract/ocr"
)

// TableExtractor is the table facet contract, satisfied by tables.Selector.
type TableExtractor interface {
	Extract(path string, pageCount int) ([]Table, error)
}

// imageLister is the image facet contract, satisfied by imageExtractor.
type imageLister interface {
	extract(ctx context.Context, path string) ([]Image, int, error)
}

// Coordinator runs one conversion: all four facets execute sequentially
// over the same request, and the page count comes from the same open handle
// as metadata and text.
type Coordinator struct {
	open   DocumentOpener
	tables TableExtractor
	images imageLister
	logger *slog.Logger
}

// NewCoordinator wires the coordinator. engine may be nil when OCR is
// unavailable; every image then carries the "not available" sentinel.
func NewCoordinator(tableExtractor TableExtractor, engine ocr.Engine, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		open:   OpenDocument,
		tables: tableExtractor,
		images: &imageExtractor{engine: engine, logger: logger},
		logger: logger,
	}
}

// Process extracts all facets from the PDF at path and assembles the
// Result. Any unrecoverable facet failure aborts the whole conversion,
// wrapped so callers see a single "Error processing PDF" message.
func (c *Coordinator) Process(ctx context.Context, path string) (*Result, error) {
	result, err := c.process(ctx, path)
	if err != nil {
		return nil, NewError(err)
	}
	return result, nil
}

func (c *Coordinator) process(ctx context.Context, path string) (*Result, error) {
	doc, err := c.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	pageCount := doc.PageCount()
	result := &Result{
		Metadata:  doc.Metadata(),
		PageCount: pageCount,
	}

	if err := c.extractText(ctx, doc, result); err != nil {
		return nil, err
	}

	tables, err := c.tables.Extract(path, pageCount)
	if err != nil {
		return nil, err
	}
	result.Tables = tables

	images, skipped, err := c.images.extract(ctx, path)
	if err != nil {
		return nil, err
	}
	result.Images = images
	result.SkippedImages = skipped

	c.logger.Debug("extraction complete",
		"path", path,
		"pages", result.PageCount,
		"text_pages", len(result.TextContent),
		"tables", len(result.Tables),
		"images", len(result.Images),
		"skipped_images", skipped)

	return result, nil
}

// extractText collects per-page text. Pages whose extracted text is empty
// are omitted entirely; counts are computed from the raw extracted text.
func (c *Coordinator) extractText(ctx context.Context, doc Document, result *Result) error {
	for pageNr := 1; pageNr <= result.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := doc.PageText(pageNr)
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}

		result.TextContent = append(result.TextContent, PageText{
			Page:      pageNr,
			Text:      trimmed,
			CharCount: utf8.RuneCountInString(text),
			WordCount: len(strings.Fields(text)),
		})
	}
	return nil
}
