// Package tables implements the two-tier table extraction strategy: a
// layout-aware primary detector with native confidence scores, and a
// text-row fallback detector used whenever the primary is absent or fails.
package tables

import (
	"fmt"
	"log/slog"
)

// FallbackAccuracy is assigned to fallback-detected tables, which carry no
// native confidence score.
const FallbackAccuracy = 0.8

// Selector encapsulates the primary/fallback table-detection policy and
// normalizes both strategies' outputs into one Table shape.
type Selector struct {
	primary  PrimaryDetector // nil when the primary strategy is not configured
	fallback FallbackDetector
	logger   *slog.Logger
}

// NewSelector creates a strategy selector. primary may be nil, in which case
// the fallback detector is used directly.
func NewSelector(primary PrimaryDetector, fallback FallbackDetector, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Extract returns the tables detected in the document. The primary strategy
// is attempted first across all pages at once; if it returns without error
// its result is final, even when empty. A primary failure is logged and the
// fallback strategy runs instead, never aborting extraction.
func (s *Selector) Extract(path string, pageCount int) ([]Table, error) {
	if s.primary != nil {
		detected, err := s.primary.DocumentTables(path)
		if err == nil {
			return s.normalizePrimary(detected), nil
		}
		s.logger.Warn("primary table detection failed, falling back",
			"path", path, "error", err)
	}
	return s.extractFallback(path, pageCount)
}

// normalizePrimary converts primary detector output into the normalized
// shape, assigning sequential ids in the order tables were reported.
func (s *Selector) normalizePrimary(detected []PrimaryTable) []Table {
	tables := make([]Table, 0, len(detected))
	for _, d := range detected {
		headers := d.Header
		if len(headers) == 0 {
			width := 1
			if len(d.Rows) > 0 && len(d.Rows[0]) > 0 {
				width = len(d.Rows[0])
			}
			headers = placeholderHeaders(width)
		}

		rows := make([]map[string]string, 0, len(d.Rows))
		for _, r := range d.Rows {
			record := make(map[string]string, len(headers))
			for i, h := range headers {
				if i < len(r) {
					record[h] = r[i]
				} else {
					record[h] = ""
				}
			}
			rows = append(rows, record)
		}

		tables = append(tables, Table{
			ID:          len(tables) + 1,
			Page:        d.Page,
			Accuracy:    clampScore(d.Accuracy),
			Headers:     headers,
			Rows:        rows,
			RowCount:    len(rows),
			ColumnCount: len(headers),
		})
	}
	return tables
}

// extractFallback iterates pages in order and normalizes every accepted raw
// table. A per-page detector failure is logged and skipped; remaining pages
// still contribute tables.
func (s *Selector) extractFallback(path string, pageCount int) ([]Table, error) {
	var tables []Table

	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		raws, err := s.fallback.PageTables(path, pageNr)
		if err != nil {
			s.logger.Warn("fallback table detection failed for page",
				"path", path, "page", pageNr, "error", err)
			continue
		}

		for _, raw := range raws {
			if len(raw) == 0 {
				continue
			}

			headers := headerRow(raw[0])
			data := raw[1:]
			if len(data) == 0 {
				// A table with only a header row produces nothing.
				continue
			}

			rows := make([]map[string]string, 0, len(data))
			for _, r := range data {
				record := make(map[string]string, len(headers))
				for i, h := range headers {
					if i < len(r) && r[i] != nil {
						record[h] = *r[i]
					} else {
						record[h] = ""
					}
				}
				rows = append(rows, record)
			}

			tables = append(tables, Table{
				ID:          len(tables) + 1,
				Page:        pageNr,
				Accuracy:    FallbackAccuracy,
				Headers:     headers,
				Rows:        rows,
				RowCount:    len(rows),
				ColumnCount: len(headers),
			})
		}
	}

	return tables, nil
}

// headerRow derives column names from the first row of a raw table. An
// empty first row yields a single synthesized column; nil or empty cells
// within a non-empty first row get per-position placeholders.
func headerRow(first []*string) []string {
	if len(first) == 0 {
		return placeholderHeaders(1)
	}
	headers := make([]string, len(first))
	for i, cell := range first {
		if cell != nil && *cell != "" {
			headers[i] = *cell
		} else {
			headers[i] = fmt.Sprintf("Column_%d", i)
		}
	}
	return headers
}

func placeholderHeaders(width int) []string {
	headers := make([]string, width)
	for i := range headers {
		headers[i] = fmt.Sprintf("Column_%d", i)
	}
	return headers
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
