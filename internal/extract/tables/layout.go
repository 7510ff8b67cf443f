package tables

import (
	"fmt"
	"sort"

	"github.com/ledongthuc/pdf"
)

// Layout detection constants.
const (
	rowTolerance       = 5.0  // max Y distance between texts on one visual row
	proximityThreshold = 20.0 // min X gap separating two cells
	minRowsForTable    = 2    // header plus at least one data row
	minCellsPerRow     = 2
	minTableElements   = 4
)

// LayoutDetector is the primary table strategy: it clusters positioned text
// into rows and columns and scores each candidate by column alignment
// consistency.
type LayoutDetector struct{}

// NewLayoutDetector creates the layout-aware primary detector.
func NewLayoutDetector() *LayoutDetector {
	return &LayoutDetector{}
}

// DocumentTables detects tables across all pages of the document.
func (d *LayoutDetector) DocumentTables(path string) ([]PrimaryTable, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var detected []PrimaryTable
	for pageNr := 1; pageNr <= r.NumPage(); pageNr++ {
		pageTables, err := d.pageTables(r, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		detected = append(detected, pageTables...)
	}
	return detected, nil
}

// pageTables extracts table candidates from one page of positioned text.
func (d *LayoutDetector) pageTables(r *pdf.Reader, pageNr int) (result []PrimaryTable, err error) {
	defer func() {
		// The underlying parser panics on malformed content streams.
		if rec := recover(); rec != nil {
			err = fmt.Errorf("layout analysis panicked: %v", rec)
		}
	}()

	page := r.Page(pageNr)
	if page.V.IsNull() {
		return nil, nil
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return nil, nil
	}

	rows := groupIntoRows(content.Text)

	// Find contiguous runs of multi-cell rows; each run is a candidate.
	start := -1
	for i := 0; i <= len(rows); i++ {
		multiCell := i < len(rows) && len(rows[i]) >= minCellsPerRow
		if multiCell && start < 0 {
			start = i
			continue
		}
		if !multiCell && start >= 0 {
			if t, ok := buildCandidate(rows[start:i], pageNr); ok {
				result = append(result, t)
			}
			start = -1
		}
	}
	return result, nil
}

// groupIntoRows buckets positioned texts into visual rows by Y proximity and
// splits each row into cells on X gaps.
func groupIntoRows(texts []pdf.Text) [][]string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	// Top of page first (PDF Y axis points up), left to right within a row.
	sort.Slice(sorted, func(i, j int) bool {
		if diff := sorted[i].Y - sorted[j].Y; diff > rowTolerance || diff < -rowTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]string
	var current []pdf.Text
	for _, t := range sorted {
		if len(current) > 0 {
			diff := current[len(current)-1].Y - t.Y
			if diff > rowTolerance || diff < -rowTolerance {
				rows = append(rows, splitIntoCells(current))
				current = current[:0]
			}
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		rows = append(rows, splitIntoCells(current))
	}
	return rows
}

// splitIntoCells merges adjacent text fragments and starts a new cell
// whenever the horizontal gap exceeds the proximity threshold.
func splitIntoCells(texts []pdf.Text) []string {
	var cells []string
	var cell string
	var rightEdge float64

	for i, t := range texts {
		if i > 0 && t.X-rightEdge > proximityThreshold {
			cells = append(cells, cell)
			cell = ""
		}
		cell += t.S
		rightEdge = t.X + t.W
	}
	if cell != "" {
		cells = append(cells, cell)
	}
	return cells
}

// buildCandidate validates a run of multi-cell rows and scores it by how
// consistently the rows match the header width.
func buildCandidate(run [][]string, pageNr int) (PrimaryTable, bool) {
	if len(run) < minRowsForTable {
		return PrimaryTable{}, false
	}

	total := 0
	for _, row := range run {
		total += len(row)
	}
	if total < minTableElements {
		return PrimaryTable{}, false
	}

	header := run[0]
	width := len(header)
	aligned := 0
	rows := make([][]string, 0, len(run)-1)
	for _, row := range run[1:] {
		if len(row) == width {
			aligned++
		}
		normalized := make([]string, width)
		copy(normalized, row)
		rows = append(rows, normalized)
	}

	return PrimaryTable{
		Page:     pageNr,
		Accuracy: float64(aligned) / float64(len(rows)),
		Header:   header,
		Rows:     rows,
	}, true
}
