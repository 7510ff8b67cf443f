package tables

import (
	"fmt"
	"sort"

	"github.com/ledongthuc/pdf"
)

// RowTextDetector is the fallback table strategy. It works from the page's
// row-grouped text alone: consecutive lines that split into multiple cells
// are treated as one raw table.
type RowTextDetector struct{}

// NewRowTextDetector creates the text-layout fallback detector.
func NewRowTextDetector() *RowTextDetector {
	return &RowTextDetector{}
}

// PageTables returns zero or more raw tables found on the given page.
func (d *RowTextDetector) PageTables(path string, pageNr int) (result []RawTable, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if pageNr < 1 || pageNr > r.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1..%d)", pageNr, r.NumPage())
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("row extraction panicked: %v", rec)
		}
	}()

	page := r.Page(pageNr)
	if page.V.IsNull() {
		return nil, nil
	}

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil, fmt.Errorf("get text rows: %w", err)
	}

	// Top of page first.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	lines := make([][]string, 0, len(rows))
	for _, row := range rows {
		texts := make([]pdf.Text, 0, len(row.Content))
		for _, t := range row.Content {
			texts = append(texts, t)
		}
		sort.Slice(texts, func(i, j int) bool { return texts[i].X < texts[j].X })
		lines = append(lines, splitIntoCells(texts))
	}

	// Contiguous runs of multi-cell lines become raw tables.
	start := -1
	for i := 0; i <= len(lines); i++ {
		multiCell := i < len(lines) && len(lines[i]) >= minCellsPerRow
		if multiCell && start < 0 {
			start = i
			continue
		}
		if !multiCell && start >= 0 {
			if i-start >= minRowsForTable {
				result = append(result, toRawTable(lines[start:i]))
			}
			start = -1
		}
	}
	return result, nil
}

// toRawTable converts cell strings to the nullable-cell raw shape.
func toRawTable(lines [][]string) RawTable {
	raw := make(RawTable, 0, len(lines))
	for _, line := range lines {
		cells := make([]*string, len(line))
		for i := range line {
			v := line[i]
			cells[i] = &v
		}
		raw = append(raw, cells)
	}
	return raw
}
