package tables

// Table is the normalized table shape shared by both detection strategies.
type Table struct {
	ID          int                 `json:"table_id"`
	Page        int                 `json:"page"`
	Accuracy    float64             `json:"accuracy"`
	Headers     []string            `json:"headers"`
	Rows        []map[string]string `json:"data"`
	RowCount    int                 `json:"rows"`
	ColumnCount int                 `json:"columns"`
}

// PrimaryTable is one table as reported by the primary (layout-aware) detector.
type PrimaryTable struct {
	Page     int
	Accuracy float64 // native confidence score in [0.0, 1.0]
	Header   []string
	Rows     [][]string
}

// RawTable is one table as reported by the fallback detector: rows of
// nullable cell strings, first row conventionally the header row.
type RawTable [][]*string

// PrimaryDetector detects tables across a whole document and reports a
// confidence score per table. It may be absent (nil) as a valid
// configuration; any error it returns triggers the fallback strategy.
type PrimaryDetector interface {
	DocumentTables(path string) ([]PrimaryTable, error)
}

// FallbackDetector detects zero or more raw tables on a single page.
type FallbackDetector interface {
	PageTables(path string, pageNr int) ([]RawTable, error)
}
