package extract

import (
	"github.com/karan4533/pdf-to-xml-converter/internal/extract/tables"
)

// OCR outcome sentinel texts. The three states (engine unavailable, engine
// failed for one image, engine succeeded) are distinct and preserved.
const (
	OCRNotAvailableText = "OCR not available (Tesseract not installed)"
	OCRFailedText       = "OCR extraction failed"
)

// Metadata holds the document-level metadata fields. Empty values are
// omitted from the XML output rather than emitted as empty elements.
type Metadata struct {
	Title            string
	Author           string
	Subject          string
	Creator          string
	Producer         string
	CreationDate     string
	ModificationDate string
}

// MetadataField is one named metadata value in serialization order.
type MetadataField struct {
	Name  string
	Value string
}

// Fields returns the metadata fields in their fixed serialization order,
// including empty values (callers decide whether to omit them).
func (m Metadata) Fields() []MetadataField {
	return []MetadataField{
		{"title", m.Title},
		{"author", m.Author},
		{"subject", m.Subject},
		{"creator", m.Creator},
		{"producer", m.Producer},
		{"creation_date", m.CreationDate},
		{"modification_date", m.ModificationDate},
	}
}

// PageText is the extracted text of one page. Pages without text are not
// represented at all.
type PageText struct {
	Page      int    // 1-indexed
	Text      string // formatting-preserving, not re-wrapped
	CharCount int    // rune count of the extracted text
	WordCount int    // whitespace-separated fields
}

// Table is the normalized table shape produced by either strategy.
type Table = tables.Table

// Image is one embedded raster image that passed the color-model filter.
type Image struct {
	ID         string // img_<page>_<index-within-page>, both 1-indexed
	Page       int
	Width      int
	Height     int
	OCRText    string
	Base64Data string // PNG re-encode, base64
	Format     string // always "PNG"
}

// Result is the intermediate representation bridging extraction and XML
// serialization. It is assembled once per conversion and never mutated
// afterwards.
type Result struct {
	Metadata    Metadata
	TextContent []PageText
	Tables      []Table
	Images      []Image
	PageCount   int

	// SkippedImages counts enumerated images dropped by the color-model
	// filter or by decode errors. Diagnostic only; never serialized.
	SkippedImages int
}

// Capabilities records which optional adapters are present. It is built
// once at process start and injected, never probed ad hoc.
type Capabilities struct {
	OCR           bool
	PrimaryTables bool
}

// Error wraps any unrecoverable failure inside metadata, text, table or
// image extraction. The whole conversion aborts; no partial XML is written.
type Error struct {
	cause error
}

// NewError wraps the underlying cause of a failed conversion.
func NewError(cause error) *Error {
	return &Error{cause: cause}
}

func (e *Error) Error() string {
	return "Error processing PDF: " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}
