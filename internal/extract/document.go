package extract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// Document is the handle contract over an open PDF: page count, per-page
// text, and document metadata all come from one handle so the counts cannot
// diverge between facets.
type Document interface {
	PageCount() int
	PageText(pageNr int) (string, error) // 1-indexed
	Metadata() Metadata
	Close() error
}

// DocumentOpener opens a PDF at the given path.
type DocumentOpener func(path string) (Document, error)

// OpenDocument opens a PDF with MuPDF.
func OpenDocument(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) PageCount() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) PageText(pageNr int) (string, error) {
	text, err := d.doc.Text(pageNr - 1)
	if err != nil {
		return "", fmt.Errorf("page %d text: %w", pageNr, err)
	}
	return text, nil
}

func (d *fitzDocument) Metadata() Metadata {
	meta := d.doc.Metadata()
	return Metadata{
		Title:            meta["title"],
		Author:           meta["author"],
		Subject:          meta["subject"],
		Creator:          meta["creator"],
		Producer:         meta["producer"],
		CreationDate:     meta["creationDate"],
		ModificationDate: meta["modDate"],
	}
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
