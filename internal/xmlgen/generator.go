package xmlgen

import (
	"strconv"
	"strings"

	"github.com/karan4533/pdf-to-xml-converter/internal/extract"
)

// Generate serializes one extraction result into a pretty-printed UTF-8 XML
// document string. Empty sections (text, tables, images) are omitted
// entirely rather than emitted as empty containers.
func Generate(result *extract.Result) string {
	root := newElement("document")
	root.setAttr("xmlns", Namespace)
	root.setAttr("version", "1.0")

	addMetadata(root, result.Metadata)
	addDocumentInfo(root, result)
	addTextContent(root, result.TextContent)
	addTables(root, result.Tables)
	addImages(root, result.Images)

	var sb strings.Builder
	sb.WriteString(header)
	root.render(&sb, 0)
	return sb.String()
}

// addMetadata emits one child per non-empty metadata field, named after
// the field itself.
func addMetadata(root *element, meta extract.Metadata) {
	metaElem := root.child("metadata")
	for _, field := range meta.Fields() {
		if field.Value == "" {
			continue
		}
		metaElem.child(field.Name).setText(field.Value)
	}
}

func addDocumentInfo(root *element, result *extract.Result) {
	info := root.child("document_info")
	info.child("page_count").setText(strconv.Itoa(result.PageCount))
	info.child("total_tables").setText(strconv.Itoa(len(result.Tables)))
	info.child("total_images").setText(strconv.Itoa(len(result.Images)))
}

func addTextContent(root *element, pages []extract.PageText) {
	if len(pages) == 0 {
		return
	}

	section := root.child("text_content")
	for _, page := range pages {
		pageElem := section.child("page")
		pageElem.setAttr("number", strconv.Itoa(page.Page))
		pageElem.setAttr("char_count", strconv.Itoa(page.CharCount))
		pageElem.setAttr("word_count", strconv.Itoa(page.WordCount))
		pageElem.child("text").setText(page.Text)
	}
}

func addTables(root *element, tables []extract.Table) {
	if len(tables) == 0 {
		return
	}

	section := root.child("tables")
	for _, table := range tables {
		tableElem := section.child("table")
		tableElem.setAttr("id", strconv.Itoa(table.ID))
		tableElem.setAttr("page", strconv.Itoa(table.Page))
		tableElem.setAttr("accuracy", formatFloat(table.Accuracy))
		tableElem.setAttr("rows", strconv.Itoa(table.RowCount))
		tableElem.setAttr("columns", strconv.Itoa(table.ColumnCount))

		headersElem := tableElem.child("headers")
		for _, headerName := range table.Headers {
			headersElem.child("header").setText(headerName)
		}

		dataElem := tableElem.child("data")
		for rowIndex, row := range table.Rows {
			rowElem := dataElem.child("row")
			rowElem.setAttr("index", strconv.Itoa(rowIndex))

			// Cells follow header order; absent values render empty.
			for _, columnName := range table.Headers {
				cellElem := rowElem.child("cell")
				cellElem.setAttr("column", columnName)
				cellElem.setText(row[columnName])
			}
		}
	}
}

func addImages(root *element, images []extract.Image) {
	if len(images) == 0 {
		return
	}

	section := root.child("images")
	for _, img := range images {
		imageElem := section.child("image")
		imageElem.setAttr("id", img.ID)
		imageElem.setAttr("page", strconv.Itoa(img.Page))
		imageElem.setAttr("width", strconv.Itoa(img.Width))
		imageElem.setAttr("height", strconv.Itoa(img.Height))
		imageElem.setAttr("format", img.Format)

		if img.OCRText != "" {
			imageElem.child("ocr_text").setText(img.OCRText)
		}
		if img.Base64Data != "" {
			dataElem := imageElem.child("image_data")
			dataElem.setAttr("encoding", "base64")
			dataElem.setText(img.Base64Data)
		}
	}
}
