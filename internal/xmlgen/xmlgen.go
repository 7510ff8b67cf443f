// Package xmlgen renders an extraction result into the fixed XML schema.
// Output is deterministic: the same result always yields byte-identical XML.
package xmlgen

import (
	"strconv"
	"strings"
)

// Namespace is the fixed xmlns URI on the document root.
const Namespace = "http://example.com/pdf-xml"

const (
	header = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"
	indent = "  "
)

// escaper replaces the five XML-special characters with their entity
// equivalents. Applied once per value; numbers are stringified first.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

type attr struct {
	name  string
	value string
}

// element is a node of the output tree. Attribute and child order is
// insertion order, which keeps serialization deterministic.
type element struct {
	name     string
	attrs    []attr
	text     string
	children []*element
}

func newElement(name string) *element {
	return &element{name: name}
}

func (e *element) setAttr(name, value string) *element {
	e.attrs = append(e.attrs, attr{name: name, value: value})
	return e
}

func (e *element) setText(text string) *element {
	e.text = text
	return e
}

func (e *element) child(name string) *element {
	c := newElement(name)
	e.children = append(e.children, c)
	return c
}

// render writes the element at the given depth. Elements with children
// span multiple lines; text-only elements render on one line; elements
// with neither self-close.
func (e *element) render(sb *strings.Builder, depth int) {
	pad := strings.Repeat(indent, depth)
	sb.WriteString(pad)
	sb.WriteByte('<')
	sb.WriteString(e.name)
	for _, a := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.name)
		sb.WriteString(`="`)
		sb.WriteString(escaper.Replace(a.value))
		sb.WriteByte('"')
	}

	switch {
	case len(e.children) > 0:
		sb.WriteString(">\n")
		for _, c := range e.children {
			c.render(sb, depth+1)
		}
		sb.WriteString(pad)
		sb.WriteString("</")
		sb.WriteString(e.name)
		sb.WriteString(">\n")
	case e.text != "":
		sb.WriteByte('>')
		sb.WriteString(escaper.Replace(e.text))
		sb.WriteString("</")
		sb.WriteString(e.name)
		sb.WriteString(">\n")
	default:
		sb.WriteString("/>\n")
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
