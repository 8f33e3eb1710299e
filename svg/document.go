// Package svg keeps an in-memory SVG document that the fluid is drawn into.
package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"sync"

	"github.com/matt-g-everett/fluidtx/render"
)

const namespace = "http://www.w3.org/2000/svg"

// Document is an SVG root element holding path children. It is safe for
// concurrent use; readers see whole updates only.
type Document struct {
	mu     sync.RWMutex
	width  float64
	height float64
	paths  []*Path
}

// Path is a path child of a Document.
type Path struct {
	doc         *Document
	fill        string
	stroke      string
	strokeWidth float64
	d           string
}

// NewDocument creates an empty Document.
func NewDocument() *Document {
	return new(Document)
}

// SetSize sets the width and height attributes.
func (doc *Document) SetSize(width, height float64) {
	doc.mu.Lock()
	doc.width = width
	doc.height = height
	doc.mu.Unlock()
}

// Size returns the width and height attributes.
func (doc *Document) Size() (float64, float64) {
	doc.mu.RLock()
	defer doc.mu.RUnlock()
	return doc.width, doc.height
}

// AppendPath adds a new, empty path to the document.
func (doc *Document) AppendPath() render.PathElement {
	return doc.NewPath()
}

// NewPath adds a new, empty path and returns it with its concrete type.
func (doc *Document) NewPath() *Path {
	p := &Path{doc: doc}
	doc.mu.Lock()
	doc.paths = append(doc.paths, p)
	doc.mu.Unlock()
	return p
}

// SetStyle sets fill, stroke and stroke-width.
func (p *Path) SetStyle(s render.Style) {
	p.doc.mu.Lock()
	p.fill = s.FillHex()
	p.stroke = s.StrokeHex()
	p.strokeWidth = s.StrokeWidth
	p.doc.mu.Unlock()
}

// SetPath replaces the path description.
func (p *Path) SetPath(d string) {
	p.doc.mu.Lock()
	p.d = d
	p.doc.mu.Unlock()
}

// Data returns the current path description.
func (p *Path) Data() string {
	p.doc.mu.RLock()
	defer p.doc.mu.RUnlock()
	return p.d
}

type xmlPath struct {
	XMLName     xml.Name `xml:"path"`
	Fill        string   `xml:"fill,attr,omitempty"`
	Stroke      string   `xml:"stroke,attr,omitempty"`
	StrokeWidth string   `xml:"stroke-width,attr,omitempty"`
	D           string   `xml:"d,attr"`
}

type xmlSVG struct {
	XMLName xml.Name  `xml:"svg"`
	Xmlns   string    `xml:"xmlns,attr"`
	Width   string    `xml:"width,attr"`
	Height  string    `xml:"height,attr"`
	Paths   []xmlPath `xml:"path"`
}

func (doc *Document) snapshot() xmlSVG {
	doc.mu.RLock()
	defer doc.mu.RUnlock()

	out := xmlSVG{
		Xmlns:  namespace,
		Width:  render.FormatNumber(doc.width),
		Height: render.FormatNumber(doc.height),
		Paths:  make([]xmlPath, 0, len(doc.paths)),
	}
	for _, p := range doc.paths {
		xp := xmlPath{Fill: p.fill, Stroke: p.stroke, D: p.d}
		if p.stroke != "" {
			xp.StrokeWidth = render.FormatNumber(p.strokeWidth)
		}
		out.Paths = append(out.Paths, xp)
	}
	return out
}

// MarshalSVG encodes the document as standalone SVG markup.
func (doc *Document) MarshalSVG() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the document as SVG markup to w.
func (doc *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := xml.NewEncoder(cw)
	if err := enc.Encode(doc.snapshot()); err != nil {
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
