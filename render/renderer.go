// Package render turns pour progress into a filled path on a drawable surface.
package render

import (
	"strings"

	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/viewport"
)

// A Surface is a drawable area that can hold path elements.
type Surface interface {
	SetSize(width, height float64)
	AppendPath() PathElement
}

// A PathElement is a path on a Surface. The style is set once; the
// description is replaced on every update.
type PathElement interface {
	SetStyle(style Style)
	SetPath(d string)
}

// A FrameSink is a PathElement that draws from geometry rather than from the
// path description. Update hands it the frame alongside the description.
type FrameSink interface {
	SetFrame(f geometry.Frame, v viewport.Size)
}

// Renderer draws the fluid region for a given progress and fluctuation.
type Renderer struct {
	probe viewport.Probe
	style Style
}

// NewRenderer creates an instance of a Renderer measuring through probe.
func NewRenderer(probe viewport.Probe, style Style) *Renderer {
	r := new(Renderer)
	r.probe = probe
	r.style = style
	return r
}

// Initialize sizes the surface to the viewport and appends the fluid path.
func (r *Renderer) Initialize(surface Surface) PathElement {
	v := r.probe.Measure()
	surface.SetSize(v.Width, v.Height)

	el := surface.AppendPath()
	el.SetStyle(r.style)
	return el
}

// Update recomputes the fluid frame against the current viewport and writes
// the closed region description to el. Elements that are also FrameSinks
// receive the frame too. It holds no state between calls.
func (r *Renderer) Update(el PathElement, percent, fluctuation float64) string {
	v := r.probe.Measure()
	f := geometry.ComputeFrame(percent, fluctuation, v)
	d := Describe(f, v)
	el.SetPath(d)
	if sink, ok := el.(FrameSink); ok {
		sink.SetFrame(f, v)
	}
	return d
}

// Describe formats the region beneath f as a path description: the cubic
// from SP to EP, down to the bottom corners of v and closed.
func Describe(f geometry.Frame, v viewport.Size) string {
	var b strings.Builder
	b.Grow(96)

	write := func(cmd string, vals ...float64) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(cmd)
		for _, val := range vals {
			b.WriteByte(' ')
			b.WriteString(FormatNumber(val))
		}
	}

	write("M", f.SP.X, f.SP.Y)
	write("C", f.CP1.X, f.CP1.Y, f.CP2.X, f.CP2.Y, f.EP.X, f.EP.Y)
	write("L", v.Width, v.Height)
	write("L", 0, v.Height)
	write("Z")

	return b.String()
}
