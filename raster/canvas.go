// Package raster paints the fluid into images.
package raster

import (
	"image"
	"image/draw"
	"math"
	"slices"
	"sync"

	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/viewport"
	"golang.org/x/image/vector"
	"honnef.co/go/curve"
)

// Flattening and stroke tolerance in pixels.
const tolerance = 0.25

// Canvas is a raster Surface. Each path is filled, then outlined.
type Canvas struct {
	mu     sync.Mutex
	width  int
	height int
	paths  []*Path
}

// Path is a path element on a Canvas.
type Path struct {
	canvas *Canvas
	style  render.Style
	region curve.BezPath
}

// NewCanvas creates an empty Canvas.
func NewCanvas() *Canvas {
	return new(Canvas)
}

// SetSize sets the image bounds, rounding fractional sizes up.
func (c *Canvas) SetSize(width, height float64) {
	c.mu.Lock()
	c.width = pixels(width)
	c.height = pixels(height)
	c.mu.Unlock()
}

func pixels(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Ceil(v))
}

// Bounds returns the image rectangle Render produces.
func (c *Canvas) Bounds() image.Rectangle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return image.Rect(0, 0, c.width, c.height)
}

// AppendPath adds an empty path.
func (c *Canvas) AppendPath() render.PathElement {
	p := &Path{canvas: c}
	c.mu.Lock()
	c.paths = append(c.paths, p)
	c.mu.Unlock()
	return p
}

// SetStyle sets the fill and stroke paint.
func (p *Path) SetStyle(s render.Style) {
	p.canvas.mu.Lock()
	p.style = s
	p.canvas.mu.Unlock()
}

// SetPath is a no-op: the canvas draws from the frame given to SetFrame.
func (p *Path) SetPath(d string) {}

// SetFrame replaces the drawn region. A frame with non-finite points clears
// it so the image stays empty instead of filling with noise.
func (p *Path) SetFrame(f geometry.Frame, v viewport.Size) {
	var region curve.BezPath
	if f.IsFinite() {
		region = geometry.Region(f, v)
	}
	p.canvas.mu.Lock()
	p.region = region
	p.canvas.mu.Unlock()
}

type job struct {
	style render.Style
	path  curve.BezPath
}

// Render paints every path onto a fresh transparent image. Paths that have
// not received a frame yet are skipped.
func (c *Canvas) Render() *image.RGBA {
	c.mu.Lock()
	bounds := image.Rect(0, 0, c.width, c.height)
	jobs := make([]job, 0, len(c.paths))
	for _, p := range c.paths {
		if len(p.region) == 0 {
			continue
		}
		jobs = append(jobs, job{style: p.style, path: p.region})
	}
	c.mu.Unlock()

	img := image.NewRGBA(bounds)
	if bounds.Empty() {
		return img
	}

	for _, j := range jobs {
		fill(img, j.path, image.NewUniform(j.style.Fill.Clamped()))
		if j.style.StrokeWidth > 0 {
			outline := curve.StrokePath(j.path.Elements(), strokeStyle(j.style.StrokeWidth), curve.StrokeOpts{}, tolerance)
			fill(img, curve.BezPath(slices.Collect(outline)), image.NewUniform(j.style.Stroke.Clamped()))
		}
	}
	return img
}

// strokeStyle matches the SVG defaults: miter joins limited at 4, butt caps.
func strokeStyle(width float64) curve.Stroke {
	return curve.Stroke{
		Width:      width,
		Join:       curve.MiterJoin,
		MiterLimit: 4,
		StartCap:   curve.ButtCap,
		EndCap:     curve.ButtCap,
	}
}

// fill rasterises path with a non-zero rule and composites src over dst.
func fill(dst *image.RGBA, path curve.BezPath, src image.Image) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over

	open := false
	for _, el := range path {
		switch el.Kind {
		case curve.MoveToKind:
			if open {
				z.ClosePath()
			}
			z.MoveTo(float32(el.P0.X), float32(el.P0.Y))
			open = true
		case curve.LineToKind:
			z.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			z.QuadTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y))
		case curve.CubicToKind:
			z.CubeTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y), float32(el.P2.X), float32(el.P2.Y))
		case curve.ClosePathKind:
			z.ClosePath()
			open = false
		}
	}
	if open {
		z.ClosePath()
	}

	z.Draw(dst, b, src, image.Point{})
}
