// Package geometry computes the bezier frame that bounds the fluid surface.
package geometry

import (
	"math"

	"github.com/matt-g-everett/fluidtx/viewport"
	"honnef.co/go/curve"
)

// DefaultFluctuation is the control point perturbation used when none is given.
const DefaultFluctuation = 0.1

// Frame is the start point, two control points and end point of the cubic
// bezier that forms the leading edge of the fluid.
type Frame struct {
	SP  curve.Point
	CP1 curve.Point
	CP2 curve.Point
	EP  curve.Point
}

// ComputeFrame maps a pour progress and fluctuation to a frame in viewport
// pixel space. Percent 0 puts the baseline at the bottom and 1 at the top.
// Nothing is clamped.
func ComputeFrame(percent, fluctuation float64, v viewport.Size) Frame {
	cpDX := v.Width * fluctuation
	cpDY := v.Height * fluctuation
	spY := v.Height - v.Height*percent

	return Frame{
		SP:  curve.Pt(0, spY),
		CP1: curve.Pt(cpDX, spY-cpDY),
		CP2: curve.Pt(v.Width-cpDX, spY+cpDY),
		EP:  curve.Pt(v.Width, spY),
	}
}

// IsFinite reports whether every coordinate is a finite number.
func (f Frame) IsFinite() bool {
	for _, pt := range [...]curve.Point{f.SP, f.CP1, f.CP2, f.EP} {
		if math.IsNaN(pt.X) || math.IsInf(pt.X, 0) || math.IsNaN(pt.Y) || math.IsInf(pt.Y, 0) {
			return false
		}
	}
	return true
}

// Region returns the closed area beneath the leading edge: the curve from SP
// to EP, then down to the bottom right corner, across to the bottom left
// corner and back to SP.
func Region(f Frame, v viewport.Size) curve.BezPath {
	var p curve.BezPath
	p.MoveTo(f.SP)
	p.CubicTo(f.CP1, f.CP2, f.EP)
	p.LineTo(curve.Pt(v.Width, v.Height))
	p.LineTo(curve.Pt(0, v.Height))
	p.ClosePath()
	return p
}
