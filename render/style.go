package render

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultFill is the colour of the fluid body.
	DefaultFill = "#3ea4f0"
	// DefaultStroke is the colour of the fluid's leading edge.
	DefaultStroke = "#416bdf"
	// DefaultStrokeWidth is the outline width in pixels.
	DefaultStrokeWidth = 2.0
)

// Style is the paint applied to the fluid path once, when it is created.
type Style struct {
	Fill        colorful.Color
	Stroke      colorful.Color
	StrokeWidth float64
}

// DefaultStyle returns the blue fluid style.
func DefaultStyle() Style {
	fill, _ := colorful.Hex(DefaultFill)
	stroke, _ := colorful.Hex(DefaultStroke)
	return Style{Fill: fill, Stroke: stroke, StrokeWidth: DefaultStrokeWidth}
}

// ParseStyle builds a Style from hex colour strings.
func ParseStyle(fill, stroke string, strokeWidth float64) (Style, error) {
	f, err := colorful.Hex(fill)
	if err != nil {
		return Style{}, fmt.Errorf("fill %q: %w", fill, err)
	}

	s, err := colorful.Hex(stroke)
	if err != nil {
		return Style{}, fmt.Errorf("stroke %q: %w", stroke, err)
	}

	if strokeWidth < 0 {
		return Style{}, fmt.Errorf("stroke width %v is negative", strokeWidth)
	}

	return Style{Fill: f, Stroke: s, StrokeWidth: strokeWidth}, nil
}

// FillHex returns the fill colour as #rrggbb.
func (s Style) FillHex() string {
	return s.Fill.Clamped().Hex()
}

// StrokeHex returns the stroke colour as #rrggbb.
func (s Style) StrokeHex() string {
	return s.Stroke.Clamped().Hex()
}
