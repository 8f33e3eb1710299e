package viewport

import (
	"math"
	"sync"
)

// DefaultContainer is the name of the container the fluid is sized against.
const DefaultContainer = "viewport"

// Size is a snapshot of a container's pixel dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// A Probe measures the current size of a viewport.
type Probe interface {
	Measure() Size
}

// Fixed is a Probe that always reports the same size.
type Fixed Size

// Measure returns the fixed size.
func (f Fixed) Measure() Size {
	return Size(f).clamped()
}

func (s Size) clamped() Size {
	return Size{Width: clampDimension(s.Width), Height: clampDimension(s.Height)}
}

func clampDimension(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

// Container is a layout element whose size can change while it is being measured.
type Container struct {
	mu   sync.RWMutex
	size Size
}

// NewContainer creates an instance of a Container.
func NewContainer(width, height float64) *Container {
	c := new(Container)
	c.SetSize(width, height)
	return c
}

// SetSize changes the container dimensions. Negative or NaN values become 0.
func (c *Container) SetSize(width, height float64) {
	c.mu.Lock()
	c.size = Size{Width: width, Height: height}.clamped()
	c.mu.Unlock()
}

// Measure returns the current container size. A nil container measures as zero.
func (c *Container) Measure() Size {
	if c == nil {
		return Size{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}
