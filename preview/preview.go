// Package preview shows the pour in a terminal.
package preview

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
	"honnef.co/go/curve"
)

// CellHeight is how many viewport pixels one terminal row covers. Cells are
// roughly twice as tall as they are wide.
const CellHeight = 2

// Depth at which the fill reaches its darkest shade, in rows.
const shadeDepth = 24

// An Animation advances the pour state and reports every step.
type Animation interface {
	Run(ctx context.Context, fn func(tween.State)) error
}

// Preview draws the fluid onto a tcell screen.
type Preview struct {
	screen    tcell.Screen
	container *viewport.Container
	renderer  *render.Renderer

	// drawMu serialises render and screen passes.
	drawMu sync.Mutex

	mu     sync.Mutex
	style  render.Style
	region curve.BezPath
	last   tween.State
}

// New creates an instance of a Preview sized to the screen.
func New(screen tcell.Screen, style render.Style) *Preview {
	p := new(Preview)
	p.screen = screen
	p.container = viewport.NewContainer(0, 0)
	p.Resize()
	p.renderer = render.NewRenderer(p.container, style)
	p.renderer.Initialize(p)
	return p
}

// SetSize is a no-op: the screen decides its own size.
func (p *Preview) SetSize(width, height float64) {}

// AppendPath returns the preview itself; it draws a single path.
func (p *Preview) AppendPath() render.PathElement {
	return p
}

// SetStyle sets the fill and edge colours.
func (p *Preview) SetStyle(s render.Style) {
	p.mu.Lock()
	p.style = s
	p.mu.Unlock()
}

// SetPath is a no-op: the preview draws from the frame given to SetFrame.
func (p *Preview) SetPath(d string) {}

// SetFrame replaces the drawn region. A non-finite frame clears it.
func (p *Preview) SetFrame(f geometry.Frame, v viewport.Size) {
	var region curve.BezPath
	if f.IsFinite() {
		region = geometry.Region(f, v)
	}
	p.mu.Lock()
	p.region = region
	p.mu.Unlock()
}

// Resize matches the viewport to the current screen size.
func (p *Preview) Resize() {
	w, h := p.screen.Size()
	p.container.SetSize(float64(w), float64(h*CellHeight))
}

// Viewport returns the size the fluid is computed against.
func (p *Preview) Viewport() viewport.Size {
	return p.container.Measure()
}

// Update renders state and redraws the screen.
func (p *Preview) Update(state tween.State) {
	p.drawMu.Lock()
	defer p.drawMu.Unlock()

	p.mu.Lock()
	p.last = state
	p.mu.Unlock()

	p.renderer.Update(p, state.Percent, state.Fluctuation)
	p.draw()
}

func cellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// draw paints every cell: inside the region with the fill colour, darkening
// with depth, the topmost fluid cell of each column with the edge colour.
// Callers hold drawMu.
func (p *Preview) draw() {
	p.mu.Lock()
	style := p.style
	region := p.region
	p.mu.Unlock()

	w, h := p.screen.Size()
	black := colorful.Color{}
	edge := tcell.StyleDefault.Background(cellColor(style.Stroke))

	p.screen.Clear()
	for x := 0; x < w; x++ {
		depth := -1
		for y := 0; y < h; y++ {
			if !inside(region, x, y) {
				depth = -1
				continue
			}
			depth++

			st := edge
			if depth > 0 {
				shade := float64(depth) / shadeDepth
				if shade > 1 {
					shade = 1
				}
				st = tcell.StyleDefault.Background(cellColor(style.Fill.BlendHcl(black, shade*0.5)))
			}
			p.screen.SetContent(x, y, ' ', nil, st)
		}
	}
	p.screen.Show()
}

func inside(region curve.BezPath, x, y int) bool {
	if len(region) == 0 {
		return false
	}
	pt := curve.Pt(float64(x)+0.5, (float64(y)+0.5)*CellHeight)
	return region.Winding(pt) != 0
}

// Run plays anim on the screen until it finishes and a key is pressed, or
// until ctx is done. Escape, q and Ctrl-C quit early.
func (p *Preview) Run(ctx context.Context, anim Animation) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go p.screen.ChannelEvents(events, quit)
	defer close(quit)

	done := make(chan error, 1)
	go func() {
		done <- anim.Run(ctx, p.Update)
	}()

	finished := false
	for {
		select {
		case <-ctx.Done():
			if !finished {
				<-done
			}
			return ctx.Err()
		case err := <-done:
			if err != nil {
				return err
			}
			finished = true
		case ev, ok := <-events:
			if !ok {
				// The screen has stopped; nothing more will arrive.
				events = nil
				continue
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				p.screen.Sync()
				p.Resize()
				p.redraw()
			case *tcell.EventKey:
				if finished || ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					cancel()
					if !finished {
						<-done
					}
					return nil
				}
			}
		}
	}
}

// redraw re-renders the last drawn state against the new viewport.
func (p *Preview) redraw() {
	p.mu.Lock()
	last := p.last
	p.mu.Unlock()
	p.Update(last)
}
