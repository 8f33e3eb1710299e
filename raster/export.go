package raster

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/tween"
	"golang.org/x/sync/errgroup"
)

// FrameName returns the file name of the i-th exported frame.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%05d.png", i)
}

// Exporter writes a timeline out as a numbered PNG sequence.
type Exporter struct {
	renderer *render.Renderer
	canvas   *Canvas
	path     render.PathElement
	workers  int
}

// NewExporter creates an instance of an Exporter drawing with renderer.
func NewExporter(renderer *render.Renderer, workers int) *Exporter {
	e := new(Exporter)
	e.renderer = renderer
	e.canvas = NewCanvas()
	e.path = renderer.Initialize(e.canvas)
	if workers < 1 {
		workers = 1
	}
	e.workers = workers
	return e
}

// Export renders every tick in order and encodes the images concurrently.
// It returns the number of files written.
func (e *Exporter) Export(ctx context.Context, ticks []tween.Tick, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create %s: %w", dir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	written := 0
	for _, tick := range ticks {
		if gctx.Err() != nil {
			break
		}

		e.renderer.Update(e.path, tick.State.Percent, tick.State.Fluctuation)
		img := e.canvas.Render()

		name := filepath.Join(dir, FrameName(tick.Index))
		g.Go(func() error {
			return writePNG(name, img)
		})
		written++
	}

	if err := g.Wait(); err != nil {
		return written, err
	}
	return written, ctx.Err()
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return f.Close()
}
