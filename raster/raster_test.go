package raster

import (
	"context"
	"errors"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
)

func TestRenderFillsBelowBaseline(t *testing.T) {
	r := render.NewRenderer(viewport.Fixed{Width: 100, Height: 100}, render.DefaultStyle())
	c := NewCanvas()
	el := r.Initialize(c)
	r.Update(el, 0.5, 0)

	img := c.Render()
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	want := color.RGBA{R: 0x3e, G: 0xa4, B: 0xf0, A: 0xff}
	if got := img.RGBAAt(50, 90); got != want {
		t.Errorf("expected fill colour below the surface, got %v", got)
	}
	if got := img.RGBAAt(50, 10); got.A != 0 {
		t.Errorf("expected transparency above the surface, got %v", got)
	}

	stroke := color.RGBA{R: 0x41, G: 0x6b, B: 0xdf, A: 0xff}
	if got := img.RGBAAt(50, 50); got != stroke {
		t.Errorf("expected stroke colour on the surface line, got %v", got)
	}
}

func TestRenderEmptyCanvas(t *testing.T) {
	r := render.NewRenderer(viewport.Fixed{}, render.DefaultStyle())
	c := NewCanvas()
	r.Update(r.Initialize(c), 0.5, 0.1)

	img := c.Render()
	if !img.Bounds().Empty() {
		t.Errorf("expected an empty image, got %v", img.Bounds())
	}
}

func TestRenderSkipsNonFiniteFrame(t *testing.T) {
	v := viewport.Size{Width: 10, Height: 10}
	c := NewCanvas()
	c.SetSize(v.Width, v.Height)
	el := c.AppendPath().(*Path)
	el.SetStyle(render.DefaultStyle())

	el.SetFrame(geometry.ComputeFrame(0.5, 0, v), v)
	if _, _, _, a := c.Render().At(5, 9).RGBA(); a == 0 {
		t.Fatal("expected a finite frame to be filled")
	}

	el.SetFrame(geometry.ComputeFrame(math.NaN(), 0, v), v)
	if _, _, _, a := c.Render().At(5, 9).RGBA(); a != 0 {
		t.Error("expected a non-finite frame to leave the image empty")
	}
}

func TestRenderIgnoresPathWithoutFrame(t *testing.T) {
	c := NewCanvas()
	c.SetSize(10, 10)
	c.AppendPath().SetPath("M 0 0 L 10 0 L 10 10 Z")
	if _, _, _, a := c.Render().At(9, 1).RGBA(); a != 0 {
		t.Error("expected nothing drawn before a frame arrives")
	}
}

func TestSetSizeRoundsUp(t *testing.T) {
	c := NewCanvas()
	c.SetSize(10.2, -3)
	if b := c.Bounds(); b.Dx() != 11 || b.Dy() != 0 {
		t.Errorf("unexpected bounds %v", b)
	}
}

func TestExport(t *testing.T) {
	tl := tween.NewTimeline(tween.State{})
	tl.To(tween.Segment{Property: tween.Percent, Target: 1, Duration: time.Second})
	ticks := tween.Frames(tl, 4)

	dir := filepath.Join(t.TempDir(), "frames")
	e := NewExporter(render.NewRenderer(viewport.Fixed{Width: 32, Height: 16}, render.DefaultStyle()), 2)
	n, err := e.Export(context.Background(), ticks, dir)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(ticks) {
		t.Errorf("expected %d frames, wrote %d", len(ticks), n)
	}

	f, err := os.Open(filepath.Join(dir, FrameName(len(ticks)-1)))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("unexpected frame bounds %v", b)
	}
	if _, _, _, a := img.At(16, 8).RGBA(); a == 0 {
		t.Error("expected the last frame to be filled")
	}
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tl := tween.NewTimeline(tween.State{})
	tl.To(tween.Segment{Property: tween.Percent, Target: 1, Duration: time.Second})

	e := NewExporter(render.NewRenderer(viewport.Fixed{Width: 8, Height: 8}, render.DefaultStyle()), 1)
	n, err := e.Export(ctx, tween.Frames(tl, 10), t.TempDir())
	if !errors.Is(err, context.Canceled) || n != 0 {
		t.Errorf("expected nothing written and context.Canceled, got %d, %v", n, err)
	}
}
