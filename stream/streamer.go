package stream

import (
	"context"
	"log"
	"sync"

	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/svg"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
)

// Snapshot is the latest rendered step.
type Snapshot struct {
	Seq         uint32  `json:"seq"`
	Percent     float64 `json:"percent"`
	Fluctuation float64 `json:"fluctuation"`
	Path        string  `json:"path"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Streamer plays the pour into an SVG document and streams every frame to a
// Publisher.
type Streamer struct {
	config    Config
	layout    *viewport.Layout
	container *viewport.Container
	renderer  *render.Renderer
	doc       *svg.Document
	path      render.PathElement
	publisher Publisher
	animation func() Animation
	restart   chan struct{}

	// renderMu serialises render, store and publish so a state is never
	// overwritten by an older one.
	renderMu sync.Mutex

	mu    sync.RWMutex
	seq   uint32
	state tween.State
	data  string
}

// NewStreamer creates an instance of a Streamer. A nil publisher renders
// without streaming.
func NewStreamer(config Config, publisher Publisher) (*Streamer, error) {
	style, err := config.RenderStyle()
	if err != nil {
		return nil, err
	}

	s := new(Streamer)
	s.config = config
	s.publisher = publisher
	s.restart = make(chan struct{}, 1)

	s.layout = viewport.NewLayout()
	s.container = viewport.NewContainer(config.Viewport.Width, config.Viewport.Height)
	s.layout.Add(config.Viewport.Container, s.container)

	s.renderer = render.NewRenderer(s.layout.Probe(config.Viewport.Container), style)
	s.doc = svg.NewDocument()
	s.path = s.renderer.Initialize(s.doc)
	s.animation = func() Animation { return NewAnimation(config.Animation) }

	initial := PourTimeline(config.Animation).Initial()
	s.update(initial)

	return s, nil
}

// Document returns the SVG document the fluid is drawn into.
func (s *Streamer) Document() *svg.Document {
	return s.doc
}

// Viewport returns the current viewport size.
func (s *Streamer) Viewport() viewport.Size {
	return s.container.Measure()
}

// Snapshot returns the most recent step.
func (s *Streamer) Snapshot() Snapshot {
	v := s.container.Measure()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Seq:         s.seq,
		Percent:     s.state.Percent,
		Fluctuation: s.state.Fluctuation,
		Path:        s.data,
		Width:       v.Width,
		Height:      v.Height,
	}
}

// Resize changes the viewport and redraws the current state against it.
func (s *Streamer) Resize(width, height float64) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	s.container.SetSize(width, height)
	v := s.container.Measure()
	s.doc.SetSize(v.Width, v.Height)

	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	s.draw(state)
}

// Restart replays the pour from the beginning.
func (s *Streamer) Restart() {
	select {
	case s.restart <- struct{}{}:
	default:
	}
}

func (s *Streamer) update(state tween.State) {
	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	s.draw(state)
}

// draw renders state, stores it and publishes the frame. Callers hold
// renderMu.
func (s *Streamer) draw(state tween.State) {
	d := s.renderer.Update(s.path, state.Percent, state.Fluctuation)

	s.mu.Lock()
	s.seq++
	s.state = state
	s.data = d
	frame := Frame{Seq: s.seq, State: state, Path: d}
	s.mu.Unlock()

	if s.publisher == nil {
		return
	}
	if err := publishBinary(s.publisher, s.config.Mqtt.Topics.Stream, &frame); err != nil {
		log.Printf("Frame %d not streamed: %v", frame.Seq, err)
	}
}

// Run plays the pour, then keeps the final frame until a restart is requested
// or ctx is done.
func (s *Streamer) Run(ctx context.Context) error {
	for {
		log.Println("Pouring")
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		animation := s.animation()
		go func() {
			done <- animation.Run(runCtx, s.update)
		}()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return ctx.Err()
		case <-s.restart:
			cancel()
			<-done
			continue
		case err := <-done:
			cancel()
			if err != nil {
				return err
			}
		}

		log.Println("Pour complete")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.restart:
		}
	}
}
