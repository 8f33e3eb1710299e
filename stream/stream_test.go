package stream

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/matt-g-everett/fluidtx/geometry"
	"github.com/matt-g-everett/fluidtx/render"
	"github.com/matt-g-everett/fluidtx/svg"
	"github.com/matt-g-everett/fluidtx/tween"
	"github.com/matt-g-everett/fluidtx/viewport"
)

func TestPourTimeline(t *testing.T) {
	tl := PourTimeline(DefaultConfig().Animation)

	if tl.Duration() != 3*time.Second {
		t.Errorf("expected a 3s pour, got %v", tl.Duration())
	}

	starts := []time.Duration{0, 0, time.Second, 2 * time.Second}
	for i, want := range starts {
		if got := tl.Start(i); got != want {
			t.Errorf("segment %d: expected start %v, got %v", i, want, got)
		}
	}

	tests := []struct {
		at   time.Duration
		want tween.State
	}{
		{0, tween.State{Percent: 0, Fluctuation: -0.1}},
		{time.Second, tween.State{Percent: 0.77 * (1 - 4.0/9), Fluctuation: 0.05}},
		{1500 * time.Millisecond, tween.State{Percent: 0.77 * 0.75, Fluctuation: 0.05 + (-0.02-0.05)*0.5}},
		{2 * time.Second, tween.State{Percent: 0.77 * (1 - 1.0/9), Fluctuation: -0.02}},
		{3 * time.Second, tween.State{Percent: 0.77, Fluctuation: 0}},
	}
	for _, tt := range tests {
		if d := cmp.Diff(tt.want, tl.Sample(tt.at), cmpopts.EquateApprox(0, 1e-9)); d != "" {
			t.Errorf("at %v: %s", tt.at, d)
		}
	}
}

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
viewport:
  width: 1000
  height: 500
animation:
  percent: 0.5
  repeat: -1
mqtt:
  url: tcp://localhost:1883
  topics:
    stream: fluid/frames
`))
	if err != nil {
		t.Fatal(err)
	}

	if c.Viewport.Width != 1000 || c.Viewport.Height != 500 || c.Viewport.Container != "viewport" {
		t.Errorf("unexpected viewport %+v", c.Viewport)
	}
	if c.Animation.Percent != 0.5 || c.Animation.Duration != 3 || c.Animation.Repeat != -1 {
		t.Errorf("unexpected animation %+v", c.Animation)
	}
	if c.Mqtt.Topics.Stream != "fluid/frames" || c.Mqtt.Topics.Control != "home/fluid/control" {
		t.Errorf("unexpected topics %+v", c.Mqtt.Topics)
	}
	if c.Style.Fill != "#3ea4f0" {
		t.Errorf("expected default fill, got %q", c.Style.Fill)
	}
}

func TestParseConfigRejects(t *testing.T) {
	tests := []string{
		"viewport: {width: -1}",
		"animation: {duration: -3}",
		"animation: {frameRate: 0}",
		"animation: {pourEase: wobble}",
		"animation: {repeat: -2}",
		"style: {fill: blue}",
		"export: {workers: 0}",
		"mqtt: {qos: 3}",
	}
	for _, doc := range tests {
		if _, err := ParseConfig([]byte(doc)); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", doc, err)
		}
	}

	if _, err := ParseConfig([]byte("viewport: [")); err == nil {
		t.Error("expected a decode error")
	}
}

func TestFrameBinary(t *testing.T) {
	in := Frame{Seq: 7, State: tween.State{Percent: 0.5, Fluctuation: -0.1}, Path: "M 0 250 Z"}
	data, err := in.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != frameHeaderLen+len(in.Path) {
		t.Errorf("unexpected length %d", len(data))
	}

	var out Frame
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(in, out); d != "" {
		t.Error(d)
	}

	if err := out.UnmarshalBinary(data[:len(data)-1]); err == nil {
		t.Error("expected an error for a truncated frame")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	frames []Frame
	fail   bool
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	var f Frame
	if err := f.UnmarshalBinary(payload); err != nil {
		return err
	}
	p.topics = append(p.topics, topic)
	p.frames = append(p.frames, f)
	return nil
}

func (p *recordingPublisher) last() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames[len(p.frames)-1]
}

type scriptedAnimation []tween.State

func (a scriptedAnimation) Run(ctx context.Context, fn func(tween.State)) error {
	for _, s := range a {
		fn(s)
	}
	return nil
}

func testConfig() Config {
	c := DefaultConfig()
	c.Viewport.Width = 1000
	c.Viewport.Height = 500
	return c
}

func TestStreamerPublishesFrames(t *testing.T) {
	pub := new(recordingPublisher)
	s, err := NewStreamer(testConfig(), pub)
	if err != nil {
		t.Fatal(err)
	}
	s.animation = func() Animation {
		return scriptedAnimation{{Percent: 0.25}, {Percent: 0.5, Fluctuation: 0.1}}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected the streamer to wait for ctx, got %v", err)
	}

	// Initial state plus two scripted steps.
	if len(pub.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(pub.frames))
	}
	for _, topic := range pub.topics {
		if topic != "home/fluid/stream" {
			t.Errorf("unexpected topic %q", topic)
		}
	}

	want := "M 0 250 C 100 200 900 300 1000 250 L 1000 500 L 0 500 Z"
	if got := pub.last(); got.Path != want || got.Seq != 3 {
		t.Errorf("unexpected last frame %+v", got)
	}

	snap := s.Snapshot()
	if snap.Path != want || snap.Percent != 0.5 || snap.Width != 1000 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestStreamerSurvivesPublishErrors(t *testing.T) {
	pub := &recordingPublisher{fail: true}
	s, err := NewStreamer(testConfig(), pub)
	if err != nil {
		t.Fatal(err)
	}
	s.update(tween.State{Percent: 1})
	if s.Snapshot().Percent != 1 {
		t.Error("expected rendering to continue when publishing fails")
	}
}

func TestStreamerRestart(t *testing.T) {
	s, err := NewStreamer(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	runs := 0
	s.animation = func() Animation {
		mu.Lock()
		runs++
		mu.Unlock()
		return scriptedAnimation{{Percent: 1}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := runs
		mu.Unlock()
		if n >= 2 {
			break
		}
		s.Restart()
		select {
		case <-deadline:
			t.Fatal("restart did not replay the pour")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestHandleControl(t *testing.T) {
	s, err := NewStreamer(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.update(tween.State{Percent: 0.5, Fluctuation: 0.1})

	if err := s.HandleControl([]byte(`{"type":"resize","width":500,"height":250}`)); err != nil {
		t.Fatal(err)
	}
	if w, h := s.Document().Size(); w != 500 || h != 250 {
		t.Errorf("expected document to follow resize, got %vx%v", w, h)
	}
	if got := s.Snapshot().Path; got != "M 0 125 C 50 100 450 150 500 125 L 500 250 L 0 250 Z" {
		t.Errorf("expected redraw after resize, got %q", got)
	}

	for _, bad := range []string{`{`, `{"type":"explode"}`, `{"type":"resize","width":-1}`} {
		if err := s.HandleControl([]byte(bad)); err == nil {
			t.Errorf("%s: expected an error", bad)
		}
	}

	if err := s.HandleControl([]byte(`{"type":"restart"}`)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-s.restart:
	default:
		t.Error("expected a pending restart")
	}
}

// gatedProbe blocks the first Measure after arm until release is closed.
type gatedProbe struct {
	inner   viewport.Probe
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (p *gatedProbe) Measure() viewport.Size {
	if p.armed.CompareAndSwap(true, false) {
		close(p.entered)
		<-p.release
	}
	return p.inner.Measure()
}

func TestResizeKeepsNewerState(t *testing.T) {
	s, err := NewStreamer(testConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.update(tween.State{Percent: 0.1})

	probe := &gatedProbe{inner: s.container, entered: make(chan struct{}), release: make(chan struct{})}
	s.renderer = render.NewRenderer(probe, render.DefaultStyle())
	probe.armed.Store(true)

	resized := make(chan struct{})
	go func() {
		s.Resize(800, 400)
		close(resized)
	}()
	<-probe.entered

	updated := make(chan struct{})
	go func() {
		s.update(tween.State{Percent: 0.77})
		close(updated)
	}()
	time.Sleep(20 * time.Millisecond)
	close(probe.release)
	<-resized
	<-updated

	v := viewport.Size{Width: 800, Height: 400}
	want := render.Describe(geometry.ComputeFrame(0.77, 0, v), v)
	snap := s.Snapshot()
	if snap.Percent != 0.77 || snap.Path != want {
		t.Errorf("expected the newer state to win, got %+v", snap)
	}
	if got := s.path.(*svg.Path).Data(); got != snap.Path {
		t.Errorf("document path %q does not match snapshot %q", got, snap.Path)
	}
}

func TestNewAnimation(t *testing.T) {
	a := DefaultConfig().Animation
	a.FrameRate = 60
	d := NewAnimation(a)
	if d.Interval() != time.Second/60 {
		t.Errorf("unexpected interval %v", d.Interval())
	}
	if math.Abs(a.DurationTime().Seconds()-3) > 1e-9 {
		t.Errorf("unexpected duration %v", a.DurationTime())
	}
}
