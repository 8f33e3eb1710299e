// Package tween advances the fluid's progress state along eased segments
// arranged on a timeline.
package tween

import (
	"sort"
	"time"

	"github.com/fogleman/ease"
)

// State is the value driven by a timeline.
type State struct {
	Percent     float64 `json:"percent"`
	Fluctuation float64 `json:"fluctuation"`
}

// Property selects a field of State.
type Property int

const (
	Percent Property = iota
	Fluctuation
)

func (p Property) String() string {
	if p == Fluctuation {
		return "fluctuation"
	}
	return "percent"
}

// Get reads the property from s.
func (s State) Get(p Property) float64 {
	if p == Fluctuation {
		return s.Fluctuation
	}
	return s.Percent
}

// With returns a copy of s with the property set to v.
func (s State) With(p Property, v float64) State {
	if p == Fluctuation {
		s.Fluctuation = v
	} else {
		s.Percent = v
	}
	return s
}

// Segment tweens one property to a target value.
type Segment struct {
	Property Property
	Target   float64
	Duration time.Duration
	Ease     string
	Position Position
}

type placed struct {
	Segment
	order int
	start time.Duration
	from  float64
	ease  ease.Function
}

func (p *placed) end() time.Duration {
	return p.start + p.Duration
}

func (p *placed) valueAt(t time.Duration) float64 {
	if p.Duration <= 0 || t >= p.end() {
		return p.Target
	}
	progress := p.ease(float64(t-p.start) / float64(p.Duration))
	return p.from + (p.Target-p.from)*progress
}

// Timeline is an ordered set of segments that starts from an initial state.
type Timeline struct {
	initial   State
	added     []*placed
	segments  []*placed
	prevStart time.Duration
	prevEnd   time.Duration
	end       time.Duration
}

// NewTimeline creates an instance of a Timeline starting at initial.
func NewTimeline(initial State) *Timeline {
	tl := new(Timeline)
	tl.initial = initial
	return tl
}

// Initial returns the state before any segment has started.
func (tl *Timeline) Initial() State {
	return tl.initial
}

// To appends a segment and returns the timeline for chaining.
func (tl *Timeline) To(seg Segment) *Timeline {
	var start time.Duration
	switch seg.Position.Anchor {
	case WithPrevious:
		start = tl.prevStart + seg.Position.Offset
	case AfterPrevious:
		start = tl.prevEnd + seg.Position.Offset
	case Absolute:
		start = seg.Position.Offset
	default:
		start = tl.end + seg.Position.Offset
	}
	if start < 0 {
		start = 0
	}

	p := &placed{Segment: seg, order: len(tl.segments), start: start, ease: Ease(seg.Ease)}
	tl.added = append(tl.added, p)
	tl.segments = append(tl.segments, p)

	tl.prevStart = p.start
	tl.prevEnd = p.end()
	if p.end() > tl.end {
		tl.end = p.end()
	}

	tl.resolve()
	return tl
}

// Len returns the number of segments.
func (tl *Timeline) Len() int {
	return len(tl.added)
}

// Start returns when the i-th added segment begins.
func (tl *Timeline) Start(i int) time.Duration {
	return tl.added[i].start
}

// Duration returns the time at which the last segment ends.
func (tl *Timeline) Duration() time.Duration {
	return tl.end
}

// resolve orders segments by start time and captures each segment's starting
// value: the value its property has when the segment begins.
func (tl *Timeline) resolve() {
	sort.SliceStable(tl.segments, func(i, j int) bool {
		a, b := tl.segments[i], tl.segments[j]
		if a.start != b.start {
			return a.start < b.start
		}
		return a.order < b.order
	})

	for i, seg := range tl.segments {
		seg.from = tl.valueAt(seg.Property, seg.start, tl.segments[:i])
	}
}

func (tl *Timeline) valueAt(prop Property, t time.Duration, segments []*placed) float64 {
	v := tl.initial.Get(prop)
	for _, seg := range segments {
		if seg.Property != prop || t < seg.start {
			continue
		}
		v = seg.valueAt(t)
	}
	return v
}

// Sample returns the state at elapsed time from the timeline start. Times
// before zero give the initial state and times past the end the final state.
func (tl *Timeline) Sample(elapsed time.Duration) State {
	if elapsed < 0 {
		elapsed = 0
	}

	s := tl.initial
	for _, prop := range [...]Property{Percent, Fluctuation} {
		s = s.With(prop, tl.valueAt(prop, elapsed, tl.segments))
	}
	return s
}
