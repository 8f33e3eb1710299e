package tween

import (
	"context"
	"math"
	"time"
)

// DefaultFrameRate is the tick rate used when none is configured.
const DefaultFrameRate = 30.0

// Driver plays a Timeline against the wall clock.
type Driver struct {
	timeline *Timeline
	interval time.Duration
	repeat   int
	now      func() time.Time
}

// NewDriver creates an instance of a Driver ticking frameRate times a second.
func NewDriver(tl *Timeline, frameRate float64) *Driver {
	d := new(Driver)
	d.timeline = tl
	d.interval = frameInterval(frameRate)
	d.now = time.Now
	return d
}

func frameInterval(frameRate float64) time.Duration {
	if frameRate <= 0 || math.IsNaN(frameRate) || math.IsInf(frameRate, 0) {
		frameRate = DefaultFrameRate
	}
	return time.Duration(float64(time.Second) / frameRate)
}

// SetRepeat sets how many extra times the timeline plays; -1 repeats forever.
func (d *Driver) SetRepeat(n int) {
	d.repeat = n
}

// Interval returns the time between ticks.
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Run calls fn with the sampled state on every tick until the timeline and
// its repeats finish, then once more with the final state. It returns early
// with the context's error if ctx is cancelled.
func (d *Driver) Run(ctx context.Context, fn func(State)) error {
	total := d.timeline.Duration()
	final := d.timeline.Sample(total)

	fn(d.timeline.Sample(0))
	if total <= 0 {
		fn(final)
		return nil
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	start := d.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		elapsed := d.now().Sub(start)
		iteration := int(elapsed / total)
		if d.repeat >= 0 && iteration > d.repeat {
			fn(final)
			return nil
		}
		fn(d.timeline.Sample(elapsed - time.Duration(iteration)*total))
	}
}

// Tick is one offline sample of a timeline.
type Tick struct {
	Index   int
	Elapsed time.Duration
	State   State
}

// Frames samples the timeline at frameRate from its start up to and
// including its end, without touching the clock.
func Frames(tl *Timeline, frameRate float64) []Tick {
	interval := frameInterval(frameRate)
	total := tl.Duration()
	n := int(total / interval)
	if time.Duration(n)*interval < total {
		n++
	}

	ticks := make([]Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		elapsed := time.Duration(i) * interval
		if elapsed > total {
			elapsed = total
		}
		ticks = append(ticks, Tick{Index: i, Elapsed: elapsed, State: tl.Sample(elapsed)})
	}
	return ticks
}
