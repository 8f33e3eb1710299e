package stream

import (
	"github.com/matt-g-everett/fluidtx/tween"
)

// PourTimeline builds the pour: the fluid rises to a.Percent while its edge
// first swings up past flat, then down by a smaller amount, then settles.
// The ripple phases each last a third of the pour duration and start with it.
func PourTimeline(a AnimationConfig) *tween.Timeline {
	duration := a.DurationTime()
	unit := duration / 3
	with := tween.Position{Anchor: tween.WithPrevious}
	after := tween.Position{Anchor: tween.AfterPrevious}

	tl := tween.NewTimeline(tween.State{Percent: 0, Fluctuation: -a.Fluctuation})
	tl.To(tween.Segment{Property: tween.Percent, Target: a.Percent, Duration: duration, Ease: a.PourEase}).
		To(tween.Segment{Property: tween.Fluctuation, Target: a.Fluctuation / 2, Duration: unit, Ease: a.RippleEase, Position: with}).
		To(tween.Segment{Property: tween.Fluctuation, Target: -(a.Fluctuation / 5), Duration: unit, Ease: a.RippleEase, Position: after}).
		To(tween.Segment{Property: tween.Fluctuation, Target: 0, Duration: unit, Ease: a.RippleEase, Position: after})
	return tl
}
