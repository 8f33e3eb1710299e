package stream

import (
	"context"

	"github.com/matt-g-everett/fluidtx/tween"
)

// An Animation advances the pour state and reports every step. *tween.Driver
// is the production implementation.
type Animation interface {
	Run(ctx context.Context, fn func(tween.State)) error
}

// NewAnimation creates the driver for the configured pour.
func NewAnimation(a AnimationConfig) *tween.Driver {
	d := tween.NewDriver(PourTimeline(a), a.FrameRate)
	d.SetRepeat(a.Repeat)
	return d
}
