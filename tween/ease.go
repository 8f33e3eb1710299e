package tween

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fogleman/ease"
	"github.com/matt-g-everett/fluidtx/util"
)

// DefaultEase is used when a segment names no ease or an unknown one.
const DefaultEase = "power1.out"

// ErrUnknownEase is returned by ParseEase for names it cannot resolve.
var ErrUnknownEase = errors.New("unknown ease")

type family struct {
	in, out, inOut ease.Function
}

var families = map[string]family{
	"power1":  {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"quad":    {ease.InQuad, ease.OutQuad, ease.InOutQuad},
	"power2":  {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"cubic":   {ease.InCubic, ease.OutCubic, ease.InOutCubic},
	"power3":  {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"quart":   {ease.InQuart, ease.OutQuart, ease.InOutQuart},
	"power4":  {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"quint":   {ease.InQuint, ease.OutQuint, ease.InOutQuint},
	"sine":    {ease.InSine, ease.OutSine, ease.InOutSine},
	"expo":    {ease.InExpo, ease.OutExpo, ease.InOutExpo},
	"circ":    {ease.InCirc, ease.OutCirc, ease.InOutCirc},
	"back":    {ease.InBack, ease.OutBack, ease.InOutBack},
	"elastic": {ease.InElastic, ease.OutElastic, ease.InOutElastic},
	"bounce":  {ease.InBounce, ease.OutBounce, ease.InOutBounce},
}

var springs util.Memoizer

// SpringParams shapes the "spring" ease.
var SpringParams = util.SpringParams{Length: 240, Frequency: 8, Damping: 0.35}

// ParseEase resolves a GSAP style ease name such as "power2.inOut". A bare
// family name means its ".out" variant. "none" and "linear" are linear and
// "spring" is a damped spring that overshoots before settling.
func ParseEase(name string) (ease.Function, error) {
	name = strings.TrimSpace(name)
	switch name {
	case "":
		return Ease(DefaultEase), nil
	case "none", "linear":
		return ease.Linear, nil
	case "spring":
		lut := util.GenerateSpringLutMemoized(SpringParams, &springs)
		return func(t float64) float64 { return util.SampleLut(lut, t) }, nil
	}

	base, variant, found := strings.Cut(name, ".")
	f, ok := families[strings.ToLower(base)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEase, name)
	}
	if !found {
		return f.out, nil
	}

	switch strings.ToLower(variant) {
	case "in":
		return f.in, nil
	case "out":
		return f.out, nil
	case "inout":
		return f.inOut, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEase, name)
}

// Ease resolves name like ParseEase but falls back to DefaultEase.
func Ease(name string) ease.Function {
	fn, err := ParseEase(name)
	if err != nil {
		return ease.OutQuad
	}
	return fn
}
