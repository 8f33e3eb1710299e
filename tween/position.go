package tween

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Anchor is the point on the timeline a segment's position is relative to.
type Anchor int

const (
	// AtEnd places a segment at the current end of the timeline.
	AtEnd Anchor = iota
	// WithPrevious starts a segment together with the previously added one.
	WithPrevious
	// AfterPrevious starts a segment when the previously added one ends.
	AfterPrevious
	// Absolute places a segment at a fixed time from the timeline start.
	Absolute
)

// Position is an anchor plus an offset.
type Position struct {
	Anchor Anchor
	Offset time.Duration
}

// ParsePosition reads the GSAP position forms: "" or "+=1" (timeline end),
// "<" and ">" with an optional signed offset in seconds such as "<0.5" or
// ">-0.25", and a plain number of seconds for an absolute start.
func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{Anchor: AtEnd}, nil
	}

	var p Position
	rest := s
	switch {
	case strings.HasPrefix(s, "<"):
		p.Anchor, rest = WithPrevious, s[1:]
	case strings.HasPrefix(s, ">"):
		p.Anchor, rest = AfterPrevious, s[1:]
	case strings.HasPrefix(s, "+="):
		p.Anchor, rest = AtEnd, s[2:]
	case strings.HasPrefix(s, "-="):
		p.Anchor, rest = AtEnd, "-"+s[2:]
	default:
		p.Anchor = Absolute
	}

	rest = strings.TrimPrefix(rest, "+=")
	if rest == "" {
		return p, nil
	}

	secs, err := strconv.ParseFloat(rest, 64)
	if err != nil {
		return Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	p.Offset = seconds(secs)
	if p.Anchor == Absolute && p.Offset < 0 {
		return Position{}, fmt.Errorf("position %q is before the timeline start", s)
	}
	return p, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (p Position) String() string {
	off := strconv.FormatFloat(p.Offset.Seconds(), 'f', -1, 64)
	switch p.Anchor {
	case WithPrevious, AfterPrevious:
		mark := "<"
		if p.Anchor == AfterPrevious {
			mark = ">"
		}
		if p.Offset == 0 {
			return mark
		}
		return mark + off
	case Absolute:
		return off
	}
	if p.Offset == 0 {
		return ""
	}
	if p.Offset < 0 {
		return "-=" + off[1:]
	}
	return "+=" + off
}
