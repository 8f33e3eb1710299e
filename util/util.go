package util

import (
	"sync"

	"github.com/charmbracelet/harmonica"
)

// SpringParams identifies a spring look-up table.
type SpringParams struct {
	Length    int
	Frequency float64
	Damping   float64
}

// GenerateSpringLut samples a damped spring released from 0 towards 1 over
// length steps. The last entry is pinned to 1 so eased tweens land exactly on
// their target.
func GenerateSpringLut(p SpringParams) []float64 {
	if p.Length < 2 {
		return []float64{0, 1}
	}

	spring := harmonica.NewSpring(1.0/float64(p.Length-1)*springTimeScale, p.Frequency, p.Damping)
	lut := make([]float64, p.Length)
	pos, vel := 0.0, 0.0
	for i := 1; i < p.Length; i++ {
		pos, vel = spring.Update(pos, vel, 1.0)
		lut[i] = pos
	}
	lut[p.Length-1] = 1.0
	return lut
}

// The whole table spans this many seconds of spring time, long enough for an
// underdamped spring to settle before the pin at the end.
const springTimeScale = 2.0

// Memoizer caches spring look-up tables by their parameters.
type Memoizer struct {
	mu   sync.Mutex
	luts map[SpringParams][]float64
}

// GenerateSpringLutMemoized returns a cached table, generating it on first use.
func GenerateSpringLutMemoized(p SpringParams, m *Memoizer) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.luts == nil {
		m.luts = make(map[SpringParams][]float64)
	}
	if lut, ok := m.luts[p]; ok {
		return lut
	}

	lut := GenerateSpringLut(p)
	m.luts[p] = lut
	return lut
}

// SampleLut linearly interpolates a table at t in [0, 1]; t is clamped.
func SampleLut(lut []float64, t float64) float64 {
	if len(lut) == 0 {
		return t
	}
	if t <= 0 {
		return lut[0]
	}
	if t >= 1 {
		return lut[len(lut)-1]
	}

	pos := t * float64(len(lut)-1)
	i := int(pos)
	frac := pos - float64(i)
	return lut[i] + (lut[i+1]-lut[i])*frac
}
