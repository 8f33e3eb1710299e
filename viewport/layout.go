package viewport

import "sync"

// Layout holds containers looked up by name.
type Layout struct {
	mu         sync.RWMutex
	containers map[string]*Container
}

// NewLayout creates an instance of a Layout.
func NewLayout() *Layout {
	l := new(Layout)
	l.containers = make(map[string]*Container)
	return l
}

// Add registers a container under name, replacing any previous one.
func (l *Layout) Add(name string, c *Container) {
	l.mu.Lock()
	l.containers[name] = c
	l.mu.Unlock()
}

// Lookup returns the named container, or nil if absent.
func (l *Layout) Lookup(name string) *Container {
	if l == nil {
		return nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.containers[name]
}

// Probe returns a Probe that resolves the named container on every measurement,
// so a container added or resized later is picked up.
func (l *Layout) Probe(name string) Probe {
	return namedProbe{layout: l, name: name}
}

type namedProbe struct {
	layout *Layout
	name   string
}

func (p namedProbe) Measure() Size {
	return p.layout.Lookup(p.name).Measure()
}
