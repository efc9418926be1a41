package sessions

import "sync"

// FeatureGate is an independent at-most-one-in-flight flag for a
// non-conversation feature such as image or video generation.
type FeatureGate struct {
	Name string

	mu   sync.Mutex
	busy bool
}

func NewFeatureGate(name string) *FeatureGate {
	return &FeatureGate{Name: name}
}

// TryAcquire marks the gate busy and reports true, or reports false when
// an operation is already in flight.
func (g *FeatureGate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false
	}
	g.busy = true
	return true
}

// Release reopens the gate.
func (g *FeatureGate) Release() {
	g.mu.Lock()
	g.busy = false
	g.mu.Unlock()
}

func (g *FeatureGate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Gates holds one FeatureGate per feature name, created on first use.
type Gates struct {
	mu    sync.Mutex
	gates map[string]*FeatureGate
}

func NewGates() *Gates {
	return &Gates{gates: make(map[string]*FeatureGate)}
}

func (g *Gates) Get(name string) *FeatureGate {
	g.mu.Lock()
	defer g.mu.Unlock()
	gate, ok := g.gates[name]
	if !ok {
		gate = NewFeatureGate(name)
		g.gates[name] = gate
	}
	return gate
}
