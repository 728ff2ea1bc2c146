package assistant

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandSource picks an index in [0, n). Tests inject a fixed sequence.
type RandSource interface {
	Intn(n int) int
}

// lockedRand is a RandSource safe for concurrent webhook calls
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandSource returns a RandSource seeded with seed
func NewRandSource(seed uint64) RandSource {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

// DemoResponder answers from DemoRules and falls back to a random default.
// The default pick changes between calls.
type DemoResponder struct {
	rules    RuleTable
	defaults []string
	rand     RandSource
}

// NewDemoResponder creates a demo responder. A nil source is seeded from the clock.
func NewDemoResponder(src RandSource) *DemoResponder {
	if src == nil {
		src = NewRandSource(uint64(time.Now().UnixNano()))
	}
	return &DemoResponder{
		rules:    DemoRules,
		defaults: DemoDefaults,
		rand:     src,
	}
}

// Respond returns the demo reply for message; never empty
func (d *DemoResponder) Respond(message string) string {
	if reply, ok := d.rules.Match(message); ok {
		return reply
	}
	return d.defaults[d.rand.Intn(len(d.defaults))]
}
