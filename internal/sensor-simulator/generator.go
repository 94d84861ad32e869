package sensor_simulator

import (
	"math"
	"sync"
	"time"
)

const (
	// gainPerSec: +2% per second while the valve is open, in [0..1].
	gainPerSec = 0.02

	// defaultSeed: starting moisture.
	defaultSeed = 0.30
)

// DataGenerator keeps the simulated soil moisture and moves it over time:
// it decays while irrigation is off and rises while it is on.
type DataGenerator struct {
	mu          sync.Mutex
	seeded      bool
	last        time.Time
	moisture    float64 // [0..1]
	decayPerSec float64
	now         func() time.Time
}

// NewDataGenerator returns a generator losing decayPerSec of moisture per second when dry.
func NewDataGenerator(decayPerSec float64) *DataGenerator {
	return &DataGenerator{
		decayPerSec: math.Max(0, decayPerSec),
		now:         time.Now,
	}
}

// Seed sets the starting moisture; without it the first Next starts at 30%.
func (g *DataGenerator) Seed(m float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moisture = clamp01(m)
	g.last = g.now()
	g.seeded = true
}

// Next advances the model to now and returns the moisture in [0..1].
func (g *DataGenerator) Next(irrigating bool) float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.seeded {
		g.moisture = defaultSeed
		g.last = now
		g.seeded = true
	}
	dt := now.Sub(g.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	if irrigating {
		g.moisture = clamp01(g.moisture + gainPerSec*dt)
	} else {
		g.moisture = clamp01(g.moisture - g.decayPerSec*dt)
	}
	g.last = now
	return g.moisture
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
