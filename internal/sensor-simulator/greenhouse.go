// Package sensor_simulator stands in for the greenhouse hardware on hosts
// without the I2C bus or GPIO lines.
package sensor_simulator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
)

const (
	channels      = 3
	tempMean      = 34.0
	tempSwing     = 4.0
	tempPeriod    = 2 * time.Minute
	fanCooling    = 3.0
	luxMean       = 450.0
	luxSwing      = 350.0
	luxPeriod     = 5 * time.Minute
	channelSpread = 0.05
)

// Line is an in-memory output line, idle high like the relay board.
type Line struct {
	mu    sync.Mutex
	level int
}

func NewLine() *Line { return &Line{level: 1} }

func (l *Line) SetValue(v int) error {
	l.mu.Lock()
	l.level = v
	l.mu.Unlock()
	return nil
}

func (l *Line) Value() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Line) Close() error { return nil }

// Greenhouse simulates the probes, the soil ADC and the three output lines.
// Soil dries unless the irrigation line is low; the fan line lowers the temperature.
type Greenhouse struct {
	gen   *DataGenerator
	cal   sensor.Calibration
	start time.Time
	now   func() time.Time

	Irrigation  *Line
	Fertigation *Line
	Fan         *Line
}

func NewGreenhouse(cal sensor.Calibration, decayPerSec float64) *Greenhouse {
	return &Greenhouse{
		gen:         NewDataGenerator(decayPerSec),
		cal:         cal,
		start:       time.Now(),
		now:         time.Now,
		Irrigation:  NewLine(),
		Fertigation: NewLine(),
		Fan:         NewLine(),
	}
}

func (g *Greenhouse) wave(period time.Duration) float64 {
	t := g.now().Sub(g.start).Seconds()
	return math.Sin(2 * math.Pi * t / period.Seconds())
}

// Read implements sensor.ClimateProbe.
func (g *Greenhouse) Read() (float64, float64, error) {
	t := tempMean + tempSwing*g.wave(tempPeriod)
	if g.Fan.Value() == 0 {
		t -= fanCooling
	}
	rh := math.Max(0, math.Min(100, 60-2*(t-30)))
	return t, rh, nil
}

func (g *Greenhouse) ReadLux() (float64, error) {
	return math.Max(0, luxMean+luxSwing*g.wave(luxPeriod)), nil
}

// ReadRaw implements sensor.SoilADC: moisture is mapped back onto the
// calibrated raw span, each channel slightly offset.
func (g *Greenhouse) ReadRaw(channel int) (uint16, error) {
	if channel < 0 || channel >= channels {
		return 0, fmt.Errorf("sim: no soil channel %d", channel)
	}
	m := g.gen.Next(g.Irrigation.Value() == 0)
	m = clamp01(m + channelSpread*float64(1-channel))
	dry, wet := float64(g.cal.Dry), float64(g.cal.Wet)
	return uint16(math.Round(dry - m*(dry-wet))), nil
}

// UseClock drives the simulation from now instead of the wall clock,
// restarting the waves and the soil model at now().
func (g *Greenhouse) UseClock(now func() time.Time) {
	g.gen.mu.Lock()
	g.gen.now = now
	g.gen.mu.Unlock()
	g.now = now
	g.start = now()
}

// Seed sets the starting soil moisture in [0..1].
func (g *Greenhouse) Seed(m float64) { g.gen.Seed(m) }
