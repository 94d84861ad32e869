// Package actuator drives the relay board. Lines are active-low: level 0
// energizes the output, level 1 releases it.
package actuator

import (
	"fmt"
	"sync"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

const (
	levelOn  = 0
	levelOff = 1
)

// Line is a digital output.
type Line interface {
	SetValue(value int) error
}

// ActuatorFault reports a failed write to an output line.
type ActuatorFault struct {
	Actuator entities.Actuator
	Level    int
	Err      error
}

func (e *ActuatorFault) Error() string {
	return fmt.Sprintf("actuator %s: set level %d: %v", e.Actuator, e.Level, e.Err)
}

func (e *ActuatorFault) Unwrap() error { return e.Err }

// Driver keeps the logical state of each output. The cached state changes only
// after the line write succeeds.
type Driver struct {
	mu    sync.Mutex
	lines map[entities.Actuator]Line
	on    map[entities.Actuator]bool
}

// NewDriver takes ownership of the lines and drives all of them off.
func NewDriver(irrigation, fertigation, fan Line) (*Driver, error) {
	d := &Driver{
		lines: map[entities.Actuator]Line{
			entities.Irrigation:  irrigation,
			entities.Fertigation: fertigation,
			entities.Fan:         fan,
		},
		on: map[entities.Actuator]bool{},
	}
	for a, l := range d.lines {
		if l == nil {
			return nil, fmt.Errorf("actuator %s: no line", a)
		}
	}
	if err := d.AllOff(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) Set(a entities.Actuator, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.lines[a]
	if !ok {
		return fmt.Errorf("actuator %q: unknown", a)
	}
	level := levelOff
	if on {
		level = levelOn
	}
	if err := l.SetValue(level); err != nil {
		return &ActuatorFault{Actuator: a, Level: level, Err: err}
	}
	d.on[a] = on
	return nil
}

func (d *Driver) SetIrrigation(on bool) error  { return d.Set(entities.Irrigation, on) }
func (d *Driver) SetFertigation(on bool) error { return d.Set(entities.Fertigation, on) }
func (d *Driver) SetFan(on bool) error         { return d.Set(entities.Fan, on) }

func (d *Driver) IsOn(a entities.Actuator) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on[a]
}

// AllOff releases every output and returns the first failure, if any.
func (d *Driver) AllOff() error {
	var first error
	for _, a := range entities.Actuators {
		if err := d.Set(a, false); err != nil && first == nil {
			first = err
		}
	}
	return first
}
