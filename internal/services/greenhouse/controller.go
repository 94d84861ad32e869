// Package greenhouse runs the control loop: one goroutine ticking the
// automation engine and then stepping the touch UI.
package greenhouse

import (
	"context"
	"log"
	"time"
)

// Ticker is one automation pass.
type Ticker interface {
	Tick()
}

// Stepper is one UI pass.
type Stepper interface {
	Start()
	Step()
}

// Shutdowner releases the outputs when the loop stops.
type Shutdowner interface {
	AllOff() error
}

type Controller struct {
	engine    Ticker
	presenter Stepper
	outputs   Shutdowner
	period    time.Duration
}

func NewController(engine Ticker, presenter Stepper, outputs Shutdowner, period time.Duration) *Controller {
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	return &Controller{engine: engine, presenter: presenter, outputs: outputs, period: period}
}

// Run blocks until ctx is cancelled, then switches every output off.
func (c *Controller) Run(ctx context.Context) error {
	c.presenter.Start()
	t := time.NewTicker(c.period)
	defer t.Stop()

	log.Printf("greenhouse: control loop running period=%s", c.period)
	for {
		select {
		case <-ctx.Done():
			if err := c.outputs.AllOff(); err != nil {
				log.Printf("greenhouse: outputs off on shutdown: %v", err)
				return err
			}
			log.Printf("greenhouse: stopped, outputs off")
			return nil
		case <-t.C:
			c.engine.Tick()
			c.presenter.Step()
		}
	}
}
