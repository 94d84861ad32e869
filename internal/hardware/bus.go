// Package hardware talks to the greenhouse peripherals: the shared I2C bus
// carrying the SHT30 probe, the BH1750 light meter and the ADS1115 soil ADC,
// and the three GPIO output lines.
package hardware

import (
	"errors"
	"time"
)

var (
	ErrBusTimeout = errors.New("i2c: transfer timed out")
	ErrBusBusy    = errors.New("i2c: previous transfer still pending")
	ErrShortRead  = errors.New("i2c: short read")
)

// Bus is the subset of the I2C bus used by the drivers.
type Bus interface {
	ReadBytes(addr byte, num int) ([]byte, error)
	WriteBytes(addr byte, value []byte) error
}

// TimeoutBus bounds every transfer. A transfer that outlives the timeout keeps
// the bus reserved until it returns; meanwhile other transfers fail with ErrBusBusy.
type TimeoutBus struct {
	bus     Bus
	timeout time.Duration
	busy    chan struct{}
}

func NewTimeoutBus(bus Bus, timeout time.Duration) *TimeoutBus {
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &TimeoutBus{bus: bus, timeout: timeout, busy: make(chan struct{}, 1)}
}

func (t *TimeoutBus) ReadBytes(addr byte, num int) ([]byte, error) {
	var out []byte
	err := t.do(func() error {
		b, err := t.bus.ReadBytes(addr, num)
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (t *TimeoutBus) WriteBytes(addr byte, value []byte) error {
	buf := append([]byte(nil), value...)
	return t.do(func() error { return t.bus.WriteBytes(addr, buf) })
}

func (t *TimeoutBus) do(fn func() error) error {
	select {
	case t.busy <- struct{}{}:
	default:
		return ErrBusBusy
	}
	done := make(chan error, 1)
	go func() {
		err := fn()
		<-t.busy
		done <- err
	}()
	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrBusTimeout
	}
}
