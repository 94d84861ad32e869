package hardware

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Line is a digital output line.
type Line interface {
	SetValue(value int) error
	Close() error
}

// Options describes where the peripherals are wired.
type Options struct {
	BusTimeout  time.Duration
	SHT30Addr   byte
	BH1750Addr  byte
	ADS1115Addr byte

	Chip            string
	IrrigationLine  int
	FertigationLine int
	FanLine         int

	MaxRetries int
}

// Devices bundles the opened peripherals.
type Devices struct {
	Climate *SHT30
	Light   *BH1750
	Soil    *ADS1115

	Irrigation  Line
	Fertigation Line
	Fan         Line

	closers []io.Closer
}

var (
	openBus  = platformOpenBus
	openLine = platformOpenLine
)

// Open acquires the bus and the output lines and initializes the light meter,
// retrying each step with exponential backoff.
func Open(opts Options) (*Devices, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	d := &Devices{}

	var raw Bus
	err := retry("open i2c bus", opts.MaxRetries, func() error {
		b, c, err := openBus()
		if err != nil {
			return err
		}
		raw = b
		if c != nil {
			d.closers = append(d.closers, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("i2c bus: %w", err)
	}
	bus := NewTimeoutBus(raw, opts.BusTimeout)
	d.Climate = NewSHT30(bus, opts.SHT30Addr)
	d.Light = NewBH1750(bus, opts.BH1750Addr)
	d.Soil = NewADS1115(bus, opts.ADS1115Addr)

	lines := []struct {
		name   string
		offset int
		dst    *Line
	}{
		{"irrigation", opts.IrrigationLine, &d.Irrigation},
		{"fertigation", opts.FertigationLine, &d.Fertigation},
		{"fan", opts.FanLine, &d.Fan},
	}
	for _, l := range lines {
		l := l
		err := retry("request "+l.name+" line", opts.MaxRetries, func() error {
			line, err := openLine(opts.Chip, l.offset)
			if err != nil {
				return err
			}
			*l.dst = line
			d.closers = append(d.closers, line)
			return nil
		})
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("%s line %s:%d: %w", l.name, opts.Chip, l.offset, err)
		}
	}

	if err := retry("init bh1750", opts.MaxRetries, d.Light.Init); err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("bh1750: %w", err)
	}
	return d, nil
}

// Close releases lines and bus in reverse order of acquisition.
func (d *Devices) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}

func retry(what string, maxRetries int, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	return backoff.Retry(func() error {
		if err := fn(); err != nil {
			log.Printf("hardware: %s failed: %v", what, err)
			return err
		}
		return nil
	}, backoff.WithMaxRetries(bo, uint64(maxRetries-1)))
}
