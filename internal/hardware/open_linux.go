//go:build linux

package hardware

import (
	"io"

	"github.com/reef-pi/rpi/i2c"
	"github.com/warthog618/go-gpiocdev"
)

const consumer = "greenhouse"

func platformOpenBus() (Bus, io.Closer, error) {
	bus, err := i2c.New()
	if err != nil {
		return nil, nil, err
	}
	return bus, bus, nil
}

// platformOpenLine requests an output line driven high, which is "off" for the
// active-low relay board.
func platformOpenLine(chip string, offset int) (Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(1),
		gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, err
	}
	return l, nil
}
