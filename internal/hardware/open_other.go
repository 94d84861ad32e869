//go:build !linux

package hardware

import (
	"errors"
	"io"
)

var errUnsupported = errors.New("hardware: gpio and i2c require linux")

func platformOpenBus() (Bus, io.Closer, error) {
	return nil, nil, errUnsupported
}

func platformOpenLine(string, int) (Line, error) {
	return nil, errUnsupported
}
