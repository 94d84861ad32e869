package hardware

import (
	"fmt"
	"time"
)

const (
	BH1750Addr = 0x23

	bh1750PowerOn      = 0x01
	bh1750Reset        = 0x07
	bh1750ContHighRes  = 0x10
	bh1750StepSettle   = 10 * time.Millisecond
	bh1750FirstMeasure = 180 * time.Millisecond
	bh1750LuxDivisor   = 1.2
)

// BH1750 is the ambient light meter, used in continuous high resolution mode.
type BH1750 struct {
	bus   Bus
	addr  byte
	sleep func(time.Duration)
}

func NewBH1750(bus Bus, addr byte) *BH1750 {
	if addr == 0 {
		addr = BH1750Addr
	}
	return &BH1750{bus: bus, addr: addr, sleep: time.Sleep}
}

// Init powers the device on, resets it and starts continuous measurement.
// It must succeed once before ReadLux returns meaningful values.
func (b *BH1750) Init() error {
	steps := []struct {
		op     byte
		settle time.Duration
	}{
		{bh1750PowerOn, bh1750StepSettle},
		{bh1750Reset, bh1750StepSettle},
		{bh1750ContHighRes, bh1750FirstMeasure},
	}
	for _, s := range steps {
		if err := b.bus.WriteBytes(b.addr, []byte{s.op}); err != nil {
			return fmt.Errorf("bh1750 init 0x%02X: %w", s.op, err)
		}
		b.sleep(s.settle)
	}
	return nil
}

func (b *BH1750) ReadLux() (float64, error) {
	d, err := b.bus.ReadBytes(b.addr, 2)
	if err != nil {
		return 0, fmt.Errorf("bh1750 read: %w", err)
	}
	if len(d) < 2 {
		return 0, fmt.Errorf("bh1750: %w (%d bytes)", ErrShortRead, len(d))
	}
	raw := uint16(d[0])<<8 | uint16(d[1])
	return float64(raw) / bh1750LuxDivisor, nil
}
