package sensor

import "errors"

var ErrCalibrationDegenerate = errors.New("calibration: dry and wet points are equal")

// Calibration holds the two raw points of a soil probe: Dry reads as 0 %,
// Wet as 100 %. Capacitive probes read lower when wet, so Dry > Wet is usual.
type Calibration struct {
	Dry uint16 `yaml:"dry_raw"`
	Wet uint16 `yaml:"wet_raw"`
}

func DefaultCalibration() Calibration {
	return Calibration{Dry: 58000, Wet: 55000}
}

func (c Calibration) Validate() error {
	if c.Dry == c.Wet {
		return ErrCalibrationDegenerate
	}
	return nil
}

func (c Calibration) Percent(raw uint16) int {
	return PercentFromRaw(raw, c.Dry, c.Wet)
}

// PercentFromRaw maps raw onto 0..100 between the dry and wet points,
// clamping raw into the calibrated range first and truncating the result.
// Equal points yield 0.
func PercentFromRaw(raw, dry, wet uint16) int {
	if dry == wet {
		return 0
	}
	lo, hi := wet, dry
	if lo > hi {
		lo, hi = hi, lo
	}
	if raw < lo {
		raw = lo
	}
	if raw > hi {
		raw = hi
	}
	var num uint32
	if dry > wet {
		num = uint32(dry) - uint32(raw)
	} else {
		num = uint32(raw) - uint32(dry)
	}
	return int(100 * num / (uint32(hi) - uint32(lo)))
}
