package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentAtOrBelowWetIsFull(t *testing.T) {
	for _, raw := range []uint16{0, 30000, 54999, 55000} {
		assert.Equal(t, 100, PercentFromRaw(raw, 58000, 55000), "raw=%d", raw)
	}
}

func TestPercentAtOrAboveDryIsZero(t *testing.T) {
	for _, raw := range []uint16{58000, 58001, 60000, 65535} {
		assert.Equal(t, 0, PercentFromRaw(raw, 58000, 55000), "raw=%d", raw)
	}
}

func TestPercentMidpointTruncates(t *testing.T) {
	assert.Equal(t, 50, PercentFromRaw(56500, 58000, 55000))
	// 100*1/3000 truncates to 0
	assert.Equal(t, 0, PercentFromRaw(57999, 58000, 55000))
	assert.Equal(t, 99, PercentFromRaw(55001, 58000, 55000))
}

func TestPercentMonotonicNonIncreasing(t *testing.T) {
	prev := 101
	for raw := uint32(54000); raw <= 59000; raw += 7 {
		p := PercentFromRaw(uint16(raw), 58000, 55000)
		assert.LessOrEqual(t, p, prev, "raw=%d", raw)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
		prev = p
	}
}

func TestPercentDegenerateIsZero(t *testing.T) {
	for _, raw := range []uint16{0, 40000, 56000, 65535} {
		assert.Equal(t, 0, PercentFromRaw(raw, 56000, 56000))
	}
	assert.ErrorIs(t, Calibration{Dry: 1, Wet: 1}.Validate(), ErrCalibrationDegenerate)
	assert.NoError(t, DefaultCalibration().Validate())
}

func TestPercentInvertedProbe(t *testing.T) {
	// dry reads lower than wet
	assert.Equal(t, 0, PercentFromRaw(900, 1000, 2000))
	assert.Equal(t, 50, PercentFromRaw(1500, 1000, 2000))
	assert.Equal(t, 100, PercentFromRaw(2500, 1000, 2000))
}
