package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestElapsedSimple(t *testing.T) {
	assert.Equal(t, uint32(5000), Elapsed(15000, 10000))
}

func TestElapsedAcrossWraparound(t *testing.T) {
	then := uint32(math.MaxUint32 - 99)
	now := uint32(400)
	assert.Equal(t, uint32(500), Elapsed(now, then))
}

func TestManualAdvanceWraps(t *testing.T) {
	c := NewManual(math.MaxUint32 - 999)
	start := c.NowMs()
	c.Advance(3 * time.Second)
	assert.Equal(t, uint32(2000), c.NowMs())
	assert.Equal(t, uint32(3000), Elapsed(c.NowMs(), start))
}

func TestMillis(t *testing.T) {
	assert.Equal(t, uint32(5000), Millis(5*time.Second))
	assert.Zero(t, Millis(-time.Second))
	assert.Equal(t, uint32(math.MaxUint32), Millis(100*24*time.Hour))
}

func TestMonotonicStartsNearZero(t *testing.T) {
	c := New()
	assert.Less(t, c.NowMs(), uint32(1000))
}
