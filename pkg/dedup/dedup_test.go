package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func newTestDeduper(ttl time.Duration) (*Deduper, *fakeNow) {
	fn := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	d := New(ttl, 4)
	d.now = fn.now
	return d, fn
}

func TestFirstReportPasses(t *testing.T) {
	d, _ := newTestDeduper(time.Second)
	ok, skipped := d.ShouldReport("soil: timeout")
	assert.True(t, ok)
	assert.Zero(t, skipped)
}

func TestRepeatSuppressedWithinTTL(t *testing.T) {
	d, fn := newTestDeduper(time.Second)
	d.ShouldReport("soil: timeout")
	fn.t = fn.t.Add(500 * time.Millisecond)
	ok, _ := d.ShouldReport("soil: timeout")
	assert.False(t, ok)
}

func TestReportAfterTTLCarriesSuppressedCount(t *testing.T) {
	d, fn := newTestDeduper(time.Second)
	d.ShouldReport("fan: bus busy")
	for i := 0; i < 3; i++ {
		fn.t = fn.t.Add(100 * time.Millisecond)
		d.ShouldReport("fan: bus busy")
	}
	fn.t = fn.t.Add(2 * time.Second)
	ok, skipped := d.ShouldReport("fan: bus busy")
	assert.True(t, ok)
	assert.Equal(t, 3, skipped)
}

func TestDistinctKeysIndependent(t *testing.T) {
	d, _ := newTestDeduper(time.Minute)
	d.ShouldReport("a")
	ok, _ := d.ShouldReport("b")
	assert.True(t, ok)
}

func TestForget(t *testing.T) {
	d, _ := newTestDeduper(time.Minute)
	d.ShouldReport("a")
	d.Forget("a")
	ok, _ := d.ShouldReport("a")
	assert.True(t, ok)
}

func TestEmptyKeyAlwaysReported(t *testing.T) {
	d, _ := newTestDeduper(time.Minute)
	d.ShouldReport("")
	ok, _ := d.ShouldReport("")
	assert.True(t, ok)
}
