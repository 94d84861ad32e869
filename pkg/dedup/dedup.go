// Package dedup suppresses repeated identical reports within a time window.
package dedup

import (
	"sync"
	"time"
)

// Deduper remembers keys for ttl; a key seen again before it expires is suppressed.
type Deduper struct {
	mu         sync.Mutex
	ttl        time.Duration
	max        int
	seen       map[string]time.Time
	suppressed map[string]int
	now        func() time.Time
}

func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if max <= 0 {
		max = 256
	}
	return &Deduper{
		ttl:        ttl,
		max:        max,
		seen:       make(map[string]time.Time, max),
		suppressed: make(map[string]int),
		now:        time.Now,
	}
}

// ShouldReport returns true the first time key is seen in a window, and the
// number of reports of the same key suppressed since the previous one.
func (d *Deduper) ShouldReport(key string) (bool, int) {
	if key == "" {
		return true, 0
	}
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		d.suppressed[key]++
		return false, 0
	}
	skipped := d.suppressed[key]
	delete(d.suppressed, key)
	d.seen[key] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		for k, v := range d.seen {
			if now.After(v) {
				delete(d.seen, k)
				delete(d.suppressed, k)
			}
			if len(d.seen) <= d.max {
				break
			}
		}
	}
	return true, skipped
}

// Forget drops key so its next occurrence is reported immediately.
func (d *Deduper) Forget(key string) {
	d.mu.Lock()
	delete(d.seen, key)
	delete(d.suppressed, key)
	d.mu.Unlock()
}
