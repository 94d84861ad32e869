package hardware

import (
	"errors"
	"sync"
	"time"
)

type write struct {
	addr byte
	data []byte
}

// fakeBus records writes and answers reads from a per-address queue,
// falling back to the onRead hook.
type fakeBus struct {
	mu      sync.Mutex
	writes  []write
	reads   map[byte][][]byte
	onRead  func(addr byte, last []byte, n int) ([]byte, error)
	failW   error
	lastCmd map[byte][]byte
}

func newFakeBus() *fakeBus {
	return &fakeBus{reads: map[byte][][]byte{}, lastCmd: map[byte][]byte{}}
}

func (f *fakeBus) queue(addr byte, b ...[]byte) {
	f.reads[addr] = append(f.reads[addr], b...)
}

func (f *fakeBus) WriteBytes(addr byte, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failW != nil {
		return f.failW
	}
	cp := append([]byte(nil), value...)
	f.writes = append(f.writes, write{addr, cp})
	f.lastCmd[addr] = cp
	return nil
}

func (f *fakeBus) ReadBytes(addr byte, n int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q := f.reads[addr]; len(q) > 0 {
		f.reads[addr] = q[1:]
		return q[0], nil
	}
	if f.onRead != nil {
		return f.onRead(addr, f.lastCmd[addr], n)
	}
	return nil, errors.New("fake: nothing to read")
}

type fakeLine struct {
	name   string
	values []int
	closed *[]string
}

func (l *fakeLine) SetValue(v int) error {
	l.values = append(l.values, v)
	return nil
}

func (l *fakeLine) Close() error {
	*l.closed = append(*l.closed, l.name)
	return nil
}

type recordSleep struct{ slept []time.Duration }

func (r *recordSleep) sleep(d time.Duration) { r.slept = append(r.slept, d) }
