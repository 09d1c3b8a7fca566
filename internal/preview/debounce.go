package preview

import (
	"sync"
	"time"
)

// DefaultDebounceDelay is how long input must stay unchanged before a
// preview is requested.
const DefaultDebounceDelay = time.Second

// Debouncer delays work per key until triggers stop arriving for the
// configured delay. Every trigger takes a fresh generation from a counter
// shared by all keys, so a generation is never reused even after its key was
// released; work started by an older generation can detect it was superseded
// and drop its result. The work itself is never interrupted.
type Debouncer[K comparable] struct {
	delay time.Duration

	mu      sync.Mutex
	entries map[K]*debounceEntry
	seq     uint64
	stopped bool
	running sync.WaitGroup
}

type debounceEntry struct {
	timer   *time.Timer
	gen     uint64
	running bool // the timer of gen fired and its work has not returned
}

func NewDebouncer[K comparable](delay time.Duration) *Debouncer[K] {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer[K]{
		delay:   delay,
		entries: make(map[K]*debounceEntry),
	}
}

// Trigger (re)starts the timer for key. When it fires, work runs on its own
// goroutine with a function telling whether this trigger is still the latest
// one for key.
func (d *Debouncer[K]) Trigger(key K, work func(stillCurrent func() bool)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	e, ok := d.entries[key]
	if !ok {
		e = &debounceEntry{}
		d.entries[key] = e
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	d.seq++
	gen := d.seq
	e.gen = gen
	e.running = false

	e.timer = time.AfterFunc(d.delay, func() {
		if !d.begin(key, gen) {
			return
		}
		defer d.running.Done()

		work(func() bool { return d.isCurrent(key, gen) })
		d.release(key, gen)
	})
}

// Cancel drops any pending trigger for key and marks running work stale.
func (d *Debouncer[K]) Cancel(key K) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(d.entries, key)
	}
}

// Pending returns the number of keys with a pending or running trigger.
func (d *Debouncer[K]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Stop cancels every pending trigger and waits for work already running,
// which stays current and may still apply its result. Later triggers are
// ignored.
func (d *Debouncer[K]) Stop() {
	d.mu.Lock()
	d.stopped = true
	for k, e := range d.entries {
		if e.running {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(d.entries, k)
	}
	d.mu.Unlock()

	d.running.Wait()
}

// begin registers the fired timer of gen as running work. It fails once Stop
// has been called, so nothing is added to running after Stop starts waiting.
func (d *Debouncer[K]) begin(key K, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if e, ok := d.entries[key]; ok && e.gen == gen {
		e.running = true
	}
	d.running.Add(1)
	return true
}

func (d *Debouncer[K]) isCurrent(key K, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[key]
	return ok && e.gen == gen
}

// release forgets key once its latest work is done.
func (d *Debouncer[K]) release(key K, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok && e.gen == gen {
		delete(d.entries, key)
	}
}
