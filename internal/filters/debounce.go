package filters

import (
	"sync"
	"time"
)

// DefaultDebounce is the idle window after the last keystroke before a
// search is committed.
const DefaultDebounce = 500 * time.Millisecond

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Debouncer runs fn once the triggers stop for a full window. Only the last
// trigger in a window counts.
type Debouncer struct {
	delay    time.Duration
	fn       func()
	schedule Scheduler

	mu      sync.Mutex
	gen     uint64
	stop    func() bool
	pending bool
}

// NewDebouncer creates a debouncer. A nil schedule uses real timers and a
// non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func(), schedule Scheduler) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if schedule == nil {
		schedule = afterFunc
	}
	return &Debouncer{delay: delay, fn: fn, schedule: schedule}
}

// Trigger restarts the window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		d.stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.stop = d.schedule(d.delay, func() { d.fire(gen) })
}

// Flush runs fn now if a trigger is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	d.cancelLocked()
	d.mu.Unlock()
	d.fn()
	return true
}

// Stop drops any pending trigger.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a trigger is waiting for its window to close.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.stop = nil
	d.mu.Unlock()
	d.fn()
}

func (d *Debouncer) cancelLocked() {
	if d.stop != nil {
		d.stop()
		d.stop = nil
	}
	d.gen++
	d.pending = false
}

// SearchBox couples the live search input to a debounced commit.
type SearchBox struct {
	ctrl *Controller
	deb  *Debouncer
}

// NewSearchBox creates a search box that commits c's search after delay.
func NewSearchBox(c *Controller, delay time.Duration, schedule Scheduler) *SearchBox {
	return &SearchBox{ctrl: c, deb: NewDebouncer(delay, c.CommitSearch, schedule)}
}

// Type records a keystroke.
func (s *SearchBox) Type(text string) {
	s.ctrl.SetSearchInput(text)
	s.deb.Trigger()
}

// Submit commits immediately, as the search button or Enter does.
func (s *SearchBox) Submit() {
	s.deb.Stop()
	s.ctrl.CommitSearch()
}

// Stop drops a pending commit.
func (s *SearchBox) Stop() {
	s.deb.Stop()
}
