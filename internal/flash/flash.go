// Package flash holds short-lived user notifications that report the outcome
// of reads and writes, and dismisses them after their display duration.
package flash

import (
	"slices"
	"sync"
	"time"

	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/id"
)

// Kind is the visual category of a notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// Display durations. Errors linger longer than confirmations.
const (
	DefaultDuration      = 4 * time.Second
	ErrorDuration        = 5 * time.Second
	QuerySuccessDuration = 3 * time.Second
)

// Default messages.
const (
	MsgQuerySuccess    = "Data loaded successfully"
	MsgQueryError      = "Failed to load data"
	MsgMutationSuccess = "Operation completed successfully"
	MsgMutationError   = "Operation failed"
)

// Notification is one visible message.
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// EventType says what happened to a notification.
type EventType string

// Event types delivered to subscribers.
const (
	EventShown     EventType = "shown"
	EventDismissed EventType = "dismissed"
)

// Event is delivered to subscribers on every change.
type Event struct {
	Type         EventType
	Notification Notification
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func realScheduler(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Center owns the visible notifications. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	timers   map[string]func() bool
	subs     map[int]func(Event)
	nextSub  int
	schedule Scheduler
	now      func() time.Time
}

// Option configures a Center.
type Option func(*Center)

// WithScheduler replaces the auto-dismiss timer, for tests.
func WithScheduler(s Scheduler) Option {
	return func(c *Center) { c.schedule = s }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

// NewCenter creates an empty center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		timers:   make(map[string]func() bool),
		subs:     make(map[int]func(Event)),
		schedule: realScheduler,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Show adds a notification and returns its ID. A zero duration keeps it
// until dismissed; a negative one uses DefaultDuration. An empty kind is info.
func (c *Center) Show(kind Kind, message string, d time.Duration) string {
	if kind == "" {
		kind = KindInfo
	}
	if d < 0 {
		d = DefaultDuration
	}
	n := Notification{
		ID:        id.MustGenerate(id.PrefixFlash),
		Kind:      kind,
		Message:   message,
		Duration:  d,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	c.items = append(c.items, n)
	if d > 0 {
		c.timers[n.ID] = c.schedule(d, func() { c.Dismiss(n.ID) })
	}
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, Event{Type: EventShown, Notification: n})
	return n.ID
}

// Success shows a success notification for DefaultDuration.
func (c *Center) Success(message string) string {
	return c.Show(KindSuccess, message, DefaultDuration)
}

// Error shows an error notification for ErrorDuration.
func (c *Center) Error(message string) string {
	return c.Show(KindError, message, ErrorDuration)
}

// Info shows an info notification for DefaultDuration.
func (c *Center) Info(message string) string {
	return c.Show(KindInfo, message, DefaultDuration)
}

// Warning shows a warning notification for DefaultDuration.
func (c *Center) Warning(message string) string {
	return c.Show(KindWarning, message, DefaultDuration)
}

// QuerySuccess reports a completed read.
func (c *Center) QuerySuccess(message string) string {
	return c.Show(KindSuccess, orDefault(message, MsgQuerySuccess), QuerySuccessDuration)
}

// QueryError reports a failed read: custom message, else the error's
// message, else MsgQueryError.
func (c *Center) QueryError(err error, custom string) string {
	return c.Show(KindError, pick(custom, err, MsgQueryError), ErrorDuration)
}

// MutationSuccess reports a completed write.
func (c *Center) MutationSuccess(message string) string {
	return c.Show(KindSuccess, orDefault(message, MsgMutationSuccess), DefaultDuration)
}

// MutationError reports a failed write: custom message, else the error's
// message, else MsgMutationError.
func (c *Center) MutationError(err error, custom string) string {
	return c.Show(KindError, pick(custom, err, MsgMutationError), ErrorDuration)
}

// Dismiss removes a notification. Unknown IDs are ignored.
func (c *Center) Dismiss(nid string) {
	c.mu.Lock()
	i := slices.IndexFunc(c.items, func(n Notification) bool { return n.ID == nid })
	if i < 0 {
		c.mu.Unlock()
		return
	}
	n := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	if stop, ok := c.timers[nid]; ok {
		stop()
		delete(c.timers, nid)
	}
	subs := c.subscribers()
	c.mu.Unlock()

	notify(subs, Event{Type: EventDismissed, Notification: n})
}

// Clear dismisses every notification.
func (c *Center) Clear() {
	for _, n := range c.List() {
		c.Dismiss(n.ID)
	}
}

// List returns the visible notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Subscribe registers fn for every change and returns a function that
// removes it. fn runs outside the center's lock.
func (c *Center) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sid := c.nextSub
	c.nextSub++
	c.subs[sid] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, sid)
	}
}

func (c *Center) subscribers() []func(Event) {
	out := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func pick(custom string, err error, fallback string) string {
	if custom != "" {
		return custom
	}
	if msg := errors.Message(err); msg != "" {
		return msg
	}
	return fallback
}
