package flash

import (
	"reflect"
	"sync"

	"github.com/learninghub/learninghub/internal/query"
)

// MsgReadSuccess is the success message of a read tracker, shown only when
// read successes are enabled.
const MsgReadSuccess = "Query completed successfully"

// MessageFunc builds a notification message from an error. An empty result
// falls through to the error's own message.
type MessageFunc func(err error) string

// Static returns a MessageFunc that always yields s.
func Static(s string) MessageFunc {
	return func(error) string { return s }
}

// Tracker turns a stream of observed statuses into notifications, emitting
// one per transition into error or success. Observing the same status and
// error again emits nothing.
type Tracker struct {
	center *Center

	errorMessage   MessageFunc
	errorFallback  string
	successMessage string
	showSuccess    bool

	mu         sync.Mutex
	prevStatus query.Status
	prevErr    error
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithErrorMessage sets a fixed error message.
func WithErrorMessage(msg string) TrackerOption {
	return func(t *Tracker) {
		if msg != "" {
			t.errorMessage = Static(msg)
		}
	}
}

// WithErrorMessageFunc derives the error message from the error.
func WithErrorMessageFunc(fn MessageFunc) TrackerOption {
	return func(t *Tracker) { t.errorMessage = fn }
}

// WithSuccessMessage overrides the success message.
func WithSuccessMessage(msg string) TrackerOption {
	return func(t *Tracker) {
		if msg != "" {
			t.successMessage = msg
		}
	}
}

// WithSuccess enables or disables success notifications.
func WithSuccess(show bool) TrackerOption {
	return func(t *Tracker) { t.showSuccess = show }
}

// NewReadTracker creates a tracker for a query. Success notifications are
// off unless enabled.
func NewReadTracker(c *Center, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		center:         c,
		errorFallback:  MsgQueryError,
		successMessage: MsgReadSuccess,
		prevStatus:     query.StatusIdle,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// NewWriteTracker creates a tracker for a mutation. Success notifications
// are on unless disabled.
func NewWriteTracker(c *Center, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		center:         c,
		errorFallback:  MsgMutationError,
		successMessage: MsgMutationSuccess,
		showSuccess:    true,
		prevStatus:     query.StatusIdle,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Observe records the current status and error. It returns the ID of the
// notification it emitted, or "" when the observation was not a transition.
func (t *Tracker) Observe(status query.Status, err error) string {
	t.mu.Lock()
	prevStatus, prevErr := t.prevStatus, t.prevErr
	t.prevStatus, t.prevErr = status, err
	t.mu.Unlock()

	switch status {
	case query.StatusError:
		if prevStatus == query.StatusError && sameError(prevErr, err) {
			return ""
		}
		return t.center.Show(KindError, t.errorText(err), ErrorDuration)
	case query.StatusSuccess:
		if prevStatus == query.StatusSuccess || !t.showSuccess {
			return ""
		}
		return t.center.Show(KindSuccess, t.successMessage, DefaultDuration)
	default:
		return ""
	}
}

// Reset forgets the previous observation.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.prevStatus, t.prevErr = query.StatusIdle, nil
}

func (t *Tracker) errorText(err error) string {
	custom := ""
	if t.errorMessage != nil {
		custom = t.errorMessage(err)
	}
	return pick(custom, err, t.errorFallback)
}

// sameError compares by identity. Errors of non-comparable dynamic types
// are never the same instance twice.
func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
