package filters

import (
	"net/url"
	"sync"
)

// URLState is the query string of the current location.
type URLState interface {
	Query() url.Values
	// Replace rewrites the query without adding a history entry.
	Replace(v url.Values)
	// Push rewrites the query and adds a history entry.
	Push(v url.Values)
}

// MemoryURL is an in-memory URLState. It counts writes so callers can
// check that synchronization never pushes.
type MemoryURL struct {
	mu       sync.Mutex
	values   url.Values
	replaces int
	pushes   int
}

// NewMemoryURL creates a MemoryURL holding v.
func NewMemoryURL(v url.Values) *MemoryURL {
	return &MemoryURL{values: cloneValues(v)}
}

// ParseMemoryURL creates a MemoryURL from a raw query string.
func ParseMemoryURL(rawQuery string) (*MemoryURL, error) {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return NewMemoryURL(v), nil
}

func (m *MemoryURL) Query() url.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneValues(m.values)
}

func (m *MemoryURL) Replace(v url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = cloneValues(v)
	m.replaces++
}

func (m *MemoryURL) Push(v url.Values) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = cloneValues(v)
	m.pushes++
}

// Replaces returns the number of Replace calls.
func (m *MemoryURL) Replaces() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaces
}

// Pushes returns the number of Push calls.
func (m *MemoryURL) Pushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pushes
}

// String returns the encoded query.
func (m *MemoryURL) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values.Encode()
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
