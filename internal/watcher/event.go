package watcher

import "time"

// EventType represents the type of file system event
type EventType int

const (
	// EventModified is emitted when a watched file was written or created
	// and has stopped changing.
	EventModified EventType = iota
	// EventRemoved is emitted when a watched file is deleted or renamed away.
	EventRemoved
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a file system event
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}
