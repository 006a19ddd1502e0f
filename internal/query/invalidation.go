package query

import "github.com/learninghub/learninghub/internal/domain"

// MutationKind names a resource write.
type MutationKind string

// Resource writes.
const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Action is what an Effect does to matching cache entries.
type Action int

const (
	// ActionInvalidate marks entries stale so the next read refetches.
	ActionInvalidate Action = iota
	// ActionRemove drops entries entirely.
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "invalidate"
}

// Effect is one cache side effect of a write.
type Effect struct {
	Action Action
	Key    Key
}

// InvalidationsFor returns the cache effects of a resource write. Tag usage
// counts change with every write, so all three touch the tag list.
func InvalidationsFor(p domain.Product, kind MutationKind, id string) []Effect {
	switch kind {
	case MutationCreate:
		return []Effect{
			{ActionInvalidate, ResourceLists(p)},
			{ActionInvalidate, TagLists(p)},
		}
	case MutationUpdate:
		return []Effect{
			{ActionInvalidate, ResourceDetail(p, id)},
			{ActionInvalidate, ResourceLists(p)},
			{ActionInvalidate, TagLists(p)},
		}
	case MutationDelete:
		return []Effect{
			{ActionRemove, ResourceDetail(p, id)},
			{ActionInvalidate, ResourceLists(p)},
			{ActionInvalidate, TagLists(p)},
		}
	}
	return nil
}
