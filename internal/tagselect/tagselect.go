// Package tagselect models the tag multi-select input: filtering existing
// tags as the user types, selecting and removing them, and authoring new
// tags inline.
package tagselect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/id"
	"github.com/learninghub/learninghub/internal/util"
)

// Item is a selectable tag.
type Item struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsNew bool   `json:"isNew,omitempty"`
}

// FromTags converts loaded tags to items keyed by name.
func FromTags(tags []domain.Tag) []Item {
	out := make([]Item, len(tags))
	for i, t := range tags {
		out[i] = Item{ID: t.Name, Name: t.Name}
	}
	return out
}

// FromNames converts tag names to items keyed by name.
func FromNames(names []string) []Item {
	out := make([]Item, len(names))
	for i, n := range names {
		out[i] = Item{ID: n, Name: n}
	}
	return out
}

// NewTagID returns a temporary ID for a tag authored in the input.
func NewTagID(name string) string {
	return "new-" + util.Slugify(name) + "-" + id.Short()
}

// Input is the state of one tag input. Not safe for concurrent use.
type Input struct {
	items    []Item
	selected []Item
	input    string
	open     bool
	allowNew bool
	onChange func([]Item)
}

// Option configures an Input.
type Option func(*Input)

// AllowNew permits authoring tags that are not in the list.
func AllowNew() Option {
	return func(in *Input) { in.allowNew = true }
}

// WithSelected sets the initial selection.
func WithSelected(items []Item) Option {
	return func(in *Input) { in.selected = slices.Clone(items) }
}

// OnChange registers fn to receive the selection after every change.
func OnChange(fn func([]Item)) Option {
	return func(in *Input) { in.onChange = fn }
}

// New creates an input over the existing items.
func New(items []Item, opts ...Option) *Input {
	in := &Input{items: slices.Clone(items)}
	for _, o := range opts {
		o(in)
	}
	return in
}

// SetItems replaces the existing items, as when the tag list reloads.
func (in *Input) SetItems(items []Item) {
	in.items = slices.Clone(items)
}

// SetInput records the typed text and opens the candidate list.
func (in *Input) SetInput(text string) {
	in.input = text
	in.open = true
}

// Value returns the typed text.
func (in *Input) Value() string { return in.input }

// Open shows the candidate list, as focusing the input does.
func (in *Input) Open() { in.open = true }

// Close hides the candidate list and clears the input, as clicking
// outside does.
func (in *Input) Close() {
	in.open = false
	in.input = ""
}

// IsOpen reports whether the candidate list is shown.
func (in *Input) IsOpen() bool { return in.open }

// Candidates returns the items to offer for the current input. With an
// empty input every unselected item is offered. When new tags are allowed
// and nothing matches the input exactly, a synthetic "Add" item comes first.
func (in *Input) Candidates() []Item {
	term := strings.TrimSpace(in.input)
	var out []Item
	for _, it := range in.items {
		if in.isSelected(it.ID) {
			continue
		}
		if in.input == "" || util.ContainsFold(it.Name, term) {
			out = append(out, it)
		}
	}
	if in.input == "" || !in.allowNew || term == "" || in.exactMatch(term) {
		return out
	}
	add := Item{ID: NewTagID(term), Name: fmt.Sprintf("Add %q", term), IsNew: true}
	return append([]Item{add}, out...)
}

// Select adds item to the selection and clears the input. Selecting the
// synthetic item creates a new tag named after the input. It reports
// whether the selection changed.
func (in *Input) Select(item Item) bool {
	if item.IsNew {
		name := strings.TrimSpace(in.input)
		if name == "" || in.exactMatch(name) {
			in.input = ""
			return false
		}
		item = Item{ID: NewTagID(name), Name: name, IsNew: true}
	}
	in.input = ""
	if in.isSelected(item.ID) {
		return false
	}
	in.selected = append(in.selected, item)
	in.changed()
	return true
}

// Remove drops the selected item with the given ID.
func (in *Input) Remove(itemID string) bool {
	i := slices.IndexFunc(in.selected, func(it Item) bool { return it.ID == itemID })
	if i < 0 {
		return false
	}
	in.selected = slices.Delete(in.selected, i, i+1)
	in.changed()
	return true
}

// KeyBackspace removes the last selected item when the input is empty.
func (in *Input) KeyBackspace() bool {
	if in.input != "" || len(in.selected) == 0 {
		return false
	}
	return in.Remove(in.selected[len(in.selected)-1].ID)
}

// KeyEnter selects the first candidate while the list is open.
func (in *Input) KeyEnter() bool {
	if !in.open {
		return false
	}
	c := in.Candidates()
	if len(c) == 0 {
		return false
	}
	return in.Select(c[0])
}

// Selected returns the selection in order.
func (in *Input) Selected() []Item {
	return slices.Clone(in.selected)
}

// Names returns the names of the selection in order.
func (in *Input) Names() []string {
	out := make([]string, len(in.selected))
	for i, it := range in.selected {
		out[i] = it.Name
	}
	return out
}

func (in *Input) isSelected(itemID string) bool {
	return slices.ContainsFunc(in.selected, func(it Item) bool { return it.ID == itemID })
}

func (in *Input) exactMatch(term string) bool {
	match := func(it Item) bool { return util.EqualFold(it.Name, term) }
	return slices.ContainsFunc(in.items, match) || slices.ContainsFunc(in.selected, match)
}

func (in *Input) changed() {
	if in.onChange != nil {
		in.onChange(in.Selected())
	}
}
