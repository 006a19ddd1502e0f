// Package filters owns the search, tag, type and page state of the resource
// list and keeps it consistent with the URL and the loaded tag list.
package filters

import (
	"slices"
	"strings"
	"sync"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/util"
)

// URL query parameter names mirrored by the controller.
const (
	ParamSearch = "search"
	ParamType   = "type"
	ParamTags   = "tags"
)

// State is a snapshot of the controller.
type State struct {
	SearchInput  string
	ActiveSearch string
	SelectedTags []string
	SelectedType domain.TypeFilter
	CurrentPage  int

	HasFetchedTags     bool
	HasInitializedTags bool
}

// Controller is the single source of truth for what the list shows.
// It is safe for concurrent use.
type Controller struct {
	url URLState

	mu         sync.Mutex
	st         State
	urlTags    []string
	urlHadTags bool
	subs       map[int]func(State)
	nextSub    int
}

// New creates a controller and applies the search and type found in u.
// Tags in u are applied once the tag list first loads.
func New(u URLState) *Controller {
	q := u.Query()
	search := q.Get(ParamSearch)
	urlTags := domain.SplitList(q.Get(ParamTags))
	return &Controller{
		url: u,
		st: State{
			SearchInput:  search,
			ActiveSearch: search,
			SelectedType: domain.ParseTypeFilter(q.Get(ParamType)),
			CurrentPage:  1,
		},
		urlTags:    urlTags,
		urlHadTags: len(urlTags) > 0,
		subs:       make(map[int]func(State)),
	}
}

// TagsLoaded receives the authoritative tag names. The first call applies
// the URL tags that exist in names; later calls drop selected tags that no
// longer exist.
func (c *Controller) TagsLoaded(names []string) {
	c.update(func(st *State) bool {
		changed := false
		if !st.HasFetchedTags {
			st.HasFetchedTags = true
			changed = true
		}
		var next []string
		if !st.HasInitializedTags {
			st.HasInitializedTags = true
			changed = true
			next = util.Intersect(dedupe(append(slices.Clone(c.urlTags), st.SelectedTags...)), names)
		} else {
			next = util.Intersect(st.SelectedTags, names)
		}
		if !slices.Equal(next, st.SelectedTags) {
			if !util.SameSet(next, st.SelectedTags) {
				st.CurrentPage = 1
			}
			st.SelectedTags = next
			changed = true
		}
		return changed
	})
}

// SetSearchInput updates the live input. It never changes the query.
func (c *Controller) SetSearchInput(text string) {
	c.update(func(st *State) bool {
		if st.SearchInput == text {
			return false
		}
		st.SearchInput = text
		return true
	})
}

// CommitSearch makes the live input the active search and returns to the
// first page.
func (c *Controller) CommitSearch() {
	c.update(func(st *State) bool {
		if st.ActiveSearch == st.SearchInput && st.CurrentPage == 1 {
			return false
		}
		st.ActiveSearch = st.SearchInput
		st.CurrentPage = 1
		return true
	})
}

// SetSelectedTags replaces the tag selection. Duplicates are dropped; a
// selection with the same members is a no-op.
func (c *Controller) SetSelectedTags(tags []string) {
	next := dedupe(tags)
	c.update(func(st *State) bool {
		if util.SameSet(next, st.SelectedTags) {
			return false
		}
		st.SelectedTags = next
		st.CurrentPage = 1
		return true
	})
}

// ToggleTag selects name, or deselects it if already selected.
func (c *Controller) ToggleTag(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.update(func(st *State) bool {
		if i := slices.Index(st.SelectedTags, name); i >= 0 {
			st.SelectedTags = slices.Delete(slices.Clone(st.SelectedTags), i, i+1)
		} else {
			st.SelectedTags = append(slices.Clone(st.SelectedTags), name)
		}
		st.CurrentPage = 1
		return true
	})
}

// SetSelectedType sets the type filter. Unknown values mean all types.
func (c *Controller) SetSelectedType(t domain.TypeFilter) {
	t = domain.ParseTypeFilter(string(t))
	c.update(func(st *State) bool {
		if st.SelectedType == t {
			return false
		}
		st.SelectedType = t
		st.CurrentPage = 1
		return true
	})
}

// SetCurrentPage moves to page n. Pages below 1 clamp to 1.
func (c *Controller) SetCurrentPage(n int) {
	n = max(n, 1)
	c.update(func(st *State) bool {
		if st.CurrentPage == n {
			return false
		}
		st.CurrentPage = n
		return true
	})
}

// NextPage moves one page forward.
func (c *Controller) NextPage() {
	c.SetCurrentPage(c.State().CurrentPage + 1)
}

// PrevPage moves one page back, stopping at 1.
func (c *Controller) PrevPage() {
	c.SetCurrentPage(c.State().CurrentPage - 1)
}

// ClearFilters resets search, tags, type and page in one update.
func (c *Controller) ClearFilters() {
	c.update(func(st *State) bool {
		if st.SearchInput == "" && st.ActiveSearch == "" && len(st.SelectedTags) == 0 &&
			st.SelectedType == domain.TypeAll && st.CurrentPage == 1 {
			return false
		}
		st.SearchInput = ""
		st.ActiveSearch = ""
		st.SelectedTags = nil
		st.SelectedType = domain.TypeAll
		st.CurrentPage = 1
		return true
	})
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// QueryParams projects the state onto list request parameters.
func (c *Controller) QueryParams() domain.QueryParams {
	return ParamsFor(c.State())
}

// HasActiveFilters reports whether any filter differs from its default.
func (c *Controller) HasActiveFilters() bool {
	st := c.State()
	return st.ActiveSearch != "" || st.SelectedType != domain.TypeAll || len(st.SelectedTags) > 0
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn runs outside the controller's lock.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
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

// ParamsFor projects st onto list request parameters. Page 1 carries no
// cursor or limit.
func ParamsFor(st State) domain.QueryParams {
	p := domain.QueryParams{
		Search: st.ActiveSearch,
		Type:   st.SelectedType,
		Tags:   slices.Clone(st.SelectedTags),
	}
	if st.CurrentPage > 1 {
		p.Cursor = domain.OffsetCursor((st.CurrentPage - 1) * domain.PageSize)
		p.Limit = domain.PageSize
	}
	return p
}

// update applies fn under the lock and, when fn reports a change, syncs
// the URL and notifies subscribers.
func (c *Controller) update(fn func(st *State) bool) {
	c.mu.Lock()
	if !fn(&c.st) {
		c.mu.Unlock()
		return
	}
	c.syncURL()
	st := c.snapshot()
	subs := make([]func(State), 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		s(st)
	}
}

// syncURL mirrors the active filters into the URL. Until the URL tags have
// been applied it stays away, so a tag selection is never erased early.
// Caller holds c.mu.
func (c *Controller) syncURL() {
	if !c.st.HasInitializedTags && c.urlHadTags {
		return
	}
	cur := c.url.Query()
	next := cloneValues(cur)
	next.Del(ParamSearch)
	next.Del(ParamType)
	next.Del(ParamTags)
	if c.st.ActiveSearch != "" {
		next.Set(ParamSearch, c.st.ActiveSearch)
	}
	if c.st.SelectedType != domain.TypeAll {
		next.Set(ParamType, string(c.st.SelectedType))
	}
	if len(c.st.SelectedTags) > 0 {
		next.Set(ParamTags, strings.Join(c.st.SelectedTags, ","))
	}
	if next.Encode() == cur.Encode() {
		return
	}
	c.url.Replace(next)
}

func (c *Controller) snapshot() State {
	st := c.st
	st.SelectedTags = slices.Clone(c.st.SelectedTags)
	return st
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
