package filters

import (
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learninghub/learninghub/internal/domain"
)

func newController(t *testing.T, rawQuery string) (*Controller, *MemoryURL) {
	t.Helper()
	u, err := ParseMemoryURL(rawQuery)
	require.NoError(t, err)
	return New(u), u
}

func TestNew_ReadsSearchAndType(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		search  string
		typ     domain.TypeFilter
		hasTags bool
	}{
		{"empty", "", "", domain.TypeAll, false},
		{"search and type", "search=go&type=video", "go", domain.TypeFilter("video"), false},
		{"invalid type", "type=podcast", "", domain.TypeAll, false},
		{"tags deferred", "tags=a,b", "", domain.TypeAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, tt.query)
			st := c.State()
			assert.Equal(t, tt.search, st.SearchInput)
			assert.Equal(t, tt.search, st.ActiveSearch)
			assert.Equal(t, tt.typ, st.SelectedType)
			assert.Equal(t, 1, st.CurrentPage)
			assert.Empty(t, st.SelectedTags)
			assert.False(t, st.HasFetchedTags)
			assert.Equal(t, tt.hasTags, c.urlHadTags)
		})
	}
}

func TestTagsLoaded_AppliesURLTagsOnce(t *testing.T) {
	c, u := newController(t, "tags=go,missing,react")

	c.TagsLoaded([]string{"go", "react", "vue"})
	st := c.State()
	assert.True(t, st.HasFetchedTags)
	assert.True(t, st.HasInitializedTags)
	assert.Equal(t, []string{"go", "react"}, st.SelectedTags)
	assert.Equal(t, "tags=go%2Creact", u.String())
	assert.Equal(t, 0, u.Pushes())
}

func TestTagsLoaded_PrunesVanishedTags(t *testing.T) {
	c, _ := newController(t, "")
	c.TagsLoaded([]string{"a", "b", "c"})
	c.SetSelectedTags([]string{"a", "b"})
	c.SetCurrentPage(3)

	c.TagsLoaded([]string{"b", "c"})

	st := c.State()
	assert.Equal(t, []string{"b"}, st.SelectedTags)
	assert.Equal(t, 1, st.CurrentPage)
}

func TestTagsLoaded_UnchangedListKeepsPage(t *testing.T) {
	c, _ := newController(t, "")
	c.TagsLoaded([]string{"a"})
	c.SetSelectedTags([]string{"a"})
	c.SetCurrentPage(2)

	c.TagsLoaded([]string{"a", "z"})
	assert.Equal(t, 2, c.State().CurrentPage)
}

func TestURLSync_WaitsForTagsWhenURLHasTags(t *testing.T) {
	c, u := newController(t, "tags=go")

	c.SetSearchInput("rust")
	c.CommitSearch()
	assert.Equal(t, 0, u.Replaces(), "must not erase tags before the tag list loads")
	assert.Equal(t, "tags=go", u.String())

	c.TagsLoaded([]string{"go"})
	assert.Equal(t, 1, u.Replaces())
	assert.Equal(t, url.Values{"search": {"rust"}, "tags": {"go"}}, u.Query())
}

func TestURLSync_ImmediateWhenURLHasNoTags(t *testing.T) {
	c, u := newController(t, "")

	c.SetSelectedType("pdf")
	assert.Equal(t, "type=pdf", u.String())

	c.SetSelectedType(domain.TypeAll)
	assert.Equal(t, "", u.String())
	assert.Equal(t, 2, u.Replaces())
	assert.Equal(t, 0, u.Pushes())
}

func TestURLSync_KeepsForeignParamsAndSkipsPage(t *testing.T) {
	c, u := newController(t, "page=2&view=grid")
	c.SetCurrentPage(5)
	assert.Equal(t, 0, u.Replaces(), "pagination is not mirrored")

	c.SetSelectedType("article")
	assert.Equal(t, url.Values{"page": {"2"}, "view": {"grid"}, "type": {"article"}}, u.Query())
}

func TestSetSearchInput_DoesNotChangeQuery(t *testing.T) {
	c, u := newController(t, "")
	before := c.QueryParams()

	c.SetSearchInput("typing")

	assert.Equal(t, before, c.QueryParams())
	assert.Equal(t, "typing", c.State().SearchInput)
	assert.Equal(t, 0, u.Replaces())
}

func TestFilterChangesResetPage(t *testing.T) {
	tests := []struct {
		name   string
		change func(c *Controller)
	}{
		{"commit search", func(c *Controller) { c.SetSearchInput("x"); c.CommitSearch() }},
		{"commit same search", func(c *Controller) { c.CommitSearch() }},
		{"set tags", func(c *Controller) { c.SetSelectedTags([]string{"a"}) }},
		{"toggle tag", func(c *Controller) { c.ToggleTag("a") }},
		{"set type", func(c *Controller) { c.SetSelectedType("video") }},
		{"clear filters", func(c *Controller) { c.ClearFilters() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, "")
			c.TagsLoaded([]string{"a"})
			c.SetCurrentPage(4)

			tt.change(c)
			assert.Equal(t, 1, c.State().CurrentPage)
		})
	}
}

func TestNoOpChangesKeepPage(t *testing.T) {
	c, _ := newController(t, "type=video")
	c.TagsLoaded([]string{"a", "b"})
	c.SetSelectedTags([]string{"a", "b"})
	c.SetCurrentPage(3)

	c.SetSelectedType("video")
	c.SetSelectedTags([]string{"b", "a"})

	assert.Equal(t, 3, c.State().CurrentPage)
	assert.Equal(t, []string{"a", "b"}, c.State().SelectedTags)
}

func TestPagination(t *testing.T) {
	c, _ := newController(t, "")

	c.SetCurrentPage(0)
	assert.Equal(t, 1, c.State().CurrentPage)
	c.SetCurrentPage(-4)
	assert.Equal(t, 1, c.State().CurrentPage)

	c.PrevPage()
	assert.Equal(t, 1, c.State().CurrentPage)
	c.NextPage()
	c.NextPage()
	assert.Equal(t, 3, c.State().CurrentPage)
	c.PrevPage()
	assert.Equal(t, 2, c.State().CurrentPage)
}

func TestQueryParams(t *testing.T) {
	c, _ := newController(t, "search=go&type=pdf")
	c.TagsLoaded([]string{"a", "b"})
	c.SetSelectedTags([]string{"a", "b"})

	p := c.QueryParams()
	assert.Equal(t, url.Values{"search": {"go"}, "type": {"pdf"}, "tags": {"a,b"}}, p.Values())

	c.SetCurrentPage(3)
	v := c.QueryParams().Values()
	assert.Equal(t, "40", v.Get("cursor"))
	assert.Equal(t, "20", v.Get("limit"))

	c.SetCurrentPage(1)
	v = c.QueryParams().Values()
	assert.False(t, v.Has("cursor"))
	assert.False(t, v.Has("limit"))
}

func TestHasActiveFilters(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Controller)
		want  bool
	}{
		{"defaults", func(*Controller) {}, false},
		{"uncommitted input", func(c *Controller) { c.SetSearchInput("x") }, false},
		{"search", func(c *Controller) { c.SetSearchInput("x"); c.CommitSearch() }, true},
		{"type", func(c *Controller) { c.SetSelectedType("article") }, true},
		{"tag", func(c *Controller) { c.ToggleTag("a") }, true},
		{"page only", func(c *Controller) { c.SetCurrentPage(2) }, false},
		{"cleared", func(c *Controller) { c.ToggleTag("a"); c.ClearFilters() }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newController(t, "")
			tt.setup(c)
			assert.Equal(t, tt.want, c.HasActiveFilters())
		})
	}
}

func TestClearFilters_AtomicAndIdempotent(t *testing.T) {
	c, u := newController(t, "search=go&type=video")
	c.TagsLoaded([]string{"a"})
	c.ToggleTag("a")
	c.SetCurrentPage(2)

	var notes int
	c.Subscribe(func(State) { notes++ })
	replaces := u.Replaces()

	c.ClearFilters()
	first := c.State()
	c.ClearFilters()

	assert.Equal(t, 1, notes)
	assert.Equal(t, replaces+1, u.Replaces())
	assert.Equal(t, first, c.State())
	assert.Equal(t, "", u.String())
}

func TestToggleTag(t *testing.T) {
	c, _ := newController(t, "")
	c.ToggleTag("a")
	c.ToggleTag("b")
	assert.Equal(t, []string{"a", "b"}, c.State().SelectedTags)
	c.ToggleTag("a")
	assert.Equal(t, []string{"b"}, c.State().SelectedTags)
	c.ToggleTag("  ")
	assert.Equal(t, []string{"b"}, c.State().SelectedTags)
}

func TestURLRoundTrip(t *testing.T) {
	c, u := newController(t, "")
	c.TagsLoaded([]string{"go", "react"})
	c.SetSearchInput("hooks")
	c.CommitSearch()
	c.SetSelectedType("article")
	c.SetSelectedTags([]string{"react", "go"})

	restored := New(NewMemoryURL(u.Query()))
	restored.TagsLoaded([]string{"go", "react"})

	want, got := c.State(), restored.State()
	assert.Equal(t, want.ActiveSearch, got.ActiveSearch)
	assert.Equal(t, want.SelectedType, got.SelectedType)
	assert.Equal(t, want.SelectedTags, got.SelectedTags)
	assert.Equal(t, c.QueryParams(), restored.QueryParams())
}

func TestSubscribe_SnapshotsAreCopies(t *testing.T) {
	c, _ := newController(t, "")
	var got State
	unsubscribe := c.Subscribe(func(st State) { got = st })

	c.ToggleTag("a")
	require.Equal(t, []string{"a"}, got.SelectedTags)
	got.SelectedTags[0] = "mutated"
	assert.Equal(t, []string{"a"}, c.State().SelectedTags)

	unsubscribe()
	c.ToggleTag("b")
	assert.Equal(t, []string{"mutated"}, got.SelectedTags)
}

func TestController_Concurrent(t *testing.T) {
	c, _ := newController(t, "")
	c.TagsLoaded([]string{"a", "b"})

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				c.ToggleTag("a")
			} else {
				c.NextPage()
			}
			_ = c.QueryParams()
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, c.State().CurrentPage, 1)
}

type manualTimers struct {
	mu    sync.Mutex
	funcs []func()
	stops int
}

func (m *manualTimers) schedule(_ time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, f)
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stops++
		return true
	}
}

func (m *manualTimers) fire(i int) {
	m.mu.Lock()
	f := m.funcs[i]
	m.mu.Unlock()
	f()
}

func TestSearchBox_OnlyLastKeystrokeCommits(t *testing.T) {
	c, _ := newController(t, "")
	timers := &manualTimers{}
	box := NewSearchBox(c, 0, timers.schedule)

	var commits []string
	c.Subscribe(func(st State) {
		if st.ActiveSearch != "" {
			commits = append(commits, st.ActiveSearch)
		}
	})

	box.Type("r")
	box.Type("re")
	box.Type("rea")
	require.Len(t, timers.funcs, 3)

	timers.fire(0)
	timers.fire(1)
	assert.Empty(t, c.State().ActiveSearch, "superseded windows do nothing")

	timers.fire(2)
	assert.Equal(t, "rea", c.State().ActiveSearch)

	timers.fire(2)
	assert.Equal(t, []string{"rea"}, commits)
}

func TestSearchBox_Submit(t *testing.T) {
	c, _ := newController(t, "")
	timers := &manualTimers{}
	box := NewSearchBox(c, time.Second, timers.schedule)

	box.Type("go")
	box.Submit()
	assert.Equal(t, "go", c.State().ActiveSearch)

	c.SetCurrentPage(2)
	timers.fire(0)
	assert.Equal(t, 2, c.State().CurrentPage, "the stopped window must not commit again")
}

func TestDebouncer(t *testing.T) {
	timers := &manualTimers{}
	calls := 0
	d := NewDebouncer(10*time.Millisecond, func() { calls++ }, timers.schedule)

	assert.False(t, d.Flush())
	d.Trigger()
	assert.True(t, d.Pending())
	assert.True(t, d.Flush())
	assert.False(t, d.Pending())
	assert.Equal(t, 1, calls)

	d.Trigger()
	d.Stop()
	timers.fire(1)
	assert.Equal(t, 1, calls)
}

func TestDebouncer_RealTimer(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	d := NewDebouncer(5*time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	}, nil)

	d.Trigger()
	d.Trigger()
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 1
	}, time.Second, time.Millisecond)
}
