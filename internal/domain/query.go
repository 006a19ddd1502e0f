package domain

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// QueryParams is the wire projection of a resource filter state.
// Zero values are omitted when encoded.
type QueryParams struct {
	Search string
	Type   TypeFilter
	Tags   []string
	Cursor Cursor
	Limit  int
}

// Values encodes the params as query values, omitting defaults.
func (p QueryParams) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Type != "" && !p.Type.IsAll() {
		v.Set("type", string(p.Type))
	}
	if len(p.Tags) > 0 {
		v.Set("tags", strings.Join(p.Tags, ","))
	}
	if p.Cursor != "" {
		v.Set("cursor", string(p.Cursor))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// Key returns a stable string for cache keys. Params that differ only in
// tag order give equal keys.
func (p QueryParams) Key() string {
	p.Tags = slices.Sorted(slices.Values(p.Tags))
	return p.Values().Encode()
}

// ParseQueryParams decodes list parameters as the backend reads them.
func ParseQueryParams(v url.Values) QueryParams {
	p := QueryParams{
		Search: v.Get("search"),
		Type:   ParseTypeFilter(v.Get("type")),
		Tags:   SplitList(v.Get("tags")),
		Cursor: Cursor(v.Get("cursor")),
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil {
		p.Limit = n
	}
	return p
}

// SplitList splits a comma-joined list, trimming items and dropping empties.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
