package util

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s for caseless comparison.
// A Caser keeps state, so each call builds its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// NormalizeTags lowercases and trims every tag, drops empties and removes
// duplicates, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SameSet reports whether a and b hold the same strings, ignoring order
// and repetition.
func SameSet(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, s := range a {
		as[s] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, ok := as[s]; !ok {
			return false
		}
		bs[s] = struct{}{}
	}
	return len(as) == len(bs)
}

// Intersect returns the items of want that are also in have, in want's order.
func Intersect(want, have []string) []string {
	hs := make(map[string]struct{}, len(have))
	for _, s := range have {
		hs[s] = struct{}{}
	}
	out := make([]string, 0, len(want))
	for _, s := range want {
		if _, ok := hs[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// TagDiff returns the tags present only in next (added) and only in prev (removed).
func TagDiff(prev, next []string) (added, removed []string) {
	ps := make(map[string]struct{}, len(prev))
	for _, t := range prev {
		ps[t] = struct{}{}
	}
	ns := make(map[string]struct{}, len(next))
	for _, t := range next {
		ns[t] = struct{}{}
		if _, ok := ps[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range prev {
		if _, ok := ns[t]; !ok {
			removed = append(removed, t)
		}
	}
	return added, removed
}
