// Package query caches API reads by key, de-duplicates identical in-flight
// fetches and applies declared invalidations after writes.
package query

import (
	"strings"

	"github.com/learninghub/learninghub/internal/domain"
)

// Key identifies a cached query. Keys are hierarchical; invalidation
// matches by element-wise prefix.
type Key []string

// String returns the canonical map key.
func (k Key) String() string {
	return strings.Join(k, "\x1f")
}

// HasPrefix reports whether p is an element-wise prefix of k.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Group returns the entity family of the key ("resources", "tags"), used
// as a metrics label.
func (k Key) Group() string {
	if len(k) > 1 {
		return k[1]
	}
	return "other"
}

// Resources is the root of every resource query for product.
func Resources(p domain.Product) Key {
	return Key{string(p), "resources"}
}

// ResourceLists matches every resource list query for product.
func ResourceLists(p domain.Product) Key {
	return Key{string(p), "resources", "list"}
}

// ResourceList is the key of one filtered, paged list.
func ResourceList(p domain.Product, params domain.QueryParams) Key {
	return Key{string(p), "resources", "list", params.Key()}
}

// ResourceDetails matches every resource detail query for product.
func ResourceDetails(p domain.Product) Key {
	return Key{string(p), "resources", "detail"}
}

// ResourceDetail is the key of a single resource.
func ResourceDetail(p domain.Product, id string) Key {
	return Key{string(p), "resources", "detail", id}
}

// TagLists matches the tag list query for product.
func TagLists(p domain.Product) Key {
	return Key{string(p), "tags", "list"}
}
