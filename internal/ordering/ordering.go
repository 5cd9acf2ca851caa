// Package ordering holds the comparison helpers every registry shares:
// timestamp ordering and idempotency keys.
package ordering

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompareTime orders a before b. The zero time sorts first.
func CompareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// SortByTime sorts items ascending by the timestamp returned from ts.
// Equal timestamps keep their arrival order.
func SortByTime[T any](items []T, ts func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return CompareTime(ts(items[i]), ts(items[j])) < 0
	})
}

// SameKey reports whether two idempotency keys name the same entity.
// Keys are opaque and compared verbatim; blank keys never match.
func SameKey(a, b string) bool {
	return a != "" && a == b
}

// NewKey returns a fresh idempotency key for an outbound mutation or a
// locally minted record.
func NewKey() string {
	return uuid.NewString()
}

// ValidKey reports whether k can be used as an identifier.
func ValidKey(k string) bool {
	return strings.TrimSpace(k) != ""
}
