package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stamped struct {
	id string
	at time.Time
}

// TestSortByTimeStable verifies ties keep arrival order.
func TestSortByTimeStable(t *testing.T) {
	base := time.Unix(1000, 0)
	items := []stamped{
		{"c", base.Add(3 * time.Second)},
		{"a1", base.Add(time.Second)},
		{"b", base.Add(2 * time.Second)},
		{"a2", base.Add(time.Second)},
	}
	SortByTime(items, func(s stamped) time.Time { return s.at })

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.id)
	}
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, ids)
}

func TestCompareTime(t *testing.T) {
	a := time.Unix(1, 0)
	b := time.Unix(2, 0)
	assert.Equal(t, -1, CompareTime(a, b))
	assert.Equal(t, 1, CompareTime(b, a))
	assert.Equal(t, 0, CompareTime(a, a))
	assert.Equal(t, -1, CompareTime(time.Time{}, a))
}

func TestKeys(t *testing.T) {
	assert.True(t, SameKey("m1", "m1"))
	assert.False(t, SameKey("", ""))
	assert.False(t, ValidKey("  "))

	k1, k2 := NewKey(), NewKey()
	assert.True(t, ValidKey(k1))
	assert.NotEqual(t, k1, k2)
}
