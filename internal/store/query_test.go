package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Apply(t *testing.T) {
	a, b, c, d := 4, 1, 3, 2
	items := []*int{&a, &b, &c, &d}

	q := Query[int]{
		Filter: func(n *int) bool { return *n != 3 },
		Less:   func(x, y *int) bool { return *x < *y },
	}
	got := q.Apply(items)

	assert.Equal(t, []int{1, 2, 4}, deref(got))
}

func TestQuery_ApplyPaging(t *testing.T) {
	a, b, c := 1, 2, 3
	items := []*int{&a, &b, &c}

	assert.Equal(t, []int{2}, deref(Page[int](1, 1).Apply(items)))
	assert.Equal(t, []int{2, 3}, deref(Page[int](1, 0).Apply(items)))
	assert.Empty(t, Page[int](5, 1).Apply(items))
	assert.Equal(t, []int{1, 2, 3}, deref(Page[int](-1, -1).Apply(items)))
}

func deref(ps []*int) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}
