package store

import "slices"

// Query selects, orders and pages documents of one collection.
// A zero Query returns every document in storage order.
type Query[T any] struct {
	Filter func(*T) bool      // nil keeps everything
	Less   func(a, b *T) bool // nil keeps storage order
	Offset int
	Limit  int // 0 means no limit
}

// Apply runs the query over an in-memory slice. Backends that cannot push a
// query down to storage load the collection and call this.
func (q Query[T]) Apply(items []*T) []*T {
	out := items
	if q.Filter != nil {
		out = make([]*T, 0, len(items))
		for _, it := range items {
			if q.Filter(it) {
				out = append(out, it)
			}
		}
	}

	if q.Less != nil {
		slices.SortStableFunc(out, func(a, b *T) int {
			switch {
			case q.Less(a, b):
				return -1
			case q.Less(b, a):
				return 1
			default:
				return 0
			}
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []*T{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	if out == nil {
		return []*T{}
	}
	return out
}

// Page builds a query that only pages, with no filter or order.
func Page[T any](offset, limit int) Query[T] {
	return Query[T]{Offset: max(offset, 0), Limit: max(limit, 0)}
}
