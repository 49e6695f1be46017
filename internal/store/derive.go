package store

// CountBy counts items per key.
func CountBy[E any, K comparable](items []E, key func(E) K) map[K]int {
	out := make(map[K]int)
	for _, e := range items {
		out[key(e)]++
	}
	return out
}

// GroupBy partitions items by key, preserving their order within a group.
func GroupBy[E any, K comparable](items []E, key func(E) K) map[K][]E {
	out := make(map[K][]E)
	for _, e := range items {
		k := key(e)
		out[k] = append(out[k], e)
	}
	return out
}

func CountWhere[E any](items []E, pred func(E) bool) int {
	n := 0
	for _, e := range items {
		if pred(e) {
			n++
		}
	}
	return n
}

// SumOf adds up val over the items accepted by pred. A nil pred accepts all.
func SumOf[E any](items []E, pred func(E) bool, val func(E) float64) float64 {
	var sum float64
	for _, e := range items {
		if pred == nil || pred(e) {
			sum += val(e)
		}
	}
	return sum
}

// AverageOf is the mean of val over items, or 0 when there are none.
func AverageOf[E any](items []E, val func(E) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return SumOf(items, nil, val) / float64(len(items))
}
