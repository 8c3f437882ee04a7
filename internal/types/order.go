package types

import "sort"

// SortStable orders tasks in place per the universal stable order (spec §3
// invariant 8, GLOSSARY "Stable order"): priority ascending, then
// created_at ascending, then id ascending.
func SortStable(tasks []*Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return StableLess(tasks[i], tasks[j])
	})
}
