package change

import "sort"

// SortKey is the lowercase first byte of name, or 0 for an empty name.
//
// Commit ids are derived from the actions in this order, so only the first
// character participates. Sorting by the full name would change every id.
func SortKey(name string) byte {
	if name == "" {
		return 0
	}
	c := name[0]
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c
}

// Sort orders s by SortKey. Ties keep detection order.
func Sort(s Set) {
	sort.SliceStable(s, func(i, j int) bool {
		return SortKey(s[i].Name) < SortKey(s[j].Name)
	})
}
