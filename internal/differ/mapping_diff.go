package differ

import (
	"maps"
	"slices"

	"gitwebsync/internal/gitweb"
)

// MappingDiff compares a current inventory against a past one.
//
// Added and Removed hold the keys found on one side only; Changed and
// Unchanged partition the keys found on both sides by whether the age text
// matches.
type MappingDiff struct {
	added     map[string]struct{}
	removed   map[string]struct{}
	changed   map[string]struct{}
	unchanged map[string]struct{}
}

// BuildDiff computes the diff of current against past in one pass over each.
func BuildDiff(current gitweb.Inventory, past gitweb.Inventory) MappingDiff {
	diff := MappingDiff{
		added:     map[string]struct{}{},
		removed:   map[string]struct{}{},
		changed:   map[string]struct{}{},
		unchanged: map[string]struct{}{},
	}

	for repo, age := range current {
		pastAge, ok := past[repo]
		switch {
		case !ok:
			diff.added[repo] = struct{}{}
		case pastAge != age:
			diff.changed[repo] = struct{}{}
		default:
			diff.unchanged[repo] = struct{}{}
		}
	}

	for repo := range past {
		if _, ok := current[repo]; !ok {
			diff.removed[repo] = struct{}{}
		}
	}

	return diff
}

func (d MappingDiff) Added() []string {
	return sortedKeys(d.added)
}

func (d MappingDiff) Removed() []string {
	return sortedKeys(d.removed)
}

func (d MappingDiff) Changed() []string {
	return sortedKeys(d.changed)
}

func (d MappingDiff) Unchanged() []string {
	return sortedKeys(d.unchanged)
}

func sortedKeys(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
