package watcher

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Change describes what moved between two consecutive tree states.
type Change struct {
	Added    []string
	Removed  []string
	Modified []string
	Time     time.Time
}

// Total returns the number of paths touched by the change.
func (c Change) Total() int {
	return len(c.Added) + len(c.Removed) + len(c.Modified)
}

// Summary renders a short description like "2 added, 1 modified".
func (c Change) Summary() string {
	var parts []string
	if n := len(c.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(c.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(c.Modified); n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

// Diff lists the paths that were added, removed, or modified between two
// states. Paths come back sorted so output is stable.
func Diff(prev, curr *State) Change {
	change := Change{Time: curr.Timestamp}

	for rel, st := range curr.stamps {
		prevSt, existed := prev.stamps[rel]
		switch {
		case !existed:
			change.Added = append(change.Added, rel)
		case prevSt != st:
			change.Modified = append(change.Modified, rel)
		}
	}

	for rel := range prev.stamps {
		if _, exists := curr.stamps[rel]; !exists {
			change.Removed = append(change.Removed, rel)
		}
	}

	sort.Strings(change.Added)
	sort.Strings(change.Removed)
	sort.Strings(change.Modified)
	return change
}
