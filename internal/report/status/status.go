// Package status groups raw order-status codes into confirmed and cancelled sets.
package status

import (
	"sort"
	"strings"
)

type Group string

const (
	Confirmed Group = "confirmed"
	Cancelled Group = "cancelled"
	Other     Group = "other"
)

// Entry is one row of the status reference sheet.
type Entry struct {
	Code  string
	Group Group
}

// Taxonomy is an immutable code → group mapping. The zero value is an empty taxonomy.
type Taxonomy struct {
	groups map[string]Group
	known  []string
}

// New builds a taxonomy. A code keeps the first group it was assigned; later
// conflicting entries are returned so the caller can report them.
func New(entries []Entry) (Taxonomy, []Entry) {
	t := Taxonomy{groups: make(map[string]Group, len(entries))}
	var conflicts []Entry
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		if code == "" {
			continue
		}
		g := ParseGroup(string(e.Group))
		if prev, ok := t.groups[code]; ok {
			if prev != g {
				conflicts = append(conflicts, Entry{Code: code, Group: g})
			}
			continue
		}
		t.groups[code] = g
		t.known = append(t.known, code)
	}
	sort.Strings(t.known)
	return t, conflicts
}

// ParseGroup accepts English and Korean sheet labels.
func ParseGroup(s string) Group {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "confirmed", "confirm", "확정":
		return Confirmed
	case "cancelled", "canceled", "cancel", "취소":
		return Cancelled
	default:
		return Other
	}
}

// Classify returns the group of code, Other when unknown.
func (t Taxonomy) Classify(code string) Group {
	if g, ok := t.groups[code]; ok {
		return g
	}
	return Other
}

// Codes lists the codes of one group in sorted order.
func (t Taxonomy) Codes(g Group) []string {
	out := make([]string, 0)
	for _, c := range t.known {
		if t.groups[c] == g {
			out = append(out, c)
		}
	}
	return out
}

// Known lists every classified code, including those in the Other group.
func (t Taxonomy) Known() []string {
	out := make([]string, len(t.known))
	copy(out, t.known)
	return out
}

func (t Taxonomy) Empty() bool { return len(t.known) == 0 }

// Defaults is used when no reference sheet can be loaded.
func Defaults() []Entry {
	return []Entry{
		{Code: "confirm", Group: Confirmed},
		{Code: "complete", Group: Confirmed},
		{Code: "checkout", Group: Confirmed},
		{Code: "cancel", Group: Cancelled},
		{Code: "cancel_complete", Group: Cancelled},
		{Code: "refund", Group: Cancelled},
		{Code: "pending", Group: Other},
	}
}
