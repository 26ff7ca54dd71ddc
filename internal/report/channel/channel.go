// Package channel resolves raw channel codes to canonical display names.
package channel

import (
	"sort"
	"strings"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

// Ref identifies a row's channel as the store reports it.
type Ref struct {
	Source report.Source
	Index  *int64
	Code   string
}

// Strategy is one tier of the resolution chain.
type Strategy interface {
	Resolve(ref Ref) (string, bool)
}

// Resolver tries its strategies in order and falls back to the raw code.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve never fails; a panicking or empty tier falls through to the next one.
func (r *Resolver) Resolve(ref Ref) string {
	for _, s := range r.strategies {
		if name, ok := safeResolve(s, ref); ok && name != "" {
			return name
		}
	}
	return ref.Code
}

func safeResolve(s Strategy, ref Ref) (name string, ok bool) {
	defer func() {
		if recover() != nil {
			name, ok = "", false
		}
	}()
	return s.Resolve(ref)
}

// Selection is a set of canonical names translated back to raw discriminators.
type Selection struct {
	Names []string
	// Indices resolve through an index-keyed tier to a selected name.
	Indices []int64
	// KnownIndices are every index an index-keyed tier can resolve; rows carrying
	// one of them never fall through to code matching.
	KnownIndices []int64
	Codes        map[report.Source][]string
}

// Empty reports whether no restriction applies.
func (s Selection) Empty() bool { return len(s.Names) == 0 }

// Enumerator is implemented by tiers that can list what they resolve.
type Enumerator interface {
	Indices() map[int64]string
	Codes(source report.Source) map[string]string
}

// Expand translates canonical names into the discriminators that resolve to them.
// One canonical name may expand to several indices and codes across sources.
func (r *Resolver) Expand(names []string) Selection {
	sel := Selection{Codes: map[report.Source][]string{}}
	wanted := map[string]bool{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.EqualFold(n, report.AllChannels) {
			return Selection{}
		}
		if !wanted[n] {
			wanted[n] = true
			sel.Names = append(sel.Names, n)
		}
	}
	if len(wanted) == 0 {
		return Selection{}
	}

	known := map[int64]bool{}
	matched := map[int64]bool{}
	codes := map[report.Source]map[string]bool{}
	for _, s := range r.strategies {
		e, ok := s.(Enumerator)
		if !ok {
			continue
		}
		for idx, name := range e.Indices() {
			// An empty name falls through to code matching at resolve time.
			if known[idx] || strings.TrimSpace(name) == "" {
				continue
			}
			known[idx] = true
			if wanted[name] {
				matched[idx] = true
			}
		}
		for _, src := range []report.Source{report.SourceOrderProduct, report.SourceOffer} {
			for code, name := range e.Codes(src) {
				if !wanted[name] {
					continue
				}
				if codes[src] == nil {
					codes[src] = map[string]bool{}
				}
				codes[src][code] = true
			}
		}
	}
	// Passthrough: an unresolved code displays as itself.
	for n := range wanted {
		for _, src := range []report.Source{report.SourceOrderProduct, report.SourceOffer} {
			if codes[src] == nil {
				codes[src] = map[string]bool{}
			}
			codes[src][n] = true
		}
	}

	sel.Indices = sortedInts(matched)
	sel.KnownIndices = sortedInts(known)
	for src, set := range codes {
		sel.Codes[src] = sortedStrings(set)
	}
	sort.Strings(sel.Names)
	return sel
}

// Names lists every canonical name the enumerable tiers know, deduplicated and sorted.
func (r *Resolver) Names() []string {
	set := map[string]bool{}
	known := map[int64]bool{}
	for _, s := range r.strategies {
		e, ok := s.(Enumerator)
		if !ok {
			continue
		}
		for idx, name := range e.Indices() {
			if known[idx] {
				continue
			}
			known[idx] = true
			set[name] = true
		}
		for _, src := range []report.Source{report.SourceOrderProduct, report.SourceOffer} {
			for _, name := range e.Codes(src) {
				set[name] = true
			}
		}
	}
	delete(set, "")
	return sortedStrings(set)
}

func sortedInts(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
