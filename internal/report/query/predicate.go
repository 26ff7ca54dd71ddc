package query

import (
	"fmt"
	"strings"
)

// Binder hands out positional placeholders and collects their arguments.
type Binder struct {
	args  []any
	named map[string]string
}

func NewBinder() *Binder {
	return &Binder{named: map[string]string{}}
}

// Bind appends v and returns its placeholder.
func (b *Binder) Bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// BindOnce binds v under key the first time and reuses the placeholder afterwards.
func (b *Binder) BindOnce(key string, v any) string {
	if p, ok := b.named[key]; ok {
		return p
	}
	p := b.Bind(v)
	b.named[key] = p
	return p
}

func (b *Binder) Args() []any { return b.args }

// Predicate is one typed clause of a WHERE list.
type Predicate interface {
	Render(b *Binder) string
}

// Between is lower-inclusive; the upper bound is exclusive unless Inclusive is set.
type Between struct {
	Column    string
	From, To  any
	Inclusive bool
}

func (p Between) Render(b *Binder) string {
	op := "<"
	if p.Inclusive {
		op = "<="
	}
	return fmt.Sprintf("%s >= %s AND %s %s %s", p.Column, b.Bind(p.From), p.Column, op, b.Bind(p.To))
}

// Before is a strict upper bound.
type Before struct {
	Column string
	Value  any
}

func (p Before) Render(b *Binder) string {
	return fmt.Sprintf("%s < %s", p.Column, b.Bind(p.Value))
}

// In binds a slice as one array parameter.
type In struct {
	Column string
	Values any
	// Key shares the bound array between clauses using the same set.
	Key string
}

func (p In) Render(b *Binder) string {
	if p.Key != "" {
		return fmt.Sprintf("%s = ANY(%s)", p.Column, b.BindOnce(p.Key, p.Values))
	}
	return fmt.Sprintf("%s = ANY(%s)", p.Column, b.Bind(p.Values))
}

// NotIn is null-safe: a NULL column counts as not in the set.
type NotIn struct {
	Column string
	Values any
	Key    string
}

func (p NotIn) Render(b *Binder) string {
	in := In{Column: p.Column, Values: p.Values, Key: p.Key}.Render(b)
	return fmt.Sprintf("(%s IS NULL OR NOT (%s))", p.Column, in)
}

type Equal struct {
	Column string
	Value  any
}

func (p Equal) Render(b *Binder) string {
	return fmt.Sprintf("%s = %s", p.Column, b.Bind(p.Value))
}

// Raw is a constant clause without user input.
type Raw string

func (p Raw) Render(*Binder) string { return string(p) }

type And []Predicate

func (p And) Render(b *Binder) string { return join(b, p, " AND ") }

type Or []Predicate

func (p Or) Render(b *Binder) string { return join(b, p, " OR ") }

func join(b *Binder, ps []Predicate, sep string) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if p == nil {
			continue
		}
		parts = append(parts, "("+p.Render(b)+")")
	}
	if len(parts) == 0 {
		return "TRUE"
	}
	return strings.Join(parts, sep)
}

// Where renders clauses ANDed one per line.
func Where(b *Binder, ps []Predicate, indent string) string {
	if len(ps) == 0 {
		return "TRUE"
	}
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, p.Render(b))
	}
	return strings.Join(parts, "\n"+indent+"AND ")
}
