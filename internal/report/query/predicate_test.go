package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesRender(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		sql  string
		args []any
	}{
		{
			name: "between half open",
			pred: Between{Column: "c", From: "2025-01-01", To: "2025-01-08"},
			sql:  "c >= $1 AND c < $2",
			args: []any{"2025-01-01", "2025-01-08"},
		},
		{
			name: "between inclusive",
			pred: Between{Column: "c", From: 1, To: 2, Inclusive: true},
			sql:  "c >= $1 AND c <= $2",
			args: []any{1, 2},
		},
		{
			name: "before",
			pred: Before{Column: "c", Value: "2025-01-08"},
			sql:  "c < $1",
			args: []any{"2025-01-08"},
		},
		{
			name: "in",
			pred: In{Column: "c", Values: []string{"a", "b"}},
			sql:  "c = ANY($1)",
			args: []any{[]string{"a", "b"}},
		},
		{
			name: "not in is null safe",
			pred: NotIn{Column: "c", Values: []int64{1}},
			sql:  "(c IS NULL OR NOT (c = ANY($1)))",
			args: []any{[]int64{1}},
		},
		{
			name: "or of and",
			pred: Or{Equal{Column: "a", Value: 1}, And{Equal{Column: "b", Value: 2}, Raw("c = 1")}},
			sql:  "(a = $1) OR ((b = $2) AND (c = 1))",
			args: []any{1, 2},
		},
		{
			name: "empty or",
			pred: Or{},
			sql:  "TRUE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBinder()
			assert.Equal(t, tt.sql, tt.pred.Render(b))
			assert.Equal(t, tt.args, b.Args())
		})
	}
}

func TestBindOnceReusesPlaceholder(t *testing.T) {
	b := NewBinder()
	first := In{Column: "a", Values: []string{"x"}, Key: "set"}.Render(b)
	second := In{Column: "b", Values: []string{"x"}, Key: "set"}.Render(b)

	assert.Equal(t, "a = ANY($1)", first)
	assert.Equal(t, "b = ANY($1)", second)
	assert.Len(t, b.Args(), 1)
}

func TestWhereJoinsClauses(t *testing.T) {
	b := NewBinder()
	got := Where(b, []Predicate{Equal{Column: "a", Value: 1}, Raw("b IS NOT NULL")}, "  ")
	assert.Equal(t, "a = $1\n  AND b IS NOT NULL", got)
	assert.Equal(t, "TRUE", Where(NewBinder(), nil, ""))
}

func TestInlineQuotesValues(t *testing.T) {
	q := Query{
		SQL:  "SELECT 1 WHERE a = $1 AND b = ANY($2) AND c = ANY($3) AND d = $10",
		Args: []any{"O'Brien", []string{"x", "y"}, []int64{1, 2}, 4, 5, 6, 7, 8, 9, int64(10)},
	}
	assert.Equal(t,
		"SELECT 1 WHERE a = 'O''Brien' AND b = ANY(ARRAY['x', 'y']::text[]) AND c = ANY(ARRAY[1, 2]::bigint[]) AND d = 10",
		q.Inline())
}
