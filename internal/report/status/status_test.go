package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFirstAssignmentWins(t *testing.T) {
	tax, conflicts := New([]Entry{
		{Code: "confirm", Group: Confirmed},
		{Code: "cancel", Group: "취소"},
		{Code: "confirm", Group: Cancelled},
		{Code: "confirm", Group: Confirmed},
		{Code: "  ", Group: Confirmed},
		{Code: "hold", Group: "whatever"},
	})

	assert.Equal(t, Confirmed, tax.Classify("confirm"))
	assert.Equal(t, Cancelled, tax.Classify("cancel"))
	assert.Equal(t, Other, tax.Classify("hold"))
	assert.Equal(t, Other, tax.Classify("unknown"))
	assert.Equal(t, []Entry{{Code: "confirm", Group: Cancelled}}, conflicts)
	assert.Equal(t, []string{"cancel", "confirm", "hold"}, tax.Known())
}

func TestGroupsAreDisjoint(t *testing.T) {
	tax, _ := New(Defaults())

	confirmed := tax.Codes(Confirmed)
	cancelled := tax.Codes(Cancelled)
	assert.Equal(t, []string{"checkout", "complete", "confirm"}, confirmed)
	assert.Equal(t, []string{"cancel", "cancel_complete", "refund"}, cancelled)
	for _, c := range confirmed {
		assert.NotContains(t, cancelled, c)
	}
	assert.Len(t, tax.Known(), len(Defaults()))
}

func TestEmptyTaxonomy(t *testing.T) {
	var tax Taxonomy

	assert.True(t, tax.Empty())
	assert.NotNil(t, tax.Codes(Confirmed))
	assert.Empty(t, tax.Codes(Confirmed))
	assert.Empty(t, tax.Known())
	assert.Equal(t, Other, tax.Classify("confirm"))
}

func TestParseGroup(t *testing.T) {
	tests := map[string]Group{
		"confirmed": Confirmed,
		" 확정 ":      Confirmed,
		"Canceled":  Cancelled,
		"취소":        Cancelled,
		"":          Other,
		"other":     Other,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseGroup(in), in)
	}
}
