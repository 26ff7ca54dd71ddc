package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

func idx(v int64) *int64 { return &v }

type panicky struct{}

func (panicky) Resolve(Ref) (string, bool) { panic("reference table unavailable") }

func testResolver() *Resolver {
	return Build(
		[]ReferenceEntry{
			{RowID: 20, Index: 3, Name: "Expedia (dup)"},
			{RowID: 10, Index: 3, Name: "Expedia"},
			{RowID: 11, Index: 5, Name: "Agoda"},
		},
		IndexTable{5: "Agoda Master", 9: "Booking.com"},
	)
}

func TestResolveTiers(t *testing.T) {
	r := testResolver()

	tests := []struct {
		name string
		ref  Ref
		want string
	}{
		{"reference lowest row id wins", Ref{Source: report.SourceOrderProduct, Index: idx(3), Code: "whatever"}, "Expedia"},
		{"reference beats master", Ref{Source: report.SourceOrderProduct, Index: idx(5)}, "Agoda"},
		{"master sheet", Ref{Source: report.SourceOrderProduct, Index: idx(9), Code: "bcom"}, "Booking.com"},
		{"static per source", Ref{Source: report.SourceOffer, Code: "AMTSUPME0003"}, "Meituan"},
		{"static ignores case", Ref{Source: report.SourceOrderProduct, Code: "TRIP"}, "Trip"},
		{"static offer ignores case", Ref{Source: report.SourceOffer, Code: "amtsupag0007"}, "Agoda"},
		{"static tables are independent", Ref{Source: report.SourceOrderProduct, Code: "AMTSUPME0003"}, "AMTSUPME0003"},
		{"literal ignores case", Ref{Source: report.SourceOffer, Code: " HotelBeds "}, "Hotelbeds"},
		{"passthrough", Ref{Source: report.SourceOrderProduct, Index: idx(77), Code: "newco"}, "newco"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.ref))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := testResolver()
	ref := Ref{Source: report.SourceOrderProduct, Code: "nuuaapi"}
	assert.Equal(t, r.Resolve(ref), r.Resolve(ref))
}

func TestResolveSwallowsFailingTier(t *testing.T) {
	r := NewResolver(panicky{}, DefaultStaticTable())
	assert.Equal(t, "Expedia", r.Resolve(Ref{Source: report.SourceOrderProduct, Code: "expedia"}))
	assert.Equal(t, "raw", r.Resolve(Ref{Source: report.SourceOrderProduct, Code: "raw"}))
}

func TestExpand(t *testing.T) {
	r := testResolver()

	sel := r.Expand([]string{"Expedia", "Trip", "Expedia"})
	require.False(t, sel.Empty())
	assert.Equal(t, []string{"Expedia", "Trip"}, sel.Names)
	assert.Equal(t, []int64{3}, sel.Indices)
	assert.Equal(t, []int64{3, 5, 9}, sel.KnownIndices)
	assert.ElementsMatch(t, []string{"expedia", "Expedia", "Trip", "trip"}, sel.Codes[report.SourceOrderProduct])
	assert.ElementsMatch(t, []string{"AMTSUPCT0001", "expedia", "Expedia", "Trip"}, sel.Codes[report.SourceOffer])
}

func TestExpandSkipsUnnamedIndices(t *testing.T) {
	r := NewResolver(IndexTable{4: " ", 9: "Booking.com"}, DefaultStaticTable())

	sel := r.Expand([]string{"Booking.com"})
	assert.Equal(t, []int64{9}, sel.Indices)
	assert.Equal(t, []int64{9}, sel.KnownIndices)
	assert.Equal(t, "Expedia", r.Resolve(Ref{Source: report.SourceOrderProduct, Index: idx(4), Code: "expedia"}))
}

func TestExpandAllSentinel(t *testing.T) {
	r := testResolver()
	assert.True(t, r.Expand([]string{"Expedia", "all"}).Empty())
	assert.True(t, r.Expand(nil).Empty())
}

func TestNames(t *testing.T) {
	names := testResolver().Names()

	assert.Contains(t, names, "Expedia")
	assert.Contains(t, names, "Booking.com")
	assert.Contains(t, names, "Meituan")
	assert.NotContains(t, names, "Expedia (dup)")
	assert.IsNonDecreasing(t, names)
}
