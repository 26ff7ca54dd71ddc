package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilterValidate(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	base := Filter{StartDate: day(1), EndDate: day(7), DateType: DateTypeOrder, Channels: []string{AllChannels}}

	tests := []struct {
		name    string
		mutate  func(f *Filter)
		wantErr bool
	}{
		{"valid week", func(f *Filter) {}, false},
		{"missing start", func(f *Filter) { f.StartDate = time.Time{} }, true},
		{"reversed", func(f *Filter) { f.StartDate, f.EndDate = day(7), day(1) }, true},
		{"end today", func(f *Filter) { f.EndDate = day(8) }, true},
		{"use date end today", func(f *Filter) { f.DateType = DateTypeUse; f.EndDate = day(8) }, false},
		{"use date ninety days ahead", func(f *Filter) { f.DateType = DateTypeUse; f.EndDate = day(8).AddDate(0, 0, 90) }, false},
		{"use date past window", func(f *Filter) { f.DateType = DateTypeUse; f.EndDate = day(8).AddDate(0, 0, 91) }, true},
		{"no channels", func(f *Filter) { f.Channels = nil }, true},
		{"too long", func(f *Filter) { f.StartDate = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC) }, true},
		{"exactly ninety days", func(f *Filter) { f.StartDate = day(7).AddDate(0, 0, -89) }, false},
		{"ninety one days", func(f *Filter) { f.StartDate = day(7).AddDate(0, 0, -90) }, true},
		{"single day", func(f *Filter) { f.StartDate = day(7) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mutate(&f)
			err := f.Validate(now, DefaultLimits())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFilterValidateUseDateOffset(t *testing.T) {
	now := time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC)
	f := Filter{StartDate: now.AddDate(0, 0, -3), EndDate: now.AddDate(0, 0, 30), DateType: DateTypeUse, Channels: []string{"Expedia"}}

	assert.NoError(t, f.Validate(now, Limits{MaxRangeDays: 90, OrderDateEndOffsetDays: -1, UseDateEndOffsetDays: 60}))

	f.EndDate = now.AddDate(0, 0, 61)
	assert.ErrorIs(t, f.Validate(now, Limits{MaxRangeDays: 90, OrderDateEndOffsetDays: -1, UseDateEndOffsetDays: 60}), ErrInvalidFilter)

	f.DateType = DateTypeOrder
	f.EndDate = now.AddDate(0, 0, -1)
	assert.NoError(t, f.Validate(now, DefaultLimits()))
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{DateType: "stay", OrderStatus: "maybe", SaleType: "b2x"}.Normalize()
	assert.Equal(t, DateTypeOrder, f.DateType)
	assert.Equal(t, StatusAll, f.OrderStatus)
	assert.Equal(t, SaleTypeAll, f.SaleType)

	f = Filter{DateType: DateTypeUse, OrderStatus: StatusCancelled, SaleType: SaleTypeB2C}.Normalize()
	assert.Equal(t, DateTypeUse, f.DateType)
	assert.Equal(t, StatusCancelled, f.OrderStatus)
}

func TestAllChannelsSelected(t *testing.T) {
	assert.True(t, Filter{}.AllChannelsSelected())
	assert.True(t, Filter{Channels: []string{"Expedia", " ALL "}}.AllChannelsSelected())
	assert.False(t, Filter{Channels: []string{"Expedia"}}.AllChannelsSelected())
}

func TestCapabilitiesFor(t *testing.T) {
	assert.Equal(t, "v1.5", CapabilitiesFor("v9").Version)
	assert.Equal(t, RevenueDuePrice, CapabilitiesFor("").Revenue)
	assert.True(t, CapabilitiesFor("v1.0").OfferBookings)
	assert.True(t, CapabilitiesFor("v1.1").StatusFilter)
	assert.False(t, CapabilitiesFor("v1.3").ChannelPushdown)
}
