// Package normalize turns scanned aggregate rows into typed report records.
package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
)

// RawRow mirrors one row of a detail aggregation as scanned from the store.
type RawRow struct {
	BookingDate      *time.Time
	ChannelKey       string
	ChannelIdx       *int64
	Source           string
	ChannelCode      *string
	ChannelCodes     *string
	SaleType         *string
	HotelID          *int64
	HotelName        *string
	HotelCode        *string
	BookingCount     int64
	HotelCount       int64
	TotalRooms       decimal.NullDecimal
	ConfirmedRooms   decimal.NullDecimal
	CancelledRooms   decimal.NullDecimal
	CancellationRate decimal.NullDecimal
	TotalDeposit     decimal.NullDecimal
	TotalPurchase    decimal.NullDecimal
	TotalProfit      decimal.NullDecimal
	ProfitRate       decimal.NullDecimal
}

type RawSummary struct {
	TotalBookings decimal.NullDecimal
	TotalRevenue  decimal.NullDecimal
	ChannelCount  int64
	ActiveDays    int64
}

type RawTrend struct {
	Date     time.Time
	Bookings decimal.NullDecimal
	Revenue  decimal.NullDecimal
}

// Rows converts raw rows, resolving channel names. When residual is non-empty only
// rows whose resolved name is listed, ignoring case, survive. The result is never nil.
func Rows(raw []RawRow, resolver *channel.Resolver, residual []string) []report.BookingRecord {
	keep := map[string]bool{}
	for _, n := range residual {
		keep[strings.ToLower(strings.TrimSpace(n))] = true
	}

	out := make([]report.BookingRecord, 0, len(raw))
	for _, r := range raw {
		rec := Row(r, resolver)
		if len(keep) > 0 && !keep[strings.ToLower(rec.ChannelName)] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Row coerces one raw row. Money is rounded to whole units and ratios to one
// decimal place; NULL aggregates become zero.
func Row(r RawRow, resolver *channel.Resolver) report.BookingRecord {
	code := str(r.ChannelCode)
	ref := channel.Ref{Source: report.Source(r.Source), Index: r.ChannelIdx, Code: code}
	name := code
	if resolver != nil {
		name = resolver.Resolve(ref)
	}

	codes := str(r.ChannelCodes)
	if codes == "" {
		codes = code
	}

	rec := report.BookingRecord{
		ChannelKey:       r.ChannelKey,
		ChannelName:      name,
		ChannelCode:      codes,
		SaleType:         str(r.SaleType),
		HotelID:          r.HotelID,
		HotelName:        str(r.HotelName),
		HotelCode:        str(r.HotelCode),
		BookingCount:     r.BookingCount,
		HotelCount:       r.HotelCount,
		TotalRooms:       Whole(r.TotalRooms),
		ConfirmedRooms:   Whole(r.ConfirmedRooms),
		CancelledRooms:   Whole(r.CancelledRooms),
		CancellationRate: Ratio(r.CancellationRate),
		TotalDeposit:     Whole(r.TotalDeposit),
		TotalPurchase:    Whole(r.TotalPurchase),
		ProfitRate:       Ratio(r.ProfitRate),
	}
	rec.TotalProfit = rec.TotalPurchase - rec.TotalDeposit
	if r.BookingDate != nil {
		d := report.DateOf(*r.BookingDate)
		rec.BookingDate = &d
	}
	return rec
}

func Summary(r RawSummary) report.Summary {
	return report.Summary{
		TotalBookings: Whole(r.TotalBookings),
		TotalRevenue:  Whole(r.TotalRevenue),
		ChannelCount:  r.ChannelCount,
		ActiveDays:    r.ActiveDays,
	}
}

// Trend never returns nil.
func Trend(raw []RawTrend) []report.TrendPoint {
	out := make([]report.TrendPoint, 0, len(raw))
	for _, r := range raw {
		out = append(out, report.TrendPoint{
			Date:     report.DateOf(r.Date),
			Bookings: Whole(r.Bookings),
			Revenue:  Whole(r.Revenue),
		})
	}
	return out
}

// Whole rounds half away from zero to an integer; NULL is zero.
func Whole(d decimal.NullDecimal) int64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Round(0).IntPart()
}

// Ratio rounds to one decimal place; NULL is zero.
func Ratio(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Round(1).InexactFloat64()
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
