package report

import (
	"strings"
	"time"
)

// AllChannels is the channel-list sentinel meaning "no channel restriction".
const AllChannels = "all"

type DateType string

const (
	DateTypeUse   DateType = "useDate"
	DateTypeOrder DateType = "orderDate"
	// DateTypeEither matches either range and buckets by creation date.
	// Only honoured when Capabilities.LegacyEitherDate is set.
	DateTypeEither DateType = "all"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusConfirmed StatusFilter = "confirmed"
	StatusCancelled StatusFilter = "cancelled"
)

type SaleType string

const (
	SaleTypeAll SaleType = "all"
	SaleTypeB2C SaleType = "b2c"
	SaleTypeB2B SaleType = "b2b"
)

// Grouping selects the dimensions of an aggregation.
type Grouping string

const (
	GroupByDateChannel      Grouping = "date_channel"
	GroupByChannel          Grouping = "channel"
	GroupByDateHotelChannel Grouping = "date_hotel_channel"
)

// Source names a booking table feeding the union.
type Source string

const (
	SourceOrderProduct Source = "order_product"
	SourceOffer        Source = "booking_master_offer"
)

// Filter is the request-scoped parameter set of one report.
type Filter struct {
	StartDate   time.Time    `json:"start_date"`
	EndDate     time.Time    `json:"end_date"`
	DateType    DateType     `json:"date_type"`
	Channels    []string     `json:"channels"`
	OrderStatus StatusFilter `json:"order_status"`
	SaleType    SaleType     `json:"sale_type"`
	HotelIDs    []int64      `json:"hotel_ids,omitempty"`
}

// Normalize returns a copy with unknown enum values replaced by safe defaults.
func (f Filter) Normalize() Filter {
	switch f.DateType {
	case DateTypeUse, DateTypeOrder, DateTypeEither:
	default:
		f.DateType = DateTypeOrder
	}
	switch f.OrderStatus {
	case StatusAll, StatusConfirmed, StatusCancelled:
	default:
		f.OrderStatus = StatusAll
	}
	switch f.SaleType {
	case SaleTypeAll, SaleTypeB2C, SaleTypeB2B:
	default:
		f.SaleType = SaleTypeAll
	}
	return f
}

// AllChannelsSelected reports whether the filter carries no channel restriction.
func (f Filter) AllChannelsSelected() bool {
	if len(f.Channels) == 0 {
		return true
	}
	for _, c := range f.Channels {
		if strings.EqualFold(strings.TrimSpace(c), AllChannels) {
			return true
		}
	}
	return false
}

// BookingRecord is one row of the detail table.
type BookingRecord struct {
	BookingDate      *time.Time `json:"booking_date,omitempty"`
	ChannelKey       string     `json:"channel_key"`
	ChannelName      string     `json:"channel_name"`
	ChannelCode      string     `json:"channel_code"`
	SaleType         string     `json:"sale_type"`
	HotelID          *int64     `json:"hotel_id,omitempty"`
	HotelName        string     `json:"hotel_name,omitempty"`
	HotelCode        string     `json:"hotel_code,omitempty"`
	BookingCount     int64      `json:"booking_count"`
	HotelCount       int64      `json:"hotel_count"`
	TotalRooms       int64      `json:"total_rooms"`
	ConfirmedRooms   int64      `json:"confirmed_rooms"`
	CancelledRooms   int64      `json:"cancelled_rooms"`
	CancellationRate float64    `json:"cancellation_rate"`
	TotalDeposit     int64      `json:"total_deposit"`
	TotalPurchase    int64      `json:"total_purchase"`
	TotalProfit      int64      `json:"total_profit"`
	ProfitRate       float64    `json:"profit_rate"`
}

// Summary is the single-row rollup of a filter set.
type Summary struct {
	TotalBookings int64 `json:"total_bookings"`
	TotalRevenue  int64 `json:"total_revenue"`
	ChannelCount  int64 `json:"channel_count"`
	ActiveDays    int64 `json:"active_days"`
}

// TrendPoint is one day of the daily trend.
type TrendPoint struct {
	Date     time.Time `json:"date"`
	Bookings int64     `json:"bookings"`
	Revenue  int64     `json:"revenue"`
}

// RevenueFormula selects how deposits (revenue) are computed. One formula is used
// for every figure of a result set.
type RevenueFormula string

const (
	RevenueAmount        RevenueFormula = "amount"
	RevenueDuePrice      RevenueFormula = "due_price"
	RevenueDuePriceTerms RevenueFormula = "due_price_terms"
)

// Capabilities describes which columns and filters a schema version supports.
type Capabilities struct {
	Version          string
	SaleType         bool
	RoomSplit        bool
	Revenue          RevenueFormula
	OfferBookings    bool
	LegacyEitherDate bool
	StatusFilter     bool
	ChannelPushdown  bool
}

// CapabilitiesFor returns the preset of a schema version; unknown versions get the latest.
func CapabilitiesFor(version string) Capabilities {
	switch version {
	case "v1.0":
		return Capabilities{
			Version:       "v1.0",
			Revenue:       RevenueAmount,
			OfferBookings: true,
		}
	case "v1.1":
		return Capabilities{
			Version:          "v1.1",
			Revenue:          RevenueAmount,
			LegacyEitherDate: true,
			StatusFilter:     true,
			ChannelPushdown:  true,
		}
	case "v1.3":
		return Capabilities{
			Version:   "v1.3",
			RoomSplit: true,
			Revenue:   RevenueAmount,
		}
	default:
		return Capabilities{
			Version:         "v1.5",
			SaleType:        true,
			RoomSplit:       true,
			Revenue:         RevenueDuePrice,
			ChannelPushdown: true,
		}
	}
}
