// Package query assembles the parameterized aggregation statements behind every report.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/report/status"
)

// Query is a composed statement with its bound arguments.
type Query struct {
	SQL  string
	Args []any
	// Residual holds canonical channel names the caller still has to filter on
	// after resolving row names. It is only set when the selection could not be
	// pushed into the statement; empty means no in-memory filtering.
	Residual []string
}

// Composer is stateless apart from its configuration and safe for concurrent use.
type Composer struct {
	Caps     report.Capabilities
	Taxonomy status.Taxonomy
	Now      func() time.Time
	Location *time.Location
}

func NewComposer(caps report.Capabilities, taxonomy status.Taxonomy, loc *time.Location) *Composer {
	return &Composer{Caps: caps, Taxonomy: taxonomy, Now: time.Now, Location: loc}
}

// Today is the cutoff date: rows created on or after it are never reported.
func (c *Composer) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return report.DateOf(now().In(loc))
}

// Compose builds the detail aggregation for one grouping. Unknown groupings
// fall back to date × channel.
func (c *Composer) Compose(f report.Filter, g report.Grouping, sel channel.Selection) Query {
	f = f.Normalize()
	switch g {
	case report.GroupByDateChannel, report.GroupByChannel, report.GroupByDateHotelChannel:
	default:
		g = report.GroupByDateChannel
	}

	b := NewBinder()
	var sb strings.Builder
	sb.WriteString(c.bookingRows(b, f, g, sel, c.Caps.ChannelPushdown))
	sb.WriteString(c.detailSelect(g))

	q := Query{SQL: sb.String(), Args: b.Args()}
	if !sel.Empty() && !c.Caps.ChannelPushdown {
		q.Residual = append([]string(nil), sel.Names...)
	}
	return q
}

// ComposeSummary aggregates over the same per-group rows as the date × channel
// detail, so total_bookings always equals the sum of the detail booking counts.
// The channel selection is always pushed into the statement.
func (c *Composer) ComposeSummary(f report.Filter, sel channel.Selection) Query {
	f = f.Normalize()
	b := NewBinder()
	var sb strings.Builder
	sb.WriteString(c.bookingRows(b, f, report.GroupByDateChannel, sel, true))
	sb.WriteString(`SELECT
  COALESCE(SUM(g.booking_count), 0) AS total_bookings,
  COALESCE(SUM(g.deposit), 0) AS total_revenue,
  COUNT(DISTINCT g.channel_key) AS channel_count,
  COUNT(DISTINCT g.anchor_date) AS active_days
FROM (
`)
	sb.WriteString(groupedRows)
	sb.WriteString(") g\n")
	return Query{SQL: sb.String(), Args: b.Args()}
}

// ComposeTrend returns bookings and revenue per day, ascending.
func (c *Composer) ComposeTrend(f report.Filter, sel channel.Selection) Query {
	f = f.Normalize()
	b := NewBinder()
	var sb strings.Builder
	sb.WriteString(c.bookingRows(b, f, report.GroupByDateChannel, sel, true))
	sb.WriteString(`SELECT
  g.anchor_date AS booking_date,
  COALESCE(SUM(g.booking_count), 0) AS bookings,
  COALESCE(SUM(g.deposit), 0) AS revenue
FROM (
`)
	sb.WriteString(groupedRows)
	sb.WriteString(") g\nGROUP BY g.anchor_date\nORDER BY g.anchor_date ASC\n")
	return Query{SQL: sb.String(), Args: b.Args()}
}

const groupedRows = `  SELECT
    br.anchor_date,
    br.channel_key,
    br.sale_type,
    COUNT(DISTINCT br.order_num) AS booking_count,
    SUM(br.deposit) AS deposit
  FROM booking_rows br
  GROUP BY br.anchor_date, br.channel_key, br.sale_type
`

// dateType resolves the effective date type under the current capabilities.
func (c *Composer) dateType(f report.Filter) report.DateType {
	if f.DateType == report.DateTypeEither && !c.Caps.LegacyEitherDate {
		return report.DateTypeOrder
	}
	return f.DateType
}

func (c *Composer) statusFilter(f report.Filter) report.StatusFilter {
	if !c.Caps.StatusFilter {
		return report.StatusAll
	}
	return f.OrderStatus
}

// includeOffers reports whether the booking_master_offer branch can contribute.
// Offer rows carry no check-in date, sale type, hotel or cancellation state.
func (c *Composer) includeOffers(f report.Filter) bool {
	if !c.Caps.OfferBookings {
		return false
	}
	if c.dateType(f) == report.DateTypeUse {
		return false
	}
	if c.Caps.SaleType && f.SaleType != report.SaleTypeAll {
		return false
	}
	if len(f.HotelIDs) > 0 {
		return false
	}
	return c.statusFilter(f) != report.StatusCancelled
}

func (c *Composer) window(f report.Filter) (start, endExclusive string) {
	start = report.DateOf(f.StartDate).Format(report.DateLayout)
	endExclusive = report.DateOf(f.EndDate).AddDate(0, 0, 1).Format(report.DateLayout)
	return start, endExclusive
}

func (c *Composer) bookingRows(b *Binder, f report.Filter, g report.Grouping, sel channel.Selection, pushdown bool) string {
	var sb strings.Builder
	sb.WriteString("WITH booking_rows AS (\n")
	sb.WriteString(c.orderProductBranch(b, f, g, sel, pushdown))
	if c.includeOffers(f) {
		sb.WriteString("  UNION ALL\n")
		sb.WriteString(c.offerBranch(b, f, sel, pushdown))
	}
	sb.WriteString(")\n")
	return sb.String()
}

func (c *Composer) orderProductBranch(b *Binder, f report.Filter, g report.Grouping, sel channel.Selection, pushdown bool) string {
	start, end := c.window(f)
	today := c.Today().Format(report.DateLayout)

	anchor := "op.create_date"
	var dateRange Predicate = Between{Column: "op.create_date", From: start, To: end}
	switch c.dateType(f) {
	case report.DateTypeUse:
		anchor = "op.checkin_date"
		dateRange = Between{Column: "op.checkin_date", From: start, To: end}
	case report.DateTypeEither:
		dateRange = Or{
			Between{Column: "op.checkin_date", From: start, To: end},
			Between{Column: "op.create_date", From: start, To: end},
		}
	}

	confirmed := b.BindOnce("status:confirmed", c.Taxonomy.Codes(status.Confirmed))
	cancelled := b.BindOnce("status:cancelled", c.Taxonomy.Codes(status.Cancelled))

	hotelName, hotelCode := "op.product_name::text", "NULL::text"
	if g == report.GroupByDateHotelChannel {
		hotelName, hotelCode = "COALESCE(p.name_kr, op.product_name)::text", "p.product_code::text"
	}
	saleType := "''::text"
	if c.Caps.SaleType {
		saleType = "COALESCE(pr.sale_type, '')::text"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `  SELECT
    %s::date AS anchor_date,
    op.order_num::text AS order_num,
    op.product_idx::bigint AS hotel_id,
    %s AS hotel_name,
    %s AS hotel_code,
    op.order_channel_idx::bigint AS channel_idx,
    op.order_type::text AS channel_code,
    'order_product'::text AS source,
    CASE WHEN op.order_channel_idx IS NOT NULL THEN 'idx:' || op.order_channel_idx::text
      ELSE 'order_product:' || COALESCE(op.order_type, '') END AS channel_key,
    CASE WHEN op.order_product_status = ANY(%s) THEN 'confirmed'
      WHEN op.order_product_status = ANY(%s) THEN 'cancelled'
      ELSE 'other' END AS status_group,
    (COALESCE(op.terms, 1) * COALESCE(op.room_cnt, 0))::bigint AS room_nights,
    (%s)::numeric AS deposit,
    COALESCE(opay.total_amount, 0)::numeric AS purchase,
    %s AS sale_type
  FROM order_product op
  LEFT JOIN order_pay opay ON op.order_pay_idx = opay.idx
`, anchor, hotelName, hotelCode, confirmed, cancelled, c.deposit(), saleType)

	if c.Caps.SaleType {
		sb.WriteString("  LEFT JOIN product_rateplan pr ON op.rateplan_idx = pr.idx\n")
	}
	if g == report.GroupByDateHotelChannel {
		sb.WriteString("  LEFT JOIN product p ON op.product_idx = p.idx\n")
	}
	if c.Caps.Revenue != report.RevenueAmount {
		sb.WriteString(`  LEFT JOIN LATERAL (
    SELECT SUM(oi.due_price) AS due_total
    FROM order_item oi
    WHERE oi.order_product_idx = op.idx
  ) items ON TRUE
`)
	}

	preds := []Predicate{
		dateRange,
		Before{Column: "op.create_date", Value: today},
	}
	if p := c.statusPredicate(f); p != nil {
		preds = append(preds, p)
	}
	if c.Caps.SaleType && f.SaleType != report.SaleTypeAll {
		preds = append(preds, Equal{Column: "pr.sale_type", Value: string(f.SaleType)})
	}
	if len(f.HotelIDs) > 0 {
		preds = append(preds, In{Column: "op.product_idx", Values: append([]int64(nil), f.HotelIDs...)})
	}
	if pushdown && !sel.Empty() {
		preds = append(preds, Or{
			In{Column: "op.order_channel_idx", Values: nonNilInts(sel.Indices)},
			And{
				NotIn{Column: "op.order_channel_idx", Values: nonNilInts(sel.KnownIndices)},
				In{Column: "lower(op.order_type)", Values: lowered(sel.Codes[report.SourceOrderProduct])},
			},
		})
	}
	sb.WriteString("  WHERE ")
	sb.WriteString(Where(b, preds, "    "))
	sb.WriteString("\n")
	return sb.String()
}

func (c *Composer) offerBranch(b *Binder, f report.Filter, sel channel.Selection, pushdown bool) string {
	start, end := c.window(f)
	today := c.Today().Format(report.DateLayout)

	statuses := channel.OfferStatuses()
	codes := make([]string, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	accepted := make(Or, 0, len(codes))
	for _, code := range codes {
		accepted = append(accepted, And{
			Equal{Column: "bmo.bmo_sup_code", Value: code},
			Equal{Column: "bmo.bmo_booking_status", Value: statuses[code]},
		})
	}

	preds := []Predicate{
		Between{Column: "bmo.bmo_create_data", From: start, To: end},
		Before{Column: "bmo.bmo_create_data", Value: today},
		Raw("bmo.bmo_booking_top_status = 1"),
		Raw("COALESCE(bmo.bmo_bh_no, bmo.bmo_hotelconfirm_no) IS NOT NULL"),
		accepted,
	}
	if pushdown && !sel.Empty() {
		preds = append(preds, In{Column: "lower(bmo.bmo_sup_code)", Values: lowered(sel.Codes[report.SourceOffer])})
	}

	return `  SELECT
    bmo.bmo_create_data::date AS anchor_date,
    COALESCE(bmo.bmo_bh_no, bmo.bmo_hotelconfirm_no)::text AS order_num,
    NULL::bigint AS hotel_id,
    NULL::text AS hotel_name,
    NULL::text AS hotel_code,
    NULL::bigint AS channel_idx,
    bmo.bmo_sup_code::text AS channel_code,
    'booking_master_offer'::text AS source,
    'booking_master_offer:' || COALESCE(bmo.bmo_sup_code, '') AS channel_key,
    'confirmed'::text AS status_group,
    0::bigint AS room_nights,
    COALESCE(bmo.bmo_tot_amount_after_tax, 0)::numeric AS deposit,
    COALESCE(bmo.bmo_tot_amount_after_tax, 0)::numeric AS purchase,
    ''::text AS sale_type
  FROM booking_master_offer bmo
  WHERE ` + Where(b, preds, "    ") + "\n"
}

// deposit is the per-row revenue expression of the configured formula.
func (c *Composer) deposit() string {
	switch c.Caps.Revenue {
	case report.RevenueDuePrice:
		return "COALESCE(items.due_total, 0) * COALESCE(op.room_cnt, 1)"
	case report.RevenueDuePriceTerms:
		return "COALESCE(items.due_total, 0) * COALESCE(op.room_cnt, 1) * COALESCE(op.terms, 1)"
	default:
		return "COALESCE(op.original_amount, 0)"
	}
}

// statusPredicate restricts order_product rows by status group. "all" keeps only
// codes the taxonomy knows; an empty group applies no restriction.
func (c *Composer) statusPredicate(f report.Filter) Predicate {
	var codes []string
	switch c.statusFilter(f) {
	case report.StatusConfirmed:
		codes = c.Taxonomy.Codes(status.Confirmed)
	case report.StatusCancelled:
		codes = c.Taxonomy.Codes(status.Cancelled)
	default:
		codes = c.Taxonomy.Known()
	}
	if len(codes) == 0 {
		return nil
	}
	return In{Column: "op.order_product_status", Values: codes}
}

func (c *Composer) detailSelect(g report.Grouping) string {
	dateCol := "br.anchor_date"
	groupBy := "br.anchor_date, br.channel_key, br.sale_type"
	orderBy := "booking_date DESC, booking_count DESC, br.channel_key, br.sale_type"
	hotelCols := "NULL::bigint AS hotel_id,\n  NULL::text AS hotel_name,\n  NULL::text AS hotel_code"
	switch g {
	case report.GroupByChannel:
		dateCol = "NULL::date"
		groupBy = "br.channel_key, br.sale_type"
		orderBy = "booking_count DESC, br.channel_key, br.sale_type"
	case report.GroupByDateHotelChannel:
		groupBy = "br.anchor_date, br.hotel_id, br.channel_key, br.sale_type"
		orderBy = "booking_date DESC, hotel_name ASC, booking_count DESC, br.channel_key, br.sale_type"
		hotelCols = "br.hotel_id,\n  MIN(br.hotel_name) AS hotel_name,\n  MIN(br.hotel_code) AS hotel_code"
	}

	confirmedRooms := "SUM(CASE WHEN br.status_group = 'confirmed' THEN br.room_nights ELSE 0 END)"
	cancelledRooms := "SUM(CASE WHEN br.status_group = 'cancelled' THEN br.room_nights ELSE 0 END)"
	cancellationRate := fmt.Sprintf("CASE WHEN SUM(br.room_nights) = 0 THEN 0\n    ELSE %s::numeric / SUM(br.room_nights) * 100 END", cancelledRooms)
	if !c.Caps.RoomSplit {
		confirmedRooms, cancelledRooms, cancellationRate = "0::bigint", "0::bigint", "0::numeric"
	}

	return fmt.Sprintf(`SELECT
  %s AS booking_date,
  br.channel_key,
  MIN(br.channel_idx) AS channel_idx,
  MIN(br.source) AS source,
  MIN(br.channel_code) AS channel_code,
  string_agg(DISTINCT br.channel_code, ', ' ORDER BY br.channel_code) AS channel_codes,
  br.sale_type,
  %s,
  COUNT(DISTINCT br.order_num) AS booking_count,
  COUNT(DISTINCT br.hotel_name) AS hotel_count,
  SUM(br.room_nights) AS total_rooms,
  %s AS confirmed_rooms,
  %s AS cancelled_rooms,
  %s AS cancellation_rate,
  SUM(br.deposit) AS total_deposit,
  SUM(br.purchase) AS total_purchase,
  SUM(br.purchase) - SUM(br.deposit) AS total_profit,
  CASE WHEN SUM(br.deposit) = 0 THEN 0
    ELSE (SUM(br.purchase) - SUM(br.deposit)) / SUM(br.deposit) * 100 END AS profit_rate
FROM booking_rows br
GROUP BY %s
ORDER BY %s
`, dateCol, hotelCols, confirmedRooms, cancelledRooms, cancellationRate, groupBy, orderBy)
}

func nonNilInts(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}

func lowered(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := map[string]bool{}
	for _, c := range codes {
		l := strings.ToLower(strings.TrimSpace(c))
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
