package reports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/report/normalize"
	"github.com/samirwankhede/channel-booking-reports/internal/report/query"
	"github.com/samirwankhede/channel-booking-reports/internal/store"
)

// ReportsRepository executes composed report statements. It never writes.
type ReportsRepository struct {
	db  *store.DB
	log *zap.Logger
}

func NewReportsRepository(db *store.DB, log *zap.Logger) *ReportsRepository {
	return &ReportsRepository{db: db, log: log}
}

func (r *ReportsRepository) Detail(ctx context.Context, q query.Query) ([]normalize.RawRow, error) {
	return r.detail(ctx, r.db.Pool, q)
}

func (r *ReportsRepository) Summary(ctx context.Context, q query.Query) (normalize.RawSummary, error) {
	return r.summary(ctx, r.db.Pool, q)
}

// Snapshot runs the detail and summary statements sequentially against one
// read-only snapshot.
func (r *ReportsRepository) Snapshot(ctx context.Context, detail, summary query.Query) ([]normalize.RawRow, normalize.RawSummary, error) {
	var (
		rows []normalize.RawRow
		sum  normalize.RawSummary
	)
	err := r.db.ReadOnly(ctx, func(tx pgx.Tx) error {
		var err error
		if rows, err = r.detail(ctx, tx, detail); err != nil {
			return err
		}
		sum, err = r.summary(ctx, tx, summary)
		return err
	})
	return rows, sum, err
}

func (r *ReportsRepository) Trend(ctx context.Context, q query.Query) ([]normalize.RawTrend, error) {
	r.debug("trend", q)
	rows, err := r.db.Pool.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []normalize.RawTrend
	for rows.Next() {
		var t normalize.RawTrend
		if err := rows.Scan(&t.Date, &t.Bookings, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *ReportsRepository) detail(ctx context.Context, db store.Querier, q query.Query) ([]normalize.RawRow, error) {
	r.debug("detail", q)
	rows, err := db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []normalize.RawRow
	for rows.Next() {
		var raw normalize.RawRow
		err := rows.Scan(
			&raw.BookingDate, &raw.ChannelKey, &raw.ChannelIdx, &raw.Source,
			&raw.ChannelCode, &raw.ChannelCodes, &raw.SaleType,
			&raw.HotelID, &raw.HotelName, &raw.HotelCode,
			&raw.BookingCount, &raw.HotelCount,
			&raw.TotalRooms, &raw.ConfirmedRooms, &raw.CancelledRooms, &raw.CancellationRate,
			&raw.TotalDeposit, &raw.TotalPurchase, &raw.TotalProfit, &raw.ProfitRate,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, rows.Err()
}

func (r *ReportsRepository) summary(ctx context.Context, db store.Querier, q query.Query) (normalize.RawSummary, error) {
	r.debug("summary", q)
	var s normalize.RawSummary
	err := db.QueryRow(ctx, q.SQL, q.Args...).Scan(&s.TotalBookings, &s.TotalRevenue, &s.ChannelCount, &s.ActiveDays)
	return s, err
}

func (r *ReportsRepository) debug(kind string, q query.Query) {
	if ce := r.log.Check(zap.DebugLevel, "report query"); ce != nil {
		ce.Write(zap.String("kind", kind), zap.String("sql", q.Inline()))
	}
}
