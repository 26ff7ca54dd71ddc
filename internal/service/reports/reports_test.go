package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/report/normalize"
	"github.com/samirwankhede/channel-booking-reports/internal/report/query"
	"github.com/samirwankhede/channel-booking-reports/internal/report/status"
)

type fakeStore struct {
	rows    []normalize.RawRow
	summary normalize.RawSummary
	trend   []normalize.RawTrend
	err     error
	queries []query.Query
}

func (f *fakeStore) Detail(_ context.Context, q query.Query) ([]normalize.RawRow, error) {
	f.queries = append(f.queries, q)
	return f.rows, f.err
}

func (f *fakeStore) Summary(_ context.Context, q query.Query) (normalize.RawSummary, error) {
	f.queries = append(f.queries, q)
	return f.summary, f.err
}

func (f *fakeStore) Snapshot(_ context.Context, d, s query.Query) ([]normalize.RawRow, normalize.RawSummary, error) {
	f.queries = append(f.queries, d, s)
	return f.rows, f.summary, f.err
}

func (f *fakeStore) Trend(_ context.Context, q query.Query) ([]normalize.RawTrend, error) {
	f.queries = append(f.queries, q)
	return f.trend, f.err
}

type fakeReference struct {
	entries []channel.ReferenceEntry
	errs    []error
	calls   int
}

func (f *fakeReference) Channels(context.Context) ([]channel.ReferenceEntry, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.entries, nil
}

type memCache struct {
	names []string
	sets  int
}

func (m *memCache) Get(context.Context) ([]string, bool, error) { return m.names, m.names != nil, nil }
func (m *memCache) Set(_ context.Context, n []string) error     { m.names = n; m.sets++; return nil }
func (m *memCache) Invalidate(context.Context) error            { m.names = nil; return nil }

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func newService(st Store, ref ReferenceSource, cache ChannelCache) *ReportsService {
	tax, _ := status.New(status.Defaults())
	composer := &query.Composer{
		Caps:     report.CapabilitiesFor("v1.5"),
		Taxonomy: tax,
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC) },
	}
	s := NewReportsService(zap.NewNop(), st, ref, cache, composer, channel.IndexTable{40: "Booking.com"})
	s.sleep = func(context.Context, time.Duration) error { return nil }
	return s
}

func filter(channels ...string) report.Filter {
	return report.Filter{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC),
		DateType:  report.DateTypeOrder,
		Channels:  channels,
	}
}

func expediaRows() []normalize.RawRow {
	day := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	return []normalize.RawRow{
		{BookingDate: &day, ChannelKey: "idx:3", ChannelIdx: ptr(int64(3)), Source: "order_product", ChannelCode: ptr("expedia"),
			BookingCount: 3, TotalRooms: dec("6"), ConfirmedRooms: dec("6"), CancelledRooms: dec("0"), CancellationRate: dec("0")},
		{BookingDate: &day, ChannelKey: "order_product:hiot", Source: "order_product", ChannelCode: ptr("hiot"), BookingCount: 1},
	}
}

func TestBookingsResolvesAndLimits(t *testing.T) {
	st := &fakeStore{rows: expediaRows()}
	ref := &fakeReference{entries: []channel.ReferenceEntry{{RowID: 1, Index: 3, Name: "Expedia"}}}
	s := newService(st, ref, nil)

	res := s.Bookings(context.Background(), filter(report.AllChannels), report.GroupByDateChannel, 1)
	assert.Empty(t, res.Message)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Expedia", res.Rows[0].ChannelName)
	assert.Equal(t, int64(6), res.Rows[0].ConfirmedRooms)
}

func TestBookingsSelectionIsPushedDown(t *testing.T) {
	st := &fakeStore{rows: expediaRows()}
	ref := &fakeReference{entries: []channel.ReferenceEntry{{RowID: 1, Index: 3, Name: "Expedia"}}}
	s := newService(st, ref, nil)

	res := s.Bookings(context.Background(), filter("Expedia"), report.GroupByDateChannel, 0)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Expedia", res.Rows[0].ChannelName)
	require.Len(t, st.queries, 1)
	assert.Empty(t, st.queries[0].Residual)
	assert.Contains(t, st.queries[0].Args, []int64{3})
}

func TestReferenceFailureDegradesToStatic(t *testing.T) {
	st := &fakeStore{rows: expediaRows()}
	ref := &fakeReference{errs: []error{errors.New("db down")}}
	s := newService(st, ref, nil)

	res := s.Bookings(context.Background(), filter(report.AllChannels), report.GroupByDateChannel, 0)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Expedia", res.Rows[0].ChannelName, "static table resolves the raw code")
	assert.Equal(t, "하이오티", res.Rows[1].ChannelName)
}

func TestFailuresBecomeEmptyResults(t *testing.T) {
	st := &fakeStore{err: errors.New("connection refused")}
	s := newService(st, nil, nil)
	ctx := context.Background()

	b := s.Bookings(ctx, filter(report.AllChannels), report.GroupByDateChannel, 10)
	assert.NotNil(t, b.Rows)
	assert.Empty(t, b.Rows)
	assert.Equal(t, FetchFailedMessage, b.Message)

	sum := s.Summary(ctx, filter(report.AllChannels))
	assert.Equal(t, report.Summary{}, sum.Summary)
	assert.Equal(t, FetchFailedMessage, sum.Message)

	tr := s.Trend(ctx, filter(report.AllChannels))
	assert.NotNil(t, tr.Points)
	assert.Equal(t, FetchFailedMessage, tr.Message)

	r := s.Report(ctx, filter(report.AllChannels), report.GroupByDateChannel)
	assert.NotNil(t, r.Rows)
	assert.Equal(t, FetchFailedMessage, r.Message)

	_, _, err := s.Fetch(ctx, filter(report.AllChannels), report.GroupByDateChannel)
	assert.Error(t, err)
}

func TestEmptyResultIsNotAnError(t *testing.T) {
	s := newService(&fakeStore{}, nil, nil)

	res := s.Bookings(context.Background(), filter(report.AllChannels), report.GroupByDateChannel, 10)
	assert.Empty(t, res.Message)
	assert.NotNil(t, res.Rows)
	assert.Equal(t, 0, res.Total)
}

func TestReportSummaryMatchesDetail(t *testing.T) {
	st := &fakeStore{rows: expediaRows(), summary: normalize.RawSummary{TotalBookings: dec("4"), TotalRevenue: dec("0"), ChannelCount: 2, ActiveDays: 1}}
	s := newService(st, &fakeReference{}, nil)

	r := s.Report(context.Background(), filter(report.AllChannels), report.GroupByDateChannel)
	var sum int64
	for _, row := range r.Rows {
		sum += row.BookingCount
	}
	assert.Equal(t, r.Summary.TotalBookings, sum)
	require.Len(t, st.queries, 2)
	assert.Contains(t, st.queries[1].SQL, "total_bookings")
}

func TestSelectedChannelTotalsIgnoreCodeCase(t *testing.T) {
	day := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	rows := []normalize.RawRow{{BookingDate: &day, ChannelKey: "order_product:trip", Source: "order_product", ChannelCode: ptr("TRIP"),
		BookingCount: 4, TotalRooms: dec("4"), ConfirmedRooms: dec("4"), CancelledRooms: dec("0"), CancellationRate: dec("0")}}

	for _, version := range []string{"v1.5", "v1.3"} {
		t.Run(version, func(t *testing.T) {
			st := &fakeStore{rows: rows, summary: normalize.RawSummary{TotalBookings: dec("4"), TotalRevenue: dec("0"), ChannelCount: 1, ActiveDays: 1}}
			s := newService(st, &fakeReference{}, nil)
			s.Composer().Caps = report.CapabilitiesFor(version)

			r := s.Report(context.Background(), filter("Trip"), report.GroupByDateChannel)
			require.Empty(t, r.Message)
			require.Len(t, r.Rows, 1)
			assert.Equal(t, "Trip", r.Rows[0].ChannelName)
			assert.Equal(t, r.Summary.TotalBookings, r.Rows[0].BookingCount)
			assert.Contains(t, st.queries[1].Args, []string{"trip"})
		})
	}
}

func TestChannelsCachesAndRetries(t *testing.T) {
	ref := &fakeReference{
		entries: []channel.ReferenceEntry{{RowID: 1, Index: 3, Name: "Expedia"}, {RowID: 2, Index: 4, Name: "all"}},
		errs:    []error{errors.New("timeout"), nil},
	}
	cache := &memCache{}
	s := newService(&fakeStore{}, ref, cache)
	ctx := context.Background()

	names := s.Channels(ctx)
	assert.Equal(t, report.AllChannels, names[0])
	assert.Contains(t, names, "Expedia")
	assert.Contains(t, names, "Booking.com")
	assert.Equal(t, 1, countOf(names, report.AllChannels))
	assert.IsNonDecreasing(t, names[1:])
	assert.Equal(t, 2, ref.calls)
	assert.Equal(t, 1, cache.sets)

	again := s.Channels(ctx)
	assert.Equal(t, names, again)
	assert.Equal(t, 2, ref.calls, "served from cache")

	require.NoError(t, s.InvalidateChannels(ctx))
	s.Channels(ctx)
	assert.Equal(t, 3, ref.calls)
}

func TestChannelsFallsBackToStaticNames(t *testing.T) {
	boom := errors.New("down")
	ref := &fakeReference{errs: []error{boom, boom, boom}}
	cache := &memCache{}
	s := newService(&fakeStore{}, ref, cache)

	names := s.Channels(context.Background())
	assert.Equal(t, 3, ref.calls)
	assert.Equal(t, report.AllChannels, names[0])
	assert.Contains(t, names, "Agoda")
	assert.Contains(t, names, "Booking.com")
	assert.Equal(t, 0, cache.sets)
}

func countOf(xs []string, v string) int {
	n := 0
	for _, x := range xs {
		if x == v {
			n++
		}
	}
	return n
}
