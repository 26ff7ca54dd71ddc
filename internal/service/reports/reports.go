package reports

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/metrics"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
	"github.com/samirwankhede/channel-booking-reports/internal/report/normalize"
	"github.com/samirwankhede/channel-booking-reports/internal/report/query"
)

// FetchFailedMessage is shown when the store could not answer.
const FetchFailedMessage = "failed to load report data, please try again later"

// Store executes composed statements.
type Store interface {
	Detail(ctx context.Context, q query.Query) ([]normalize.RawRow, error)
	Summary(ctx context.Context, q query.Query) (normalize.RawSummary, error)
	Snapshot(ctx context.Context, detail, summary query.Query) ([]normalize.RawRow, normalize.RawSummary, error)
	Trend(ctx context.Context, q query.Query) ([]normalize.RawTrend, error)
}

// ReferenceSource loads the live channel reference table.
type ReferenceSource interface {
	Channels(ctx context.Context) ([]channel.ReferenceEntry, error)
}

// ChannelCache holds the channel list between refreshes.
type ChannelCache interface {
	Get(ctx context.Context) ([]string, bool, error)
	Set(ctx context.Context, names []string) error
	Invalidate(ctx context.Context) error
}

type BookingsResult struct {
	Rows    []report.BookingRecord `json:"rows"`
	Total   int                    `json:"total"`
	Message string                 `json:"message,omitempty"`
}

type SummaryResult struct {
	Summary report.Summary `json:"summary"`
	Message string         `json:"message,omitempty"`
}

type TrendResult struct {
	Points  []report.TrendPoint `json:"points"`
	Message string              `json:"message,omitempty"`
}

// Result is a detail table with its summary from one snapshot.
type Result struct {
	Rows    []report.BookingRecord `json:"rows"`
	Summary report.Summary         `json:"summary"`
	Message string                 `json:"message,omitempty"`
}

type ReportsService struct {
	log       *zap.Logger
	store     Store
	reference ReferenceSource
	cache     ChannelCache
	composer  *query.Composer
	master    channel.IndexTable

	retries int
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewReportsService(log *zap.Logger, store Store, reference ReferenceSource, cache ChannelCache, composer *query.Composer, master channel.IndexTable) *ReportsService {
	return &ReportsService{
		log:       log,
		store:     store,
		reference: reference,
		cache:     cache,
		composer:  composer,
		master:    master,
		retries:   3,
		backoff:   2 * time.Second,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *ReportsService) Composer() *query.Composer { return s.composer }

// resolver builds the per-request resolution chain. A reference load failure
// degrades to the static tiers.
func (s *ReportsService) resolver(ctx context.Context) *channel.Resolver {
	var entries []channel.ReferenceEntry
	if s.reference != nil {
		var err error
		entries, err = s.reference.Channels(ctx)
		if err != nil {
			s.log.Warn("channel reference unavailable, using static tables", zap.Error(err))
			entries = nil
		}
	}
	return channel.Build(entries, s.master)
}

func selection(r *channel.Resolver, f report.Filter) channel.Selection {
	if f.AllChannelsSelected() {
		return channel.Selection{}
	}
	return r.Expand(f.Channels)
}

func observe(kind string) func() {
	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues(kind))
	return func() { timer.ObserveDuration() }
}

func (s *ReportsService) failed(kind string, f report.Filter, err error) {
	metrics.QueryFailuresTotal.WithLabelValues(kind).Inc()
	s.log.Error("report query failed",
		zap.String("kind", kind),
		zap.Time("start", f.StartDate),
		zap.Time("end", f.EndDate),
		zap.String("date_type", string(f.DateType)),
		zap.Error(err),
	)
}

// Bookings returns up to limit detail rows and the total row count. limit <= 0
// returns every row.
func (s *ReportsService) Bookings(ctx context.Context, f report.Filter, g report.Grouping, limit int) BookingsResult {
	r := s.resolver(ctx)
	q := s.composer.Compose(f, g, selection(r, f))

	done := observe("detail")
	raw, err := s.store.Detail(ctx, q)
	done()
	if err != nil {
		s.failed("detail", f, err)
		return BookingsResult{Rows: []report.BookingRecord{}, Message: FetchFailedMessage}
	}

	rows := normalize.Rows(raw, r, q.Residual)
	res := BookingsResult{Rows: rows, Total: len(rows)}
	if limit > 0 && len(rows) > limit {
		res.Rows = rows[:limit]
	}
	return res
}

func (s *ReportsService) ChannelPerformance(ctx context.Context, f report.Filter, limit int) BookingsResult {
	return s.Bookings(ctx, f, report.GroupByChannel, limit)
}

func (s *ReportsService) HotelStatistics(ctx context.Context, f report.Filter, limit int) BookingsResult {
	return s.Bookings(ctx, f, report.GroupByDateHotelChannel, limit)
}

func (s *ReportsService) Summary(ctx context.Context, f report.Filter) SummaryResult {
	r := s.resolver(ctx)
	q := s.composer.ComposeSummary(f, selection(r, f))

	done := observe("summary")
	raw, err := s.store.Summary(ctx, q)
	done()
	if err != nil {
		s.failed("summary", f, err)
		return SummaryResult{Message: FetchFailedMessage}
	}
	return SummaryResult{Summary: normalize.Summary(raw)}
}

func (s *ReportsService) Trend(ctx context.Context, f report.Filter) TrendResult {
	r := s.resolver(ctx)
	q := s.composer.ComposeTrend(f, selection(r, f))

	done := observe("trend")
	raw, err := s.store.Trend(ctx, q)
	done()
	if err != nil {
		s.failed("trend", f, err)
		return TrendResult{Points: []report.TrendPoint{}, Message: FetchFailedMessage}
	}
	return TrendResult{Points: normalize.Trend(raw)}
}

// Fetch runs the detail and summary statements against one snapshot and
// returns the store error unchanged.
func (s *ReportsService) Fetch(ctx context.Context, f report.Filter, g report.Grouping) ([]report.BookingRecord, report.Summary, error) {
	r := s.resolver(ctx)
	sel := selection(r, f)
	detail := s.composer.Compose(f, g, sel)
	summary := s.composer.ComposeSummary(f, sel)

	done := observe("report")
	raw, rawSummary, err := s.store.Snapshot(ctx, detail, summary)
	done()
	if err != nil {
		return []report.BookingRecord{}, report.Summary{}, err
	}
	return normalize.Rows(raw, r, detail.Residual), normalize.Summary(rawSummary), nil
}

// Report is Fetch with failures turned into an empty result and a message.
func (s *ReportsService) Report(ctx context.Context, f report.Filter, g report.Grouping) Result {
	rows, sum, err := s.Fetch(ctx, f, g)
	if err != nil {
		s.failed("report", f, err)
		return Result{Rows: []report.BookingRecord{}, Message: FetchFailedMessage}
	}
	return Result{Rows: rows, Summary: sum}
}

// Channels lists selectable channel names, "all" first. The list is cached; a
// store that stays down after the retries yields the static names uncached.
func (s *ReportsService) Channels(ctx context.Context) []string {
	if s.cache != nil {
		names, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("channel cache read failed", zap.Error(err))
		}
		if ok {
			metrics.ChannelCacheTotal.WithLabelValues("hit").Inc()
			return names
		}
		metrics.ChannelCacheTotal.WithLabelValues("miss").Inc()
	}

	entries, err := s.loadReference(ctx)
	if err != nil {
		metrics.ChannelCacheTotal.WithLabelValues("fallback").Inc()
		s.log.Warn("channel list falling back to static names", zap.Error(err))
		return withSentinel(channel.Build(nil, s.master).Names())
	}

	names := withSentinel(channel.Build(entries, s.master).Names())
	if s.cache != nil {
		if err := s.cache.Set(ctx, names); err != nil {
			s.log.Warn("channel cache write failed", zap.Error(err))
		}
	}
	return names
}

func (s *ReportsService) loadReference(ctx context.Context) ([]channel.ReferenceEntry, error) {
	if s.reference == nil {
		return nil, nil
	}
	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		entries, err := s.reference.Channels(ctx)
		if err == nil {
			return entries, nil
		}
		lastErr = err
		s.log.Warn("channel reference load failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < s.retries {
			if err := s.sleep(ctx, s.backoff); err != nil {
				return nil, errors.Join(lastErr, err)
			}
		}
	}
	return nil, lastErr
}

// InvalidateChannels drops the cached channel list.
func (s *ReportsService) InvalidateChannels(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}

func withSentinel(names []string) []string {
	out := make([]string, 0, len(names)+1)
	out = append(out, report.AllChannels)
	for _, n := range names {
		if n == report.AllChannels {
			continue
		}
		out = append(out, n)
	}
	return out
}
