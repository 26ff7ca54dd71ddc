package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	jwtMiddleware "github.com/samirwankhede/channel-booking-reports/internal/middleware"
	"github.com/samirwankhede/channel-booking-reports/internal/report"
	reportsService "github.com/samirwankhede/channel-booking-reports/internal/service/reports"
)

const secret = "test-secret"

type fakeService struct {
	filter      report.Filter
	grouping    report.Grouping
	limit       int
	invalidated bool
}

func (f *fakeService) Bookings(_ context.Context, fl report.Filter, g report.Grouping, limit int) reportsService.BookingsResult {
	f.filter, f.grouping, f.limit = fl, g, limit
	return reportsService.BookingsResult{Rows: []report.BookingRecord{{ChannelName: "Expedia", BookingCount: 2}}, Total: 5}
}

func (f *fakeService) ChannelPerformance(ctx context.Context, fl report.Filter, limit int) reportsService.BookingsResult {
	return f.Bookings(ctx, fl, report.GroupByChannel, limit)
}

func (f *fakeService) HotelStatistics(ctx context.Context, fl report.Filter, limit int) reportsService.BookingsResult {
	return f.Bookings(ctx, fl, report.GroupByDateHotelChannel, limit)
}

func (f *fakeService) Summary(_ context.Context, fl report.Filter) reportsService.SummaryResult {
	f.filter = fl
	return reportsService.SummaryResult{Message: reportsService.FetchFailedMessage}
}

func (f *fakeService) Trend(_ context.Context, fl report.Filter) reportsService.TrendResult {
	f.filter = fl
	return reportsService.TrendResult{Points: []report.TrendPoint{}}
}

func (f *fakeService) Report(_ context.Context, fl report.Filter, g report.Grouping) reportsService.Result {
	f.filter, f.grouping = fl, g
	return reportsService.Result{Rows: []report.BookingRecord{}}
}

func (f *fakeService) Channels(context.Context) []string { return []string{"all", "Agoda", "Expedia"} }

func (f *fakeService) InvalidateChannels(context.Context) error {
	f.invalidated = true
	return nil
}

func setup(t *testing.T) (*gin.Engine, *fakeService, string) {
	gin.SetMode(gin.TestMode)
	svc := &fakeService{}
	params := FilterParams{
		Location: time.UTC,
		Limits:   report.DefaultLimits(),
		Now:      func() time.Time { return time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC) },
	}
	r := gin.New()
	NewReportsHandler(zap.NewNop(), svc, params, 100, secret).Register(r)
	token, err := jwtMiddleware.Issue(secret, "op-1", "admin", time.Hour)
	require.NoError(t, err)
	return r, svc, token
}

func get(r *gin.Engine, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBookingsParsesFilter(t *testing.T) {
	r, svc, token := setup(t)

	w := get(r, token, "/v1/reports/bookings?start_date=2025-01-01&end_date=2025-01-07&date_type=useDate&channels=Expedia,Agoda&channels=Trip&order_status=cancelled&top=10")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), svc.filter.StartDate)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), svc.filter.EndDate)
	assert.Equal(t, report.DateTypeUse, svc.filter.DateType)
	assert.Equal(t, []string{"Expedia", "Agoda", "Trip"}, svc.filter.Channels)
	assert.Equal(t, report.StatusCancelled, svc.filter.OrderStatus)
	assert.Equal(t, report.GroupByDateChannel, svc.grouping)
	assert.Equal(t, 10, svc.limit)

	var body reportsService.BookingsResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Total)
	assert.Len(t, body.Rows, 1)
}

func TestDefaultsToLastWeek(t *testing.T) {
	r, svc, token := setup(t)

	w := get(r, token, "/v1/reports/summary")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), svc.filter.EndDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), svc.filter.StartDate)
	assert.Equal(t, []string{report.AllChannels}, svc.filter.Channels)
	assert.Contains(t, w.Body.String(), reportsService.FetchFailedMessage)
}

func TestUseDateAllowsUpcomingCheckIns(t *testing.T) {
	r, svc, token := setup(t)

	w := get(r, token, "/v1/reports/bookings?date_type=useDate&start_date=2025-01-10&end_date=2025-04-08")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC), svc.filter.EndDate)

	w = get(r, token, "/v1/reports/bookings?date_type=useDate")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), svc.filter.EndDate)
}

func TestInvalidFilters(t *testing.T) {
	r, _, token := setup(t)

	for _, q := range []string{
		"start_date=2025-13-01",
		"start_date=2025-01-07&end_date=2025-01-01",
		"end_date=2025-01-08",
		"start_date=2024-09-01&end_date=2025-01-07",
		"start_date=2024-10-09&end_date=2025-01-07",
		"date_type=useDate&start_date=2025-04-01&end_date=2025-04-09",
		"hotel_ids=abc",
	} {
		w := get(r, token, "/v1/reports/bookings?"+q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Contains(t, w.Body.String(), "invalid filter", q)
	}
}

func TestGroupedEndpoints(t *testing.T) {
	r, svc, token := setup(t)

	require.Equal(t, http.StatusOK, get(r, token, "/v1/reports/channels").Code)
	assert.Equal(t, report.GroupByChannel, svc.grouping)
	assert.Equal(t, 100, svc.limit)

	require.Equal(t, http.StatusOK, get(r, token, "/v1/reports/hotels?hotel_ids=7,9").Code)
	assert.Equal(t, report.GroupByDateHotelChannel, svc.grouping)
	assert.Equal(t, []int64{7, 9}, svc.filter.HotelIDs)

	require.Equal(t, http.StatusOK, get(r, token, "/v1/reports?grouping=channel").Code)
	assert.Equal(t, report.GroupByChannel, svc.grouping)

	require.Equal(t, http.StatusOK, get(r, token, "/v1/reports/trend").Code)
}

func TestChannels(t *testing.T) {
	r, svc, token := setup(t)

	w := get(r, token, "/v1/channels")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"channels":["all","Agoda","Expedia"]}`, w.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/v1/channels/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.invalidated)
}

func TestRequiresSession(t *testing.T) {
	r, _, _ := setup(t)
	assert.Equal(t, http.StatusUnauthorized, get(r, "", "/v1/reports/bookings").Code)
}
