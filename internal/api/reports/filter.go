package reports

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samirwankhede/channel-booking-reports/internal/report"
)

// FilterParams reads and validates the shared report query parameters.
// Missing dates default to the seven days ending yesterday, for either date type.
type FilterParams struct {
	Location *time.Location
	Limits   report.Limits
	Now      func() time.Time
}

func (p FilterParams) Parse(c *gin.Context) (report.Filter, error) {
	now := p.Now().In(p.Location)
	f := report.Filter{
		DateType:    report.DateType(c.DefaultQuery("date_type", string(report.DateTypeOrder))),
		OrderStatus: report.StatusFilter(c.DefaultQuery("order_status", string(report.StatusAll))),
		SaleType:    report.SaleType(c.DefaultQuery("sale_type", string(report.SaleTypeAll))),
		Channels:    splitList(c.QueryArray("channels")),
	}.Normalize()
	if len(f.Channels) == 0 {
		f.Channels = []string{report.AllChannels}
	}

	f.EndDate = report.DateOf(now).AddDate(0, 0, p.Limits.OrderDateEndOffsetDays)
	if v := c.Query("end_date"); v != "" {
		d, err := report.ParseDate(v, p.Location)
		if err != nil {
			return f, fmt.Errorf("%w: end_date must be YYYY-MM-DD", report.ErrInvalidFilter)
		}
		f.EndDate = d
	}
	f.StartDate = f.EndDate.AddDate(0, 0, -6)
	if v := c.Query("start_date"); v != "" {
		d, err := report.ParseDate(v, p.Location)
		if err != nil {
			return f, fmt.Errorf("%w: start_date must be YYYY-MM-DD", report.ErrInvalidFilter)
		}
		f.StartDate = d
	}

	for _, v := range splitList(c.QueryArray("hotel_ids")) {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: hotel_ids must be integers", report.ErrInvalidFilter)
		}
		f.HotelIDs = append(f.HotelIDs, id)
	}

	if err := f.Validate(now, p.Limits); err != nil {
		return f, err
	}
	return f, nil
}

// splitList accepts both repeated and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
