package report

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Limits bound the date ranges callers may request.
type Limits struct {
	MaxRangeDays int
	// End offsets are relative to today: -1 means yesterday, 90 lets check-in
	// dates run three months ahead.
	OrderDateEndOffsetDays int
	UseDateEndOffsetDays   int
}

func DefaultLimits() Limits {
	return Limits{MaxRangeDays: 90, OrderDateEndOffsetDays: -1, UseDateEndOffsetDays: 90}
}

// Validate is the caller-side check run before a filter reaches the composer.
// The composer itself trusts its input.
func (f Filter) Validate(now time.Time, l Limits) error {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidFilter)
	}
	start, end := DateOf(f.StartDate), DateOf(f.EndDate)
	if start.After(end) {
		return fmt.Errorf("%w: start date is after end date", ErrInvalidFilter)
	}
	// Both ends are inclusive.
	days := int(end.Sub(start).Hours()/24) + 1
	if l.MaxRangeDays > 0 && days > l.MaxRangeDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidFilter, l.MaxRangeDays)
	}
	offset := l.OrderDateEndOffsetDays
	if f.DateType == DateTypeUse {
		offset = l.UseDateEndOffsetDays
	}
	latest := DateOf(now).AddDate(0, 0, offset)
	if end.After(latest) {
		return fmt.Errorf("%w: end date must not be after %s", ErrInvalidFilter, latest.Format(DateLayout))
	}
	if len(f.Channels) == 0 {
		return fmt.Errorf("%w: select at least one channel", ErrInvalidFilter)
	}
	return nil
}

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}
