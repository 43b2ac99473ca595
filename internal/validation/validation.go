// Package validation parses and checks query parameters before anything
// touches the datastore.
package validation

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar-date parameters.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// DateRangeBounds converts a calendar-date range to the half-open UTC
// interval [startOfStartDate, startOfDayAfterEndDate) in unix seconds. The
// exclusive next-day upper bound is what makes the entire end date count
// regardless of time-of-day granularity in stored timestamps; never use an
// inclusive 23:59:59 bound here.
func DateRangeBounds(startDate, endDate string) (startUnix, endUnixExclusive int64, err error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, 0, err
	}
	if end.Before(start) {
		return 0, 0, fmt.Errorf("end_date %s is before start_date %s", endDate, startDate)
	}
	return start.Unix(), end.AddDate(0, 0, 1).Unix(), nil
}
