package filters

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DateLayout is the calendar day format used by every date filter.
const DateLayout = "2006-01-02"

// DateRange is an optional inclusive day window.
type DateRange struct {
	Start string `json:"startDate"`
	End   string `json:"endDate"`
}

// DateRangeFromQuery reads startDate and endDate.
func DateRangeFromQuery(values url.Values) DateRange {
	return DateRange{
		Start: strings.TrimSpace(values.Get("startDate")),
		End:   strings.TrimSpace(values.Get("endDate")),
	}
}

// Validate checks both bounds parse and end is not before start.
func (r DateRange) Validate() error {
	var start, end time.Time
	var err error
	if r.Start != "" {
		if start, err = time.Parse(DateLayout, r.Start); err != nil {
			return fmt.Errorf("%w: startDate %q", ErrInvalidFilter, r.Start)
		}
	}
	if r.End != "" {
		if end, err = time.Parse(DateLayout, r.End); err != nil {
			return fmt.Errorf("%w: endDate %q", ErrInvalidFilter, r.End)
		}
	}
	if r.Start != "" && r.End != "" && end.Before(start) {
		return fmt.Errorf("%w: endDate before startDate", ErrInvalidFilter)
	}
	return nil
}
