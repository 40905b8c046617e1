package charts

import "errors"

var (
	// ErrUnknownWidget is returned when no derivation exists for a widget name.
	ErrUnknownWidget = errors.New("charts: unknown widget")
	// ErrInvalidWindow is returned when the date window cannot be parsed.
	ErrInvalidWindow = errors.New("charts: invalid date window")
	// ErrMalformed wraps widget payloads that are not valid JSON objects.
	ErrMalformed = errors.New("charts: malformed widget data")
	// ErrInvalidTimestamp is returned for timestamps in no accepted layout.
	ErrInvalidTimestamp = errors.New("charts: invalid timestamp")
)
