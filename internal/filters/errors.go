package filters

import "errors"

var (
	// ErrInvalidFilter wraps every rejected filter value.
	ErrInvalidFilter = errors.New("filters: invalid filter")
)
