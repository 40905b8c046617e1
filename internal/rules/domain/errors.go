package rules

import "errors"

var (
	ErrNotFound         = errors.New("rule: not found")
	ErrMissingID        = errors.New("rule: id required")
	ErrEmptyName        = errors.New("rule: empty name")
	ErrInvalidRTU       = errors.New("rule: invalid rtu id")
	ErrInvalidCondition = errors.New("rule: invalid condition")
	ErrInvalidSearch    = errors.New("rule: invalid search type")
)
