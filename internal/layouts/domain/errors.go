package layouts

import "errors"

var (
	ErrNotFound      = errors.New("layout: not found")
	ErrMissingID     = errors.New("layout: id required")
	ErrEmptyName     = errors.New("layout: empty name")
	ErrNoLayout      = errors.New("layout: no layout loaded")
	ErrInvalidWidget = errors.New("layout: invalid widget")
	ErrWidgetIndex   = errors.New("layout: widget index out of range")
	ErrDuplicateName = errors.New("layout: name already exists")
)
