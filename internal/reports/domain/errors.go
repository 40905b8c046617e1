package reports

import "errors"

var (
	ErrNotFound      = errors.New("report: not found")
	ErrMissingID     = errors.New("report: id required")
	ErrMissingLayout = errors.New("report: layout name required")
	ErrMissingType   = errors.New("report: report type required")
	ErrNoWidgets     = errors.New("report: no widgets to export")
)
