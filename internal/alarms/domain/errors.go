package alarms

import "errors"

var (
	// ErrNotFound indicates a missing alarm record.
	ErrNotFound = errors.New("alarm: not found")
	// ErrMissingID indicates an action issued without an alarm id.
	ErrMissingID = errors.New("alarm: id required")
	// ErrInvalidStatus indicates an unsupported status value.
	ErrInvalidStatus = errors.New("alarm: invalid status")
	// ErrEmptyPatch indicates an update with no field set.
	ErrEmptyPatch = errors.New("alarm: empty patch")
	// ErrNotConfirmed indicates the backend answered an update without a body.
	ErrNotConfirmed = errors.New("alarm: update not confirmed by server")
)
