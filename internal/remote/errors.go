package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned on a backend 404.
	ErrNotFound = errors.New("remote: not found")
	// ErrDecode wraps malformed backend payloads.
	ErrDecode = errors.New("remote: decode response")
)

// StatusError is a non-2xx backend answer other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("remote: %s %s: http %d: %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("remote: %s %s: http %d", e.Method, e.Path, e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
