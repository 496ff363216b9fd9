// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error.
var ErrInternal = errors.New("internal")

// ErrUnavailable indicates that the underlying store is unreachable.
var ErrUnavailable = errors.New("store unavailable")
