package rbdx

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrUnavailable is returned when no introspection generation could be selected.
	ErrUnavailable = errors.New("no rbd introspection generation available")
	// ErrPoolNotNumeric is returned by providers that can only open pools by id.
	ErrPoolNotNumeric = errors.New("pool id is not numeric")
	// ErrNoPools is returned when a query names no pools.
	ErrNoPools = errors.New("no pools requested")
)

// StatusError is a negative errno-style status code reported by a native listing.
type StatusError int

func (e StatusError) Error() string {
	code := int(e)
	if code < 0 {
		code = -code
	}
	return fmt.Sprintf("rbdx: ret=%d, %s", int(e), syscall.Errno(code).Error())
}

// ErrorCode returns the raw status code.
func (e StatusError) ErrorCode() int {
	return int(e)
}

// StatusCode extracts an errno-style status from err.
// nil yields 0. Errors that carry no code yield -EIO.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ErrorCode() int }
	if errors.As(err, &coder) {
		if code := coder.ErrorCode(); code != 0 {
			return code
		}
	}
	return -int(syscall.EIO)
}
