package nvtt

import "errors"

// ErrorCode identifies the failure class of a texture pipeline operation.
type ErrorCode uint32

const (
	// Success means no error.
	Success ErrorCode = 0

	// ErrBadParam reports an out-of-range or inconsistent argument
	// (channel index, extent, buffer length).
	ErrBadParam ErrorCode = 1

	// ErrUnsupportedFormat reports a block format or decoder variant the
	// decoder does not implement.
	ErrUnsupportedFormat ErrorCode = 2

	// ErrSizeMismatch reports two images whose extents were required to
	// match but do not.
	ErrSizeMismatch ErrorCode = 3

	// ErrTruncatedData reports a compressed input buffer too short for
	// the requested extent.
	ErrTruncatedData ErrorCode = 4

	// ErrConstantImage reports a single-color image where a value range
	// was required (NormalizeRange).
	ErrConstantImage ErrorCode = 5

	// ErrNotImplemented reports an operation that is declared by the API
	// but intentionally unimplemented (Binarize, Quantize).
	ErrNotImplemented ErrorCode = 6
)

// Error is a typed error carrying an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	return "nvtt: error"
}

// ErrorCodeOf returns the code carried by err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
