package domain

import (
	"errors"
	"fmt"
)

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams           = errors.New("bad_params")            // 400
	ErrMalformedRange      = errors.New("malformed_range")       // 400
	ErrNotFound            = errors.New("not_found")             // 404
	ErrMethodNotAllowed    = errors.New("method_not_allowed")    // 405
	ErrTooLarge            = errors.New("too_large")             // 413
	ErrRangeNotSatisfiable = errors.New("range_not_satisfiable") // 416
	ErrRangeOutOfBounds    = errors.New("range_out_of_bounds")   // 416
	ErrStorageWrite        = errors.New("storage_write")         // 500
	ErrStorageUnavailable  = errors.New("storage_unavailable")   // 500
	ErrUnexpected          = errors.New("unexpected")            // 500
)

// UnsatisfiableRangeError несёт полный размер объекта для заголовка "Content-Range: bytes */S".
type UnsatisfiableRangeError struct {
	Size int64
}

func (e *UnsatisfiableRangeError) Error() string {
	return fmt.Sprintf("range not satisfiable for %d bytes", e.Size)
}

func (e *UnsatisfiableRangeError) Unwrap() error { return ErrRangeNotSatisfiable }
