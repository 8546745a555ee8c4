package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound is returned when the rendered document does not
	// contain the invoice document root. Nothing is created in that case.
	ErrElementNotFound = errors.New("invoice document root not found")

	// ErrExportInProgress is returned when an export is triggered while
	// another one is still running. The second trigger is never queued.
	ErrExportInProgress = errors.New("an export is already in progress")

	// ErrClosed is returned when using a closed rasterizer.
	ErrClosed = errors.New("rasterizer is closed")
)

// CaptureError wraps a failure in the rasterization stage.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("rasterizing document: %v", e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// EncodingError wraps a failure while assembling the output document.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding document: %v", e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
