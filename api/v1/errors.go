package v1

import "errors"

var (
	ErrDownloadCtx = errors.New("download request missing in context")
	ErrContentType = errors.New("Content-Type must be application/json")
	ErrPanic       = errors.New("handler panicked")
)
