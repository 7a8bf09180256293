package service

import "fmt"

// ExtractionError means a download never produced a result. TempPath is the
// artifact path that was allocated for it and may or may not exist on disk;
// the caller is expected to Release it.
type ExtractionError struct {
	URL      string
	TempPath string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// CleanupError means a result was produced but its temporary artifact could
// not be removed afterwards. It never affects the client-visible outcome.
type CleanupError struct {
	Path string
	Err  error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
