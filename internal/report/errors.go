package report

import "github.com/pkg/errors"

// ErrNothingToExport is returned when no element has a comment thread.
var ErrNothingToExport = errors.New("no comments to export")

// ExportError wraps any failure to produce a report archive.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return "export report: " + e.Err.Error()
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
