package trust

import "errors"

var (
	// ErrReporterRequired is returned when a report names no reporter.
	ErrReporterRequired = errors.New("reporter id is required")
)
