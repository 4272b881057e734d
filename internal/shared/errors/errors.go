package errors

import "errors"

// Validation errors. These are the only errors the pipeline surfaces to its
// caller; everything probe-level is recovered into an error-status finding.
var (
	ErrEmptyTarget       = errors.New("target cannot be empty")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrUnsupportedScheme = errors.New("unsupported target scheme")
)

// Probe errors, wrapped by checker.ProbeError to carry the failure kind.
var (
	ErrProbeTimeout = errors.New("probe timed out")
	ErrProbeNetwork = errors.New("probe network failure")
	ErrProbeParse   = errors.New("probe response malformed")
)
