package domain

import "errors"

// Error taxonomy for the reporting pipeline. Lower layers wrap these
// sentinels with fmt.Errorf("...: %w", ...); handlers match with errors.Is
// and translate to HTTP status codes. Anything else is an unexpected
// failure and surfaces as a generic request error.
var (
	// ErrSourceRead marks an unreadable or malformed ledger/registry file.
	// Fatal to the current request.
	ErrSourceRead = errors.New("source unreadable")

	// ErrInvalidPeriod marks a user-supplied period that fails to parse.
	// The pipeline short-circuits without running.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInsufficientData marks an imputation run with fewer observed rows
	// than the neighbor count requires. No partial result is returned.
	ErrInsufficientData = errors.New("insufficient data for imputation")

	// ErrInvalidBooking marks a ledger record that violates a pipeline
	// precondition, such as a party size outside the supported range.
	ErrInvalidBooking = errors.New("invalid booking")
)
