package store

import "errors"

// Validation failures CreatePoll defends against even though callers are
// expected to validate first.
var (
	ErrQuestionRequired = errors.New("poll question must not be empty")
	ErrTooFewOptions    = errors.New("poll needs at least two options")
	ErrAddressRequired  = errors.New("wallet address is required")
)

// ErrPollNotFound is returned when an operation references a poll id that
// does not exist. Vote surfaces it instead of silently ignoring the call
// so callers and tests can tell a miss from a no-op.
var ErrPollNotFound = errors.New("poll not found")

// ErrOptionNotFound is returned when a vote names an option id outside
// the poll's fixed option set. Tally keys are fixed at creation time;
// accepting unknown ids would grow the map past the option set.
var ErrOptionNotFound = errors.New("poll option not found")

// QuotaError is the only failure surfaced to end users: the wallet has
// used up its free poll allowance and holds no creator pass. It is
// recoverable by minting a pass.
type QuotaError struct {
	Reason string
}

func (e *QuotaError) Error() string {
	return e.Reason
}

// IsQuotaError reports whether err is a quota denial.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}
