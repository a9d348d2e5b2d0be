package financing

import (
	"errors"
	"fmt"
)

// Sentinel errors, for use with errors.Is.
var (
	// ErrInvalidRate is returned for negative or out-of-domain rates.
	ErrInvalidRate = errors.New("invalid rate")

	// ErrInvalidTerm is returned for non-positive terms, principals, or paid
	// periods exceeding the term.
	ErrInvalidTerm = errors.New("invalid term")

	// ErrInvalidFactor is returned for a missing or invalid TCR auxiliary factor.
	ErrInvalidFactor = errors.New("invalid factor")

	// ErrInvalidChain is returned for malformed contract ordering or an empty chain.
	ErrInvalidChain = errors.New("invalid chain")

	// ErrEmptySeries is not returned as an error. It is attached as a notice
	// when a post-fixed TCR is computed without index variations, in which
	// case FAM = 1 (no monetary correction).
	ErrEmptySeries = errors.New("empty index series: no monetary correction applied")
)

// InvalidRateError provides details about a rejected rate.
type InvalidRateError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate: %s=%s: %s", e.Field, e.Value, e.Constraint)
}

func (e *InvalidRateError) Unwrap() error {
	return ErrInvalidRate
}

// InvalidTermError provides details about a rejected term or amount.
type InvalidTermError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *InvalidTermError) Error() string {
	return fmt.Sprintf("invalid term: %s=%s: %s", e.Field, e.Value, e.Constraint)
}

func (e *InvalidTermError) Unwrap() error {
	return ErrInvalidTerm
}

// InvalidFactorError provides details about a rejected TCR factor.
type InvalidFactorError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *InvalidFactorError) Error() string {
	return fmt.Sprintf("invalid factor: %s=%s: %s", e.Field, e.Value, e.Constraint)
}

func (e *InvalidFactorError) Unwrap() error {
	return ErrInvalidFactor
}

// InvalidChainError provides details about a structural chain violation.
// Order is the offending link's order index, or 0 when the chain as a whole
// is rejected.
type InvalidChainError struct {
	Order      int
	Field      string
	Constraint string
}

func (e *InvalidChainError) Error() string {
	if e.Order == 0 {
		return fmt.Sprintf("invalid chain: %s: %s", e.Field, e.Constraint)
	}
	return fmt.Sprintf("invalid chain: link %d: %s: %s", e.Order, e.Field, e.Constraint)
}

func (e *InvalidChainError) Unwrap() error {
	return ErrInvalidChain
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidTerm) ||
		errors.Is(err, ErrInvalidFactor) ||
		errors.Is(err, ErrInvalidChain)
}
