package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure the domain reports wraps exactly one of these so
// transport layers can map it without inspecting messages.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidState        = errors.New("invalid state")
	ErrAlreadySettled      = errors.New("loan already settled")
	ErrAlreadyDisbursed    = errors.New("loan already disbursed to wallet")
	ErrOwnershipMismatch   = errors.New("wallet owner does not match loan owner")
	ErrWalletInactive      = errors.New("wallet is not active")
	ErrConcurrencyConflict = errors.New("concurrent modification")
	ErrNotFound            = errors.New("not found")
)

// Specific failures, each wrapping a kind above.
var (
	ErrPaymentBelowInterest = fmt.Errorf("%w: payment does not cover accrued interest", ErrInvalidArgument)
	ErrNotEligible          = fmt.Errorf("%w: applicant is not eligible for the requested amount", ErrInvalidArgument)
	ErrKYCNotVerified       = fmt.Errorf("%w: applicant identity is not KYC verified", ErrInvalidState)
	ErrLoanNotFound         = fmt.Errorf("loan %w", ErrNotFound)
	ErrWalletNotFound       = fmt.Errorf("wallet %w", ErrNotFound)
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
