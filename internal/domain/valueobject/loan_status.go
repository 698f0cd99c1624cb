package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a healthcare loan, from draft
// application through settlement.
type LoanStatus struct {
	value string
}

const (
	loanStatusDraft       = "DRAFT"
	loanStatusSubmitted   = "SUBMITTED"
	loanStatusUnderReview = "UNDER_REVIEW"
	loanStatusApproved    = "APPROVED"
	loanStatusDisbursed   = "DISBURSED"
	loanStatusCompleted   = "COMPLETED"
	loanStatusRejected    = "REJECTED"
)

var (
	LoanStatusDraft       = LoanStatus{value: loanStatusDraft}
	LoanStatusSubmitted   = LoanStatus{value: loanStatusSubmitted}
	LoanStatusUnderReview = LoanStatus{value: loanStatusUnderReview}
	LoanStatusApproved    = LoanStatus{value: loanStatusApproved}
	LoanStatusDisbursed   = LoanStatus{value: loanStatusDisbursed}
	LoanStatusCompleted   = LoanStatus{value: loanStatusCompleted}
	LoanStatusRejected    = LoanStatus{value: loanStatusRejected}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusDraft:       LoanStatusDraft,
	loanStatusSubmitted:   LoanStatusSubmitted,
	loanStatusUnderReview: LoanStatusUnderReview,
	loanStatusApproved:    LoanStatusApproved,
	loanStatusDisbursed:   LoanStatusDisbursed,
	loanStatusCompleted:   LoanStatusCompleted,
	loanStatusRejected:    LoanStatusRejected,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool {
	return s.value == other.value
}

// IsRepaying reports whether the ledger accepts EMI payments in this status.
func (s LoanStatus) IsRepaying() bool {
	return s == LoanStatusApproved || s == LoanStatusDisbursed
}

// IsUnderDecision reports whether an admin may approve or reject the loan.
func (s LoanStatus) IsUnderDecision() bool {
	return s == LoanStatusSubmitted || s == LoanStatusUnderReview
}

// IsTerminal reports whether no further transitions are possible.
func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusCompleted || s == LoanStatusRejected
}
