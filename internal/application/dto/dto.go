package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateLoanApplicationRequest carries the data for a new draft loan.
type CreateLoanApplicationRequest struct {
	OwnerID         string          `json:"owner_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	TermMonths      int             `json:"term_months"`
	Currency        string          `json:"currency,omitempty"`
	Purpose         string          `json:"purpose"`
}

// LoanRequest identifies a loan for a status transition or lookup.
type LoanRequest struct {
	LoanID string `json:"loan_id"`
}

// ApproveLoanRequest fixes the terms of a loan under decision. A nil rate
// takes the rate suggested for the applicant's credit tier.
type ApproveLoanRequest struct {
	LoanID            string           `json:"loan_id"`
	Principal         decimal.Decimal  `json:"principal"`
	AnnualRatePercent *decimal.Decimal `json:"annual_rate_percent,omitempty"`
	TermMonths        int              `json:"term_months"`
}

// RejectLoanRequest closes an application with a reason.
type RejectLoanRequest struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

// ListLoansRequest selects every loan of one owner, or every loan recorded
// against one UHID. Exactly one filter is set.
type ListLoansRequest struct {
	OwnerID string `json:"owner_id,omitempty"`
	UHID    string `json:"uhid,omitempty"`
}

// PayEmiRequest carries one EMI payment. IdempotencyKey is optional.
type PayEmiRequest struct {
	LoanID         string          `json:"loan_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
}

// ComputeScheduleRequest previews an amortization plan without a loan.
type ComputeScheduleRequest struct {
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	StartDate         time.Time       `json:"start_date,omitempty"`
}

// EvaluateEligibilityRequest asks for the tier of a credit score.
type EvaluateEligibilityRequest struct {
	CreditScore int `json:"credit_score"`
}

// DisburseToWalletRequest moves an approved loan's principal into a wallet.
type DisburseToWalletRequest struct {
	LoanID   string `json:"loan_id"`
	WalletID string `json:"wallet_id"`
}

// RegisterWalletRequest registers a health card issued elsewhere.
type RegisterWalletRequest struct {
	OwnerID    string `json:"owner_id"`
	CardNumber string `json:"card_number"`
	Currency   string `json:"currency,omitempty"`
	Status     string `json:"status,omitempty"`
}

// GetWalletRequest identifies a wallet.
type GetWalletRequest struct {
	WalletID string `json:"wallet_id"`
}

// WalletStatusChange is the health-card status notification consumed from Kafka.
type WalletStatusChange struct {
	CardNumber string    `json:"card_number"`
	Status     string    `json:"status"`
	ChangedAt  time.Time `json:"changed_at,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// EmiPaymentResponse is one ledger entry.
type EmiPaymentResponse struct {
	TransactionID      string          `json:"transaction_id"`
	InstallmentNumber  int             `json:"installment_number"`
	PaymentDate        time.Time       `json:"payment_date"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	PrincipalComponent decimal.Decimal `json:"principal_component"`
	InterestComponent  decimal.Decimal `json:"interest_component"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	Method             string          `json:"method"`
	Status             string          `json:"status"`
}

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID                  string               `json:"id"`
	OwnerID             string               `json:"owner_id"`
	UHID                string               `json:"uhid,omitempty"`
	ApplicationNumber   string               `json:"application_number"`
	Currency            string               `json:"currency"`
	Purpose             string               `json:"purpose,omitempty"`
	RequestedAmount     decimal.Decimal      `json:"requested_amount"`
	RequestedTermMonths int                  `json:"requested_term_months"`
	CreditScore         int                  `json:"credit_score"`
	MaxEligibleAmount   decimal.Decimal      `json:"max_eligible_amount"`
	SuggestedRate       decimal.Decimal      `json:"suggested_rate"`
	Principal           decimal.Decimal      `json:"principal"`
	AnnualRatePercent   decimal.Decimal      `json:"annual_rate_percent"`
	TermMonths          int                  `json:"term_months"`
	MonthlyPayment      decimal.Decimal      `json:"monthly_payment"`
	RemainingBalance    decimal.Decimal      `json:"remaining_balance"`
	ApprovalDate        *time.Time           `json:"approval_date,omitempty"`
	NextDueDate         *time.Time           `json:"next_due_date,omitempty"`
	Status              string               `json:"status"`
	RejectionReason     string               `json:"rejection_reason,omitempty"`
	DisbursedToWallet   bool                 `json:"disbursed_to_wallet"`
	WalletID            string               `json:"wallet_id,omitempty"`
	Payments            []EmiPaymentResponse `json:"payments,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// ListLoansResponse wraps the selected loans.
type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
}

// PayEmiResponse reports an applied payment. Overpayment is the part of the
// requested amount that was not applied.
type PayEmiResponse struct {
	LoanID           string             `json:"loan_id"`
	Payment          EmiPaymentResponse `json:"payment"`
	Overpayment      decimal.Decimal    `json:"overpayment"`
	RemainingBalance decimal.Decimal    `json:"remaining_balance"`
	NextDueDate      *time.Time         `json:"next_due_date,omitempty"`
	LoanStatus       string             `json:"loan_status"`
	Replayed         bool               `json:"replayed,omitempty"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Payment          decimal.Decimal `json:"payment"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AmortizationResponse is a computed plan.
type AmortizationResponse struct {
	MonthlyPayment decimal.Decimal             `json:"monthly_payment"`
	TotalInterest  decimal.Decimal             `json:"total_interest"`
	TotalPayable   decimal.Decimal             `json:"total_payable"`
	Entries        []AmortizationEntryResponse `json:"entries"`
}

// ScheduleEntryResponse is one installment of a loan's projected schedule.
type ScheduleEntryResponse struct {
	AmortizationEntryResponse
	Status        string          `json:"status"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

// ScheduleSummaryResponse totals a schedule by installment status.
type ScheduleSummaryResponse struct {
	PaidCount      int             `json:"paid_count"`
	PendingCount   int             `json:"pending_count"`
	OverdueCount   int             `json:"overdue_count"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
	PendingAmount  decimal.Decimal `json:"pending_amount"`
	NextDueDate    *time.Time      `json:"next_due_date,omitempty"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// EmiScheduleResponse is the projected schedule of a loan.
type EmiScheduleResponse struct {
	LoanID            string                  `json:"loan_id"`
	ApplicationNumber string                  `json:"application_number"`
	RemainingBalance  decimal.Decimal         `json:"remaining_balance"`
	LoanStatus        string                  `json:"loan_status"`
	Entries           []ScheduleEntryResponse `json:"entries"`
	Summary           ScheduleSummaryResponse `json:"summary"`
}

// EligibilityResponse is the tier result for a credit score.
type EligibilityResponse struct {
	CreditScore       int             `json:"credit_score"`
	Eligible          bool            `json:"eligible"`
	Tier              string          `json:"tier"`
	MaxEligibleAmount decimal.Decimal `json:"max_eligible_amount"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
}

// DisbursementResponse reports a completed wallet transfer.
type DisbursementResponse struct {
	LoanID         string          `json:"loan_id"`
	WalletID       string          `json:"wallet_id"`
	TransferAmount decimal.Decimal `json:"transfer_amount"`
	Currency       string          `json:"currency"`
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	LoanStatus     string          `json:"loan_status"`
}

// WalletResponse is the external representation of a health-card wallet.
type WalletResponse struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"owner_id"`
	CardNumber       string          `json:"card_number"`
	Currency         string          `json:"currency"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
