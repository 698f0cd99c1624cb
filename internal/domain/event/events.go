package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Aggregate type names carried on every event.
const (
	AggregateLoan   = "Loan"
	AggregateWallet = "Wallet"
)

// Event type names.
const (
	TypeLoanApplicationCreated = "lending.loan.application_created"
	TypeLoanSubmitted          = "lending.loan.submitted"
	TypeLoanApproved           = "lending.loan.approved"
	TypeLoanRejected           = "lending.loan.rejected"
	TypeEmiPaymentApplied      = "lending.loan.emi_payment_applied"
	TypeLoanCompleted          = "lending.loan.completed"
	TypeLoanDisbursedToWallet  = "lending.loan.disbursed_to_wallet"
	TypeWalletRegistered       = "lending.wallet.registered"
	TypeWalletCredited         = "lending.wallet.credited"
	TypeWalletStatusChanged    = "lending.wallet.status_changed"
)

// ---------------------------------------------------------------------------
// Loan application events
// ---------------------------------------------------------------------------

// LoanApplicationCreated is raised when a verified applicant opens a draft.
type LoanApplicationCreated struct {
	events.BaseEvent
	OwnerID           string          `json:"owner_id"`
	ApplicationNumber string          `json:"application_number"`
	RequestedAmount   decimal.Decimal `json:"requested_amount"`
	Currency          string          `json:"currency"`
	CreditScore       int             `json:"credit_score"`
}

func NewLoanApplicationCreated(
	loanID, ownerID uuid.UUID, applicationNumber string,
	amount decimal.Decimal, currency string, creditScore int, at time.Time,
) LoanApplicationCreated {
	return LoanApplicationCreated{
		BaseEvent:         events.NewBaseEvent(TypeLoanApplicationCreated, loanID.String(), AggregateLoan, at),
		OwnerID:           ownerID.String(),
		ApplicationNumber: applicationNumber,
		RequestedAmount:   amount,
		Currency:          currency,
		CreditScore:       creditScore,
	}
}

// LoanSubmitted is raised when a draft is handed over for review.
type LoanSubmitted struct {
	events.BaseEvent
	OwnerID           string `json:"owner_id"`
	ApplicationNumber string `json:"application_number"`
}

func NewLoanSubmitted(loanID, ownerID uuid.UUID, applicationNumber string, at time.Time) LoanSubmitted {
	return LoanSubmitted{
		BaseEvent:         events.NewBaseEvent(TypeLoanSubmitted, loanID.String(), AggregateLoan, at),
		OwnerID:           ownerID.String(),
		ApplicationNumber: applicationNumber,
	}
}

// LoanApproved carries the terms fixed at approval.
type LoanApproved struct {
	events.BaseEvent
	OwnerID           string          `json:"owner_id"`
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
	TermMonths        int             `json:"term_months"`
	MonthlyPayment    decimal.Decimal `json:"monthly_payment"`
	FirstDueDate      time.Time       `json:"first_due_date"`
}

func NewLoanApproved(
	loanID, ownerID uuid.UUID,
	principal, rate decimal.Decimal, termMonths int,
	monthlyPayment decimal.Decimal, firstDue, at time.Time,
) LoanApproved {
	return LoanApproved{
		BaseEvent:         events.NewBaseEvent(TypeLoanApproved, loanID.String(), AggregateLoan, at),
		OwnerID:           ownerID.String(),
		Principal:         principal,
		AnnualRatePercent: rate,
		TermMonths:        termMonths,
		MonthlyPayment:    monthlyPayment,
		FirstDueDate:      firstDue,
	}
}

// LoanRejected is raised when an admin declines an application.
type LoanRejected struct {
	events.BaseEvent
	OwnerID string `json:"owner_id"`
	Reason  string `json:"reason"`
}

func NewLoanRejected(loanID, ownerID uuid.UUID, reason string, at time.Time) LoanRejected {
	return LoanRejected{
		BaseEvent: events.NewBaseEvent(TypeLoanRejected, loanID.String(), AggregateLoan, at),
		OwnerID:   ownerID.String(),
		Reason:    reason,
	}
}

// ---------------------------------------------------------------------------
// Ledger events
// ---------------------------------------------------------------------------

// EmiPaymentApplied is raised for every EMI posted to the ledger.
type EmiPaymentApplied struct {
	events.BaseEvent
	OwnerID          string          `json:"owner_id"`
	TransactionID    string          `json:"transaction_id"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentMethod    string          `json:"payment_method"`
}

func NewEmiPaymentApplied(
	loanID, ownerID uuid.UUID, transactionID string,
	amount, principal, interest, remaining decimal.Decimal,
	method string, at time.Time,
) EmiPaymentApplied {
	return EmiPaymentApplied{
		BaseEvent:        events.NewBaseEvent(TypeEmiPaymentApplied, loanID.String(), AggregateLoan, at),
		OwnerID:          ownerID.String(),
		TransactionID:    transactionID,
		AmountPaid:       amount,
		Principal:        principal,
		Interest:         interest,
		RemainingBalance: remaining,
		PaymentMethod:    method,
	}
}

// LoanCompleted is raised when the remaining balance reaches zero.
type LoanCompleted struct {
	events.BaseEvent
	OwnerID      string `json:"owner_id"`
	PaymentCount int    `json:"payment_count"`
}

func NewLoanCompleted(loanID, ownerID uuid.UUID, paymentCount int, at time.Time) LoanCompleted {
	return LoanCompleted{
		BaseEvent:    events.NewBaseEvent(TypeLoanCompleted, loanID.String(), AggregateLoan, at),
		OwnerID:      ownerID.String(),
		PaymentCount: paymentCount,
	}
}

// ---------------------------------------------------------------------------
// Disbursement and wallet events
// ---------------------------------------------------------------------------

// LoanDisbursedToWallet is raised on the loan side of a disbursement.
type LoanDisbursedToWallet struct {
	events.BaseEvent
	OwnerID  string          `json:"owner_id"`
	WalletID string          `json:"wallet_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewLoanDisbursedToWallet(
	loanID, ownerID, walletID uuid.UUID, amount decimal.Decimal, currency string, at time.Time,
) LoanDisbursedToWallet {
	return LoanDisbursedToWallet{
		BaseEvent: events.NewBaseEvent(TypeLoanDisbursedToWallet, loanID.String(), AggregateLoan, at),
		OwnerID:   ownerID.String(),
		WalletID:  walletID.String(),
		Amount:    amount,
		Currency:  currency,
	}
}

// WalletRegistered is raised when a health-card wallet is first recorded.
type WalletRegistered struct {
	events.BaseEvent
	OwnerID    string `json:"owner_id"`
	CardNumber string `json:"card_number"`
	Status     string `json:"status"`
}

func NewWalletRegistered(walletID, ownerID uuid.UUID, cardNumber, status string, at time.Time) WalletRegistered {
	return WalletRegistered{
		BaseEvent:  events.NewBaseEvent(TypeWalletRegistered, walletID.String(), AggregateWallet, at),
		OwnerID:    ownerID.String(),
		CardNumber: cardNumber,
		Status:     status,
	}
}

// WalletCredited is raised on the wallet side of a disbursement.
type WalletCredited struct {
	events.BaseEvent
	OwnerID      string          `json:"owner_id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reference    string          `json:"reference"`
}

func NewWalletCredited(
	walletID, ownerID uuid.UUID, amount decimal.Decimal, currency string,
	balanceAfter decimal.Decimal, reference string, at time.Time,
) WalletCredited {
	return WalletCredited{
		BaseEvent:    events.NewBaseEvent(TypeWalletCredited, walletID.String(), AggregateWallet, at),
		OwnerID:      ownerID.String(),
		Amount:       amount,
		Currency:     currency,
		BalanceAfter: balanceAfter,
		Reference:    reference,
	}
}

// WalletStatusChanged mirrors an upstream health-card status change.
type WalletStatusChanged struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewWalletStatusChanged(walletID uuid.UUID, from, to string, at time.Time) WalletStatusChanged {
	return WalletStatusChanged{
		BaseEvent: events.NewBaseEvent(TypeWalletStatusChanged, walletID.String(), AggregateWallet, at),
		From:      from,
		To:        to,
	}
}
