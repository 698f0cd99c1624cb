package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/event"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/events"
	"github.com/ricare/lending/pkg/money"
)

// Loan is the aggregate root for a healthcare loan: the application, the
// approved terms, and the append-only EMI ledger. Every transition returns a
// modified copy; the receiver is never changed.
type Loan struct {
	id                  uuid.UUID
	ownerID             uuid.UUID
	uhid                string
	applicationNumber   string
	currency            string
	purpose             string
	requestedAmount     decimal.Decimal
	requestedTermMonths int
	creditScore         int
	maxEligibleAmount   decimal.Decimal
	suggestedRate       decimal.Decimal

	// Written once, by Approve.
	principal         decimal.Decimal
	annualRatePercent decimal.Decimal
	termMonths        int
	monthlyPayment    decimal.Decimal
	approvalDate      time.Time

	remainingBalance  decimal.Decimal
	nextDueDate       *time.Time
	status            valueobject.LoanStatus
	rejectionReason   string
	payments          []EmiPayment
	disbursedToWallet bool
	walletID          uuid.UUID

	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []events.DomainEvent
}

// LoanApplication carries the inputs for a new draft loan.
type LoanApplication struct {
	OwnerID             uuid.UUID
	UHID                string
	ApplicationNumber   string
	Currency            string
	Purpose             string
	RequestedAmount     decimal.Decimal
	RequestedTermMonths int
	CreditScore         int
	Eligibility         Eligibility
}

// Eligibility is the outcome of evaluating a credit score against the tier
// table. An ineligible result has a zero amount and rate.
type Eligibility struct {
	Eligible          bool
	Tier              string
	MaxEligibleAmount decimal.Decimal
	AnnualRatePercent decimal.Decimal
}

// ApprovalTerms are the loan terms fixed by an admin at approval.
type ApprovalTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TermMonths        int
}

// NewLoan creates a DRAFT loan from a verified applicant's application.
func NewLoan(app LoanApplication, now time.Time) (Loan, error) {
	if app.OwnerID == uuid.Nil {
		return Loan{}, invalidArgument("owner ID is required")
	}
	if strings.TrimSpace(app.ApplicationNumber) == "" {
		return Loan{}, invalidArgument("application number is required")
	}
	if !app.RequestedAmount.IsPositive() {
		return Loan{}, invalidArgument("requested amount must be positive")
	}
	if app.RequestedTermMonths <= 0 || app.RequestedTermMonths > MaxTermMonths {
		return Loan{}, invalidArgument("requested term must be between 1 and %d months", MaxTermMonths)
	}
	// Scores below the lowest tier are kept; they evaluate as ineligible.
	if app.CreditScore < 0 {
		return Loan{}, invalidArgument("credit score must not be negative, got %d", app.CreditScore)
	}
	currency := app.Currency
	if currency == "" {
		currency = money.INR.Code()
	}
	if _, err := money.NewCurrency(currency); err != nil {
		return Loan{}, invalidArgument("%v", err)
	}

	now = now.UTC()
	l := Loan{
		id:                  uuid.New(),
		ownerID:             app.OwnerID,
		uhid:                app.UHID,
		applicationNumber:   app.ApplicationNumber,
		currency:            currency,
		purpose:             app.Purpose,
		requestedAmount:     money.Round(app.RequestedAmount),
		requestedTermMonths: app.RequestedTermMonths,
		creditScore:         app.CreditScore,
		maxEligibleAmount:   app.Eligibility.MaxEligibleAmount,
		suggestedRate:       app.Eligibility.AnnualRatePercent,
		principal:           decimal.Zero,
		annualRatePercent:   decimal.Zero,
		monthlyPayment:      decimal.Zero,
		remainingBalance:    decimal.Zero,
		status:              valueobject.LoanStatusDraft,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}

	l.domainEvents = []events.DomainEvent{event.NewLoanApplicationCreated(
		l.id, l.ownerID, l.applicationNumber, l.requestedAmount, l.currency, l.creditScore, now,
	)}
	return l, nil
}

// LoanState is the persisted form of a Loan, used to rebuild the aggregate.
type LoanState struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	UHID                string
	ApplicationNumber   string
	Currency            string
	Purpose             string
	RequestedAmount     decimal.Decimal
	RequestedTermMonths int
	CreditScore         int
	MaxEligibleAmount   decimal.Decimal
	SuggestedRate       decimal.Decimal
	Principal           decimal.Decimal
	AnnualRatePercent   decimal.Decimal
	TermMonths          int
	MonthlyPayment      decimal.Decimal
	ApprovalDate        time.Time
	RemainingBalance    decimal.Decimal
	NextDueDate         *time.Time
	Status              valueobject.LoanStatus
	RejectionReason     string
	Payments            []EmiPayment
	DisbursedToWallet   bool
	WalletID            uuid.UUID
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ReconstructLoan rebuilds a Loan from persisted state without validation or events.
func ReconstructLoan(s LoanState) Loan {
	return Loan{
		id:                  s.ID,
		ownerID:             s.OwnerID,
		uhid:                s.UHID,
		applicationNumber:   s.ApplicationNumber,
		currency:            s.Currency,
		purpose:             s.Purpose,
		requestedAmount:     s.RequestedAmount,
		requestedTermMonths: s.RequestedTermMonths,
		creditScore:         s.CreditScore,
		maxEligibleAmount:   s.MaxEligibleAmount,
		suggestedRate:       s.SuggestedRate,
		principal:           s.Principal,
		annualRatePercent:   s.AnnualRatePercent,
		termMonths:          s.TermMonths,
		monthlyPayment:      s.MonthlyPayment,
		approvalDate:        s.ApprovalDate,
		remainingBalance:    s.RemainingBalance,
		nextDueDate:         s.NextDueDate,
		status:              s.Status,
		rejectionReason:     s.RejectionReason,
		payments:            append([]EmiPayment(nil), s.Payments...),
		disbursedToWallet:   s.DisbursedToWallet,
		walletID:            s.WalletID,
		version:             s.Version,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
	}
}

// State returns the persistable snapshot of the loan.
func (l Loan) State() LoanState {
	return LoanState{
		ID:                  l.id,
		OwnerID:             l.ownerID,
		UHID:                l.uhid,
		ApplicationNumber:   l.applicationNumber,
		Currency:            l.currency,
		Purpose:             l.purpose,
		RequestedAmount:     l.requestedAmount,
		RequestedTermMonths: l.requestedTermMonths,
		CreditScore:         l.creditScore,
		MaxEligibleAmount:   l.maxEligibleAmount,
		SuggestedRate:       l.suggestedRate,
		Principal:           l.principal,
		AnnualRatePercent:   l.annualRatePercent,
		TermMonths:          l.termMonths,
		MonthlyPayment:      l.monthlyPayment,
		ApprovalDate:        l.approvalDate,
		RemainingBalance:    l.remainingBalance,
		NextDueDate:         l.NextDueDate(),
		Status:              l.status,
		RejectionReason:     l.rejectionReason,
		Payments:            l.Payments(),
		DisbursedToWallet:   l.disbursedToWallet,
		WalletID:            l.walletID,
		Version:             l.version,
		CreatedAt:           l.createdAt,
		UpdatedAt:           l.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Application workflow
// ---------------------------------------------------------------------------

// Submit moves a DRAFT application to SUBMITTED.
func (l Loan) Submit(now time.Time) (Loan, error) {
	if l.status != valueobject.LoanStatusDraft {
		return l, invalidState("cannot submit loan in %s status", l.status)
	}
	now = now.UTC()
	l.status = valueobject.LoanStatusSubmitted
	l.updatedAt = now
	l.domainEvents = append(l.copyEvents(), event.NewLoanSubmitted(l.id, l.ownerID, l.applicationNumber, now))
	return l, nil
}

// StartReview moves a SUBMITTED application to UNDER_REVIEW.
func (l Loan) StartReview(now time.Time) (Loan, error) {
	if l.status != valueobject.LoanStatusSubmitted {
		return l, invalidState("cannot review loan in %s status", l.status)
	}
	l.status = valueobject.LoanStatusUnderReview
	l.updatedAt = now.UTC()
	return l, nil
}

// Approve fixes the loan terms, derives the monthly payment and opens the
// EMI ledger. The approval instant anchors every due date.
func (l Loan) Approve(terms ApprovalTerms, now time.Time) (Loan, error) {
	if !l.status.IsUnderDecision() {
		return l, invalidState("cannot approve loan in %s status", l.status)
	}

	now = now.UTC()
	sched, err := ComputeSchedule(terms.Principal, terms.AnnualRatePercent, terms.TermMonths, now)
	if err != nil {
		return l, err
	}
	next := AddMonths(now, 1)

	l.principal = terms.Principal
	l.annualRatePercent = terms.AnnualRatePercent
	l.termMonths = terms.TermMonths
	l.monthlyPayment = sched.MonthlyPayment
	l.approvalDate = now
	l.remainingBalance = terms.Principal
	l.nextDueDate = &next
	l.status = valueobject.LoanStatusApproved
	l.updatedAt = now

	l.domainEvents = append(l.copyEvents(), event.NewLoanApproved(
		l.id, l.ownerID, l.principal, l.annualRatePercent, l.termMonths, l.monthlyPayment, next, now,
	))
	return l, nil
}

// Reject closes an application under decision.
func (l Loan) Reject(reason string, now time.Time) (Loan, error) {
	if !l.status.IsUnderDecision() {
		return l, invalidState("cannot reject loan in %s status", l.status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return l, invalidArgument("rejection reason is required")
	}
	now = now.UTC()
	l.status = valueobject.LoanStatusRejected
	l.rejectionReason = reason
	l.updatedAt = now
	l.domainEvents = append(l.copyEvents(), event.NewLoanRejected(l.id, l.ownerID, reason, now))
	return l, nil
}

// ---------------------------------------------------------------------------
// EMI ledger
// ---------------------------------------------------------------------------

// ApplyPayment records an EMI. Interest accrued on the remaining balance is
// settled first and the rest reduces principal. An amount below the accrued
// interest is refused; an amount above interest plus balance is capped, and
// the recorded AmountPaid is what was actually applied.
func (l Loan) ApplyPayment(amount decimal.Decimal, method valueobject.PaymentMethod, now time.Time) (Loan, EmiPayment, error) {
	if l.status == valueobject.LoanStatusCompleted {
		return l, EmiPayment{}, ErrAlreadySettled
	}
	if !l.status.IsRepaying() {
		return l, EmiPayment{}, invalidState("cannot accept payments for loan in %s status", l.status)
	}
	if !l.remainingBalance.IsPositive() {
		return l, EmiPayment{}, ErrAlreadySettled
	}
	if !amount.IsPositive() {
		return l, EmiPayment{}, invalidArgument("payment amount must be positive")
	}
	if money.HasSubMinorPrecision(amount) {
		return l, EmiPayment{}, invalidArgument("payment amount %s has more than %d decimal places", amount, money.MinorUnits)
	}
	if method.IsZero() {
		method = valueobject.PaymentMethodOnline
	}

	interest := l.InterestDue()
	if amount.LessThan(interest) {
		return l, EmiPayment{}, ErrPaymentBelowInterest
	}

	principalPart := decimal.Min(amount.Sub(interest), l.remainingBalance)
	balance := l.remainingBalance.Sub(principalPart)
	now = now.UTC()

	payment := EmiPayment{
		TransactionID:      NewTransactionID(),
		PaymentDate:        now,
		AmountPaid:         principalPart.Add(interest),
		PrincipalComponent: principalPart,
		InterestComponent:  interest,
		BalanceAfter:       balance,
		Method:             method,
		Status:             valueobject.PaymentStatusCompleted,
		InstallmentNumber:  len(l.payments) + 1,
	}

	l.payments = append(l.Payments(), payment)
	l.remainingBalance = balance
	l.updatedAt = now

	evts := append(l.copyEvents(), event.NewEmiPaymentApplied(
		l.id, l.ownerID, payment.TransactionID, payment.AmountPaid,
		payment.PrincipalComponent, payment.InterestComponent, balance, method.String(), now,
	))

	if balance.IsZero() {
		l.status = valueobject.LoanStatusCompleted
		l.nextDueDate = nil
		evts = append(evts, event.NewLoanCompleted(l.id, l.ownerID, len(l.payments), now))
	} else {
		next := AddMonths(l.approvalDate, len(l.payments)+1)
		l.nextDueDate = &next
	}
	l.domainEvents = evts

	return l, payment, nil
}

// InterestDue is one month of interest on the current remaining balance.
func (l Loan) InterestDue() decimal.Decimal {
	return AccrueInterest(l.remainingBalance, l.annualRatePercent)
}

// MarkDisbursed records that the principal was credited to walletID.
func (l Loan) MarkDisbursed(walletID uuid.UUID, now time.Time) (Loan, error) {
	if l.disbursedToWallet {
		return l, ErrAlreadyDisbursed
	}
	if l.status != valueobject.LoanStatusApproved {
		return l, invalidState("cannot disburse loan in %s status", l.status)
	}
	if walletID == uuid.Nil {
		return l, invalidArgument("wallet ID is required")
	}
	now = now.UTC()
	l.disbursedToWallet = true
	l.walletID = walletID
	l.status = valueobject.LoanStatusDisbursed
	l.updatedAt = now
	l.domainEvents = append(l.copyEvents(), event.NewLoanDisbursedToWallet(
		l.id, l.ownerID, walletID, l.principal, l.currency, now,
	))
	return l, nil
}

// NewTransactionID returns a fresh EMI transaction reference.
func NewTransactionID() string {
	return "EMI-" + strings.ToUpper(uuid.NewString())
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() uuid.UUID { return l.id }
func (l Loan) OwnerID() uuid.UUID { return l.ownerID }
func (l Loan) UHID() string { return l.uhid }
func (l Loan) ApplicationNumber() string { return l.applicationNumber }
func (l Loan) Currency() string { return l.currency }
func (l Loan) Purpose() string { return l.purpose }
func (l Loan) RequestedAmount() decimal.Decimal { return l.requestedAmount }
func (l Loan) RequestedTermMonths() int { return l.requestedTermMonths }
func (l Loan) CreditScore() int { return l.creditScore }
func (l Loan) MaxEligibleAmount() decimal.Decimal { return l.maxEligibleAmount }
func (l Loan) SuggestedRate() decimal.Decimal { return l.suggestedRate }
func (l Loan) Principal() decimal.Decimal { return l.principal }
func (l Loan) AnnualRatePercent() decimal.Decimal { return l.annualRatePercent }
func (l Loan) TermMonths() int { return l.termMonths }
func (l Loan) MonthlyPayment() decimal.Decimal { return l.monthlyPayment }
func (l Loan) ApprovalDate() time.Time { return l.approvalDate }
func (l Loan) RemainingBalance() decimal.Decimal { return l.remainingBalance }
func (l Loan) Status() valueobject.LoanStatus { return l.status }
func (l Loan) RejectionReason() string { return l.rejectionReason }
func (l Loan) DisbursedToWallet() bool { return l.disbursedToWallet }
func (l Loan) WalletID() uuid.UUID { return l.walletID }
func (l Loan) Version() int { return l.version }
func (l Loan) CreatedAt() time.Time { return l.createdAt }
func (l Loan) UpdatedAt() time.Time { return l.updatedAt }

// NextDueDate returns a copy of the next due date, or nil once settled.
func (l Loan) NextDueDate() *time.Time {
	if l.nextDueDate == nil {
		return nil
	}
	d := *l.nextDueDate
	return &d
}

// Payments returns a copy of the EMI history in chronological order.
func (l Loan) Payments() []EmiPayment {
	if len(l.payments) == 0 {
		return nil
	}
	out := make([]EmiPayment, len(l.payments))
	copy(out, l.payments)
	return out
}

// DomainEvents returns events raised since the aggregate was loaded.
func (l Loan) DomainEvents() []events.DomainEvent { return l.copyEvents() }

// ClearEvents returns a copy of the loan with no pending events.
func (l Loan) ClearEvents() Loan {
	l.domainEvents = nil
	return l
}

func (l Loan) copyEvents() []events.DomainEvent {
	if len(l.domainEvents) == 0 {
		return nil
	}
	cp := make([]events.DomainEvent, len(l.domainEvents))
	copy(cp, l.domainEvents)
	return cp
}

// FormatApplicationNumber renders ML<year><6-digit sequence>.
func FormatApplicationNumber(year int, seq int64) string {
	return fmt.Sprintf("ML%d%06d", year, seq)
}
