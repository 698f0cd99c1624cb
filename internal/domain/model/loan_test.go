package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/domain/event"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
)

var (
	ownerID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	approvedAt = time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
)

func newDraft(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(model.LoanApplication{
		OwnerID:             ownerID,
		UHID:                "UHID-1001",
		ApplicationNumber:   model.FormatApplicationNumber(2026, 1),
		Purpose:             "knee surgery",
		RequestedAmount:     dec("120000"),
		RequestedTermMonths: 12,
		CreditScore:         720,
		Eligibility: model.Eligibility{
			Eligible:          true,
			Tier:              "GOOD",
			MaxEligibleAmount: dec("300000"),
			AnnualRatePercent: dec("12"),
		},
	}, approvedAt.Add(-48*time.Hour))
	require.NoError(t, err)
	return loan
}

func newApproved(t *testing.T, principal, rate string, term int) model.Loan {
	t.Helper()
	loan := newDraft(t)
	loan, err := loan.Submit(approvedAt.Add(-24 * time.Hour))
	require.NoError(t, err)
	loan, err = loan.Approve(model.ApprovalTerms{
		Principal:         dec(principal),
		AnnualRatePercent: dec(rate),
		TermMonths:        term,
	}, approvedAt)
	require.NoError(t, err)
	return loan
}

func eventTypes(l model.Loan) []string {
	var out []string
	for _, e := range l.DomainEvents() {
		out = append(out, e.EventType())
	}
	return out
}

func TestNewLoan(t *testing.T) {
	loan := newDraft(t)

	assert.NotEqual(t, uuid.Nil, loan.ID())
	assert.Equal(t, valueobject.LoanStatusDraft, loan.Status())
	assert.Equal(t, "ML2026000001", loan.ApplicationNumber())
	assert.Equal(t, "INR", loan.Currency())
	assert.Equal(t, 1, loan.Version())
	assert.True(t, loan.RemainingBalance().IsZero())
	assert.Nil(t, loan.NextDueDate())
	assert.Equal(t, []string{event.TypeLoanApplicationCreated}, eventTypes(loan))
}

func TestNewLoan_Validation(t *testing.T) {
	valid := model.LoanApplication{
		OwnerID:             ownerID,
		ApplicationNumber:   "ML2026000001",
		RequestedAmount:     dec("1000"),
		RequestedTermMonths: 6,
		CreditScore:         700,
	}

	tests := []struct {
		name   string
		mutate func(*model.LoanApplication)
	}{
		{"missing owner", func(a *model.LoanApplication) { a.OwnerID = uuid.Nil }},
		{"missing application number", func(a *model.LoanApplication) { a.ApplicationNumber = " " }},
		{"zero amount", func(a *model.LoanApplication) { a.RequestedAmount = decimal.Zero }},
		{"zero term", func(a *model.LoanApplication) { a.RequestedTermMonths = 0 }},
		{"term above maximum", func(a *model.LoanApplication) { a.RequestedTermMonths = model.MaxTermMonths + 1 }},
		{"negative score", func(a *model.LoanApplication) { a.CreditScore = -1 }},
		{"bad currency", func(a *model.LoanApplication) { a.Currency = "rupees" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := valid
			tt.mutate(&app)
			_, err := model.NewLoan(app, approvedAt)
			assert.ErrorIs(t, err, model.ErrInvalidArgument)
		})
	}
}

func TestLoan_Lifecycle(t *testing.T) {
	loan := newDraft(t)

	_, err := loan.Approve(model.ApprovalTerms{Principal: dec("1000"), AnnualRatePercent: dec("12"), TermMonths: 6}, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidState, "draft cannot be approved")

	submitted, err := loan.Submit(approvedAt)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusSubmitted, submitted.Status())
	assert.Equal(t, valueobject.LoanStatusDraft, loan.Status(), "receiver unchanged")

	_, err = submitted.Submit(approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidState)

	reviewing, err := submitted.StartReview(approvedAt)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusUnderReview, reviewing.Status())

	rejected, err := reviewing.Reject("insufficient documents", approvedAt)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusRejected, rejected.Status())
	assert.Equal(t, "insufficient documents", rejected.RejectionReason())
	assert.Contains(t, eventTypes(rejected), event.TypeLoanRejected)

	_, err = reviewing.Reject("  ", approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = rejected.Approve(model.ApprovalTerms{Principal: dec("1000"), AnnualRatePercent: dec("12"), TermMonths: 6}, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestLoan_Approve(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)

	assert.Equal(t, valueobject.LoanStatusApproved, loan.Status())
	assert.True(t, dec("120000").Equal(loan.Principal()))
	assert.True(t, dec("120000").Equal(loan.RemainingBalance()))
	assert.True(t, dec("10661.85").Equal(loan.MonthlyPayment()))
	assert.Equal(t, approvedAt, loan.ApprovalDate())
	require.NotNil(t, loan.NextDueDate())
	assert.Equal(t, time.Date(2026, time.February, 15, 9, 30, 0, 0, time.UTC), *loan.NextDueDate())
	assert.Contains(t, eventTypes(loan), event.TypeLoanApproved)
}

func TestLoan_Approve_InvalidTerms(t *testing.T) {
	submitted, err := newDraft(t).Submit(approvedAt)
	require.NoError(t, err)

	_, err = submitted.Approve(model.ApprovalTerms{Principal: dec("1000"), AnnualRatePercent: dec("12"), TermMonths: 0}, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = submitted.Approve(model.ApprovalTerms{Principal: dec("-5"), AnnualRatePercent: dec("12"), TermMonths: 6}, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestLoan_ApplyPayment_InterestFirst(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)
	paidAt := time.Date(2026, time.February, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, dec("1200").Equal(loan.InterestDue()))

	after, p, err := loan.ApplyPayment(dec("10661.85"), valueobject.PaymentMethodOnline, paidAt)
	require.NoError(t, err)

	assert.True(t, dec("1200.00").Equal(p.InterestComponent))
	assert.True(t, dec("9461.85").Equal(p.PrincipalComponent))
	assert.True(t, dec("10661.85").Equal(p.AmountPaid))
	assert.True(t, dec("110538.15").Equal(p.BalanceAfter))
	assert.Equal(t, 1, p.InstallmentNumber)
	assert.Equal(t, valueobject.PaymentStatusCompleted, p.Status)
	assert.Regexp(t, `^EMI-[0-9A-F-]{36}$`, p.TransactionID)
	assert.Equal(t, paidAt, p.PaymentDate)

	assert.True(t, dec("110538.15").Equal(after.RemainingBalance()))
	require.NotNil(t, after.NextDueDate())
	assert.Equal(t, time.Date(2026, time.March, 15, 9, 30, 0, 0, time.UTC), *after.NextDueDate())
	assert.Len(t, after.Payments(), 1)
	assert.Contains(t, eventTypes(after), event.TypeEmiPaymentApplied)

	// The receiver is untouched.
	assert.True(t, dec("120000").Equal(loan.RemainingBalance()))
	assert.Empty(t, loan.Payments())
}

func TestLoan_ApplyPayment_Rejections(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)

	tests := []struct {
		name   string
		amount string
		want   error
	}{
		{"zero", "0", model.ErrInvalidArgument},
		{"negative", "-100", model.ErrInvalidArgument},
		{"sub-paise", "10661.855", model.ErrInvalidArgument},
		{"below interest", "500", model.ErrPaymentBelowInterest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			after, _, err := loan.ApplyPayment(dec(tt.amount), valueobject.PaymentMethodOnline, approvedAt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.True(t, loan.RemainingBalance().Equal(after.RemainingBalance()))
		})
	}

	// A shortfall is an invalid argument, not a state problem.
	_, _, err := loan.ApplyPayment(dec("500"), valueobject.PaymentMethodOnline, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}

func TestLoan_ApplyPayment_ShortfallAt14Percent(t *testing.T) {
	loan := newApproved(t, "50000", "14", 12)
	assert.True(t, dec("583.33").Equal(model.AccrueInterest(loan.RemainingBalance(), dec("14"))))

	after, _, err := loan.ApplyPayment(dec("500"), valueobject.PaymentMethodOnline, approvedAt)
	assert.ErrorIs(t, err, model.ErrPaymentBelowInterest)
	assert.True(t, dec("50000").Equal(after.RemainingBalance()))
	assert.Empty(t, after.Payments())

	_, p, err := loan.ApplyPayment(dec("583.33"), valueobject.PaymentMethodOnline, approvedAt)
	require.NoError(t, err)
	assert.True(t, p.PrincipalComponent.IsZero())
}

func TestLoan_ApplyPayment_InterestOnly(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)

	after, p, err := loan.ApplyPayment(dec("1200"), valueobject.PaymentMethodCash, approvedAt.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, p.PrincipalComponent.IsZero())
	assert.True(t, dec("120000").Equal(after.RemainingBalance()))
	assert.Equal(t, valueobject.PaymentMethodCash, p.Method)
}

func TestLoan_ApplyPayment_NotRepaying(t *testing.T) {
	_, _, err := newDraft(t).ApplyPayment(dec("1000"), valueobject.PaymentMethodOnline, approvedAt)
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestLoan_ApplyPayment_OverpaymentSettles(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)

	after, p, err := loan.ApplyPayment(dec("200000"), valueobject.PaymentMethodBankTransfer, approvedAt.AddDate(0, 1, 0))
	require.NoError(t, err)

	assert.True(t, dec("121200").Equal(p.AmountPaid), "only the applied amount is recorded")
	assert.True(t, dec("120000").Equal(p.PrincipalComponent))
	assert.True(t, after.RemainingBalance().IsZero())
	assert.Equal(t, valueobject.LoanStatusCompleted, after.Status())
	assert.Nil(t, after.NextDueDate())
	assert.Contains(t, eventTypes(after), event.TypeLoanCompleted)

	_, _, err = after.ApplyPayment(dec("100"), valueobject.PaymentMethodOnline, approvedAt.AddDate(0, 2, 0))
	assert.ErrorIs(t, err, model.ErrAlreadySettled)
}

func TestLoan_ApplyPayment_FullScheduleSettlesExactly(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)
	sched, err := model.ComputeSchedule(loan.Principal(), loan.AnnualRatePercent(), loan.TermMonths(), loan.ApprovalDate())
	require.NoError(t, err)

	for i, entry := range sched.Entries {
		var p model.EmiPayment
		loan, p, err = loan.ApplyPayment(entry.Payment, valueobject.PaymentMethodOnline, entry.DueDate)
		require.NoError(t, err, "installment %d", i+1)
		assert.True(t, entry.Interest.Equal(p.InterestComponent), "installment %d interest", i+1)
		assert.True(t, entry.RemainingBalance.Equal(p.BalanceAfter), "installment %d balance", i+1)
	}

	assert.Equal(t, valueobject.LoanStatusCompleted, loan.Status())
	assert.True(t, loan.RemainingBalance().IsZero())
	assert.Len(t, loan.Payments(), 12)
}

func TestLoan_MarkDisbursed(t *testing.T) {
	loan := newApproved(t, "50000", "14", 6)
	walletID := uuid.New()

	disbursed, err := loan.MarkDisbursed(walletID, approvedAt)
	require.NoError(t, err)
	assert.True(t, disbursed.DisbursedToWallet())
	assert.Equal(t, walletID, disbursed.WalletID())
	assert.Equal(t, valueobject.LoanStatusDisbursed, disbursed.Status())

	_, err = disbursed.MarkDisbursed(walletID, approvedAt)
	assert.ErrorIs(t, err, model.ErrAlreadyDisbursed)

	// Payments are still accepted after disbursement.
	_, _, err = disbursed.ApplyPayment(dec("8676.90"), valueobject.PaymentMethodOnline, approvedAt.AddDate(0, 1, 0))
	assert.NoError(t, err)
}

func TestLoan_StateRoundTrip(t *testing.T) {
	loan := newApproved(t, "120000", "12", 12)
	loan, _, err := loan.ApplyPayment(dec("10661.85"), valueobject.PaymentMethodOnline, approvedAt.AddDate(0, 1, 0))
	require.NoError(t, err)

	rebuilt := model.ReconstructLoan(loan.State())
	assert.Equal(t, loan.State(), rebuilt.State())
	assert.Empty(t, rebuilt.DomainEvents())
}

func TestLoan_ClearEvents(t *testing.T) {
	loan := newDraft(t)
	assert.NotEmpty(t, loan.DomainEvents())
	assert.Empty(t, loan.ClearEvents().DomainEvents())
	assert.NotEmpty(t, loan.DomainEvents())
}

func TestFormatApplicationNumber(t *testing.T) {
	assert.Equal(t, "ML2026000042", model.FormatApplicationNumber(2026, 42))
	assert.Equal(t, "ML20271234567", model.FormatApplicationNumber(2027, 1234567))
}
