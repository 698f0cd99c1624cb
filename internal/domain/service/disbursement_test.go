package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
)

var (
	borrower = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	stranger = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	now      = time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
)

func approvedLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(model.LoanApplication{
		OwnerID:             borrower,
		ApplicationNumber:   "ML2026000007",
		RequestedAmount:     decimal.NewFromInt(50000),
		RequestedTermMonths: 6,
		CreditScore:         680,
	}, now)
	require.NoError(t, err)
	loan, err = loan.Submit(now)
	require.NoError(t, err)
	loan, err = loan.Approve(model.ApprovalTerms{
		Principal:         decimal.NewFromInt(50000),
		AnnualRatePercent: decimal.NewFromInt(14),
		TermMonths:        6,
	}, now)
	require.NoError(t, err)
	return loan
}

func wallet(t *testing.T, owner uuid.UUID, status valueobject.WalletStatus) model.Wallet {
	t.Helper()
	w, err := model.NewWallet(owner, "HC-7", money.INR, status, now)
	require.NoError(t, err)
	return w
}

func TestDisburse_Success(t *testing.T) {
	svc := NewDisbursementService()
	loan := approvedLoan(t)
	w := wallet(t, borrower, valueobject.WalletStatusActive)

	gotLoan, gotWallet, err := svc.Disburse(loan, w, now)
	require.NoError(t, err)

	assert.Equal(t, valueobject.LoanStatusDisbursed, gotLoan.Status())
	assert.True(t, gotLoan.DisbursedToWallet())
	assert.Equal(t, w.ID(), gotLoan.WalletID())
	assert.True(t, decimal.NewFromInt(50000).Equal(gotWallet.AvailableBalance()))

	// Inputs are untouched.
	assert.False(t, loan.DisbursedToWallet())
	assert.True(t, w.AvailableBalance().IsZero())
}

func TestDisburse_ExactlyOnce(t *testing.T) {
	svc := NewDisbursementService()
	w := wallet(t, borrower, valueobject.WalletStatusActive)

	loan, credited, err := svc.Disburse(approvedLoan(t), w, now)
	require.NoError(t, err)

	_, again, err := svc.Disburse(loan, credited, now)
	assert.ErrorIs(t, err, model.ErrAlreadyDisbursed)
	assert.True(t, credited.AvailableBalance().Equal(again.AvailableBalance()))
}

func TestDisburse_Failures(t *testing.T) {
	svc := NewDisbursementService()

	draft, err := model.NewLoan(model.LoanApplication{
		OwnerID:             borrower,
		ApplicationNumber:   "ML2026000008",
		RequestedAmount:     decimal.NewFromInt(1000),
		RequestedTermMonths: 3,
		CreditScore:         700,
	}, now)
	require.NoError(t, err)

	tests := []struct {
		name   string
		loan   model.Loan
		wallet model.Wallet
		want   error
	}{
		{"loan not approved", draft, wallet(t, borrower, valueobject.WalletStatusActive), model.ErrInvalidState},
		{"different owner", approvedLoan(t), wallet(t, stranger, valueobject.WalletStatusActive), model.ErrOwnershipMismatch},
		{"wallet pending", approvedLoan(t), wallet(t, borrower, valueobject.WalletStatusPending), model.ErrWalletInactive},
		{"wallet suspended", approvedLoan(t), wallet(t, borrower, valueobject.WalletStatusSuspended), model.ErrWalletInactive},
		// Ownership is checked before wallet status.
		{"different owner and inactive", approvedLoan(t), wallet(t, stranger, valueobject.WalletStatusSuspended), model.ErrOwnershipMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotLoan, gotWallet, err := svc.Disburse(tt.loan, tt.wallet, now)
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, gotLoan.DisbursedToWallet())
			assert.True(t, gotWallet.AvailableBalance().IsZero())
		})
	}
}
