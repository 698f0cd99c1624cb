package sqlite_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/domain/event"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/service"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/internal/infrastructure/persistence/sqlite"
	"github.com/ricare/lending/pkg/money"
	"github.com/ricare/lending/pkg/testutil"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func approvedLoan(t *testing.T, appNumber string) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(model.LoanApplication{
		OwnerID:             testutil.BorrowerID,
		UHID:                "UHID-7",
		ApplicationNumber:   appNumber,
		Purpose:             "dialysis",
		RequestedAmount:     decimal.NewFromInt(120000),
		RequestedTermMonths: 12,
		CreditScore:         755,
	}, testutil.ApprovalDate.Add(-2*time.Hour))
	require.NoError(t, err)
	loan, err = loan.Submit(testutil.ApprovalDate.Add(-time.Hour))
	require.NoError(t, err)
	loan, err = loan.Approve(model.ApprovalTerms{
		Principal:         decimal.NewFromInt(120000),
		AnnualRatePercent: decimal.NewFromInt(12),
		TermMonths:        12,
	}, testutil.ApprovalDate)
	require.NoError(t, err)
	return loan
}

func TestLoanRepo_RoundTrip(t *testing.T) {
	store := openStore(t)
	repo := sqlite.NewLoanRepo(store)
	ctx := context.Background()

	loan := approvedLoan(t, "ML2026000001")
	require.NoError(t, repo.Save(ctx, loan))

	got, err := repo.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	assert.Equal(t, loan.ApplicationNumber(), got.ApplicationNumber())
	assert.Equal(t, valueobject.LoanStatusApproved, got.Status())
	assert.True(t, decimal.RequireFromString("10661.85").Equal(got.MonthlyPayment()))
	assert.True(t, got.ApprovalDate().Equal(testutil.ApprovalDate))
	require.NotNil(t, got.NextDueDate())
	assert.True(t, got.NextDueDate().Equal(testutil.ApprovalDate.AddDate(0, 1, 0)))
	assert.Equal(t, uuid.Nil, got.WalletID())
	assert.Equal(t, 1, got.Version())
}

func TestLoanRepo_FindByUHID(t *testing.T) {
	repo := sqlite.NewLoanRepo(openStore(t))
	ctx := context.Background()

	first := approvedLoan(t, "ML2026000011")
	second := approvedLoan(t, "ML2026000012")
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	list, err := repo.FindByUHID(ctx, "UHID-7")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID(), list[0].ID(), "newest first")

	none, err := repo.FindByUHID(ctx, "UHID-unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoanRepo_NotFound(t *testing.T) {
	repo := sqlite.NewLoanRepo(openStore(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrLoanNotFound)
}

func TestLoanRepo_PaymentsAndVersionConflict(t *testing.T) {
	store := openStore(t)
	repo := sqlite.NewLoanRepo(store)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, approvedLoan(t, "ML2026000002")))
	list, err := repo.FindByOwnerID(ctx, testutil.BorrowerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	stored := list[0]

	paid, payment, err := stored.ApplyPayment(decimal.RequireFromString("10661.85"), valueobject.PaymentMethodBankTransfer, testutil.ApprovalDate.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, paid))

	got, err := repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version())
	require.Len(t, got.Payments(), 1)
	p := got.Payments()[0]
	assert.Equal(t, payment.TransactionID, p.TransactionID)
	assert.Equal(t, valueobject.PaymentMethodBankTransfer, p.Method)
	assert.True(t, decimal.RequireFromString("9461.85").Equal(p.PrincipalComponent))
	assert.True(t, decimal.RequireFromString("110538.15").Equal(got.RemainingBalance()))

	stale, _, err := stored.ApplyPayment(decimal.RequireFromString("10661.85"), valueobject.PaymentMethodCash, testutil.ApprovalDate.AddDate(0, 1, 2))
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, stale), model.ErrConcurrencyConflict)

	got, err = repo.FindByID(ctx, stored.ID())
	require.NoError(t, err)
	assert.Len(t, got.Payments(), 1)
}

func TestWalletRepo_DuplicateCard(t *testing.T) {
	store := openStore(t)
	repo := sqlite.NewWalletRepo(store)
	ctx := context.Background()

	w, err := model.NewWallet(testutil.BorrowerID, "HC-77", money.INR, valueobject.WalletStatusActive, testutil.ApprovalDate)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, w))

	got, err := repo.FindByCardNumber(ctx, "HC-77")
	require.NoError(t, err)
	assert.Equal(t, w.ID(), got.ID())
	assert.Equal(t, money.INR, got.Currency())

	dup, err := model.NewWallet(testutil.OtherBorrowerID, "HC-77", money.INR, valueobject.WalletStatusPending, testutil.ApprovalDate)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Save(ctx, dup), model.ErrInvalidArgument)

	_, err = repo.FindByCardNumber(ctx, "HC-404")
	assert.ErrorIs(t, err, model.ErrWalletNotFound)
}

func TestDisbursementStore_AtomicCommit(t *testing.T) {
	store := openStore(t)
	loans := sqlite.NewLoanRepo(store)
	wallets := sqlite.NewWalletRepo(store)
	commits := sqlite.NewDisbursementStore(store)
	ctx := context.Background()

	loan := approvedLoan(t, "ML2026000003")
	require.NoError(t, loans.Save(ctx, loan))
	w, err := model.NewWallet(testutil.BorrowerID, "HC-88", money.INR, valueobject.WalletStatusActive, testutil.ApprovalDate)
	require.NoError(t, err)
	require.NoError(t, wallets.Save(ctx, w))

	storedLoan, err := loans.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	storedWallet, err := wallets.FindByID(ctx, w.ID())
	require.NoError(t, err)

	newLoan, newWallet, err := service.NewDisbursementService().Disburse(storedLoan, storedWallet, testutil.ApprovalDate.Add(time.Hour))
	require.NoError(t, err)

	// A wallet written in between makes the whole commit fail.
	touched, changed := storedWallet.ChangeStatus(valueobject.WalletStatusSuspended, testutil.ApprovalDate.Add(30*time.Minute))
	require.True(t, changed)
	require.NoError(t, wallets.Save(ctx, touched))

	assert.ErrorIs(t, commits.CommitDisbursement(ctx, newLoan, newWallet), model.ErrConcurrencyConflict)
	gotLoan, err := loans.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	assert.False(t, gotLoan.DisbursedToWallet())
	assert.Equal(t, 1, gotLoan.Version())
}

func TestDisbursementStore_CommitWritesBothAndOutbox(t *testing.T) {
	store := openStore(t)
	loans := sqlite.NewLoanRepo(store)
	wallets := sqlite.NewWalletRepo(store)
	ctx := context.Background()

	loan := approvedLoan(t, "ML2026000004")
	require.NoError(t, loans.Save(ctx, loan))
	w, err := model.NewWallet(testutil.BorrowerID, "HC-99", money.INR, valueobject.WalletStatusActive, testutil.ApprovalDate)
	require.NoError(t, err)
	require.NoError(t, wallets.Save(ctx, w))

	storedLoan, err := loans.FindByID(ctx, loan.ID())
	require.NoError(t, err)
	storedWallet, err := wallets.FindByID(ctx, w.ID())
	require.NoError(t, err)
	newLoan, newWallet, err := service.NewDisbursementService().Disburse(storedLoan, storedWallet, testutil.ApprovalDate.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, sqlite.NewDisbursementStore(store).CommitDisbursement(ctx, newLoan, newWallet))

	gotWallet, err := wallets.FindByID(ctx, w.ID())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120000).Equal(gotWallet.AvailableBalance()))
	assert.Equal(t, 2, gotWallet.Version())

	entries, err := store.FetchUnpublished(ctx, 50)
	require.NoError(t, err)
	var types []string
	var ids []string
	for _, e := range entries {
		types = append(types, e.EventType)
		ids = append(ids, e.ID)
	}
	assert.Contains(t, types, event.TypeLoanApplicationCreated)
	assert.Contains(t, types, event.TypeLoanApproved)
	assert.Contains(t, types, event.TypeWalletRegistered)
	assert.Contains(t, types, event.TypeLoanDisbursedToWallet)
	assert.Contains(t, types, event.TypeWalletCredited)

	require.NoError(t, store.MarkPublished(ctx, ids))
	entries, err = store.FetchUnpublished(ctx, 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_NextApplicationSequence_Concurrent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const n = 20
	seen := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := store.NextApplicationSequence(ctx)
			assert.NoError(t, err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, unique[i], "missing sequence %d", i)
	}
}
