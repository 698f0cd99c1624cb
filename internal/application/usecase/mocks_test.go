package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
	"github.com/ricare/lending/pkg/testutil"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	saveFunc          func(ctx context.Context, loan model.Loan) error
	findByIDFunc      func(ctx context.Context, id uuid.UUID) (model.Loan, error)
	findByOwnerIDFunc func(ctx context.Context, ownerID uuid.UUID) ([]model.Loan, error)
	findByUHIDFunc    func(ctx context.Context, uhid string) ([]model.Loan, error)
	savedLoans        []model.Loan
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, loan); err != nil {
			return err
		}
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, model.ErrLoanNotFound
}

func (m *mockLoanRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Loan, error) {
	if m.findByOwnerIDFunc != nil {
		return m.findByOwnerIDFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockLoanRepository) FindByUHID(ctx context.Context, uhid string) ([]model.Loan, error) {
	if m.findByUHIDFunc != nil {
		return m.findByUHIDFunc(ctx, uhid)
	}
	return nil, nil
}

type mockWalletRepository struct {
	saveFunc             func(ctx context.Context, w model.Wallet) error
	findByIDFunc         func(ctx context.Context, id uuid.UUID) (model.Wallet, error)
	findByCardNumberFunc func(ctx context.Context, cardNumber string) (model.Wallet, error)
	savedWallets         []model.Wallet
}

func (m *mockWalletRepository) Save(ctx context.Context, w model.Wallet) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, w); err != nil {
			return err
		}
	}
	m.savedWallets = append(m.savedWallets, w)
	return nil
}

func (m *mockWalletRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Wallet, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Wallet{}, model.ErrWalletNotFound
}

func (m *mockWalletRepository) FindByCardNumber(ctx context.Context, cardNumber string) (model.Wallet, error) {
	if m.findByCardNumberFunc != nil {
		return m.findByCardNumberFunc(ctx, cardNumber)
	}
	return model.Wallet{}, model.ErrWalletNotFound
}

type mockDisbursementStore struct {
	commitFunc func(ctx context.Context, loan model.Loan, wallet model.Wallet) error
	commits    int
}

func (m *mockDisbursementStore) CommitDisbursement(ctx context.Context, loan model.Loan, wallet model.Wallet) error {
	if m.commitFunc != nil {
		if err := m.commitFunc(ctx, loan, wallet); err != nil {
			return err
		}
	}
	m.commits++
	return nil
}

type mockSequenceGenerator struct {
	next int64
	err  error
}

func (m *mockSequenceGenerator) NextApplicationSequence(context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.next++
	return m.next, nil
}

type mockCreditBureauClient struct {
	getCreditScoreFunc func(ctx context.Context, applicantID uuid.UUID) (int, error)
}

func (m *mockCreditBureauClient) GetCreditScore(ctx context.Context, applicantID uuid.UUID) (int, error) {
	if m.getCreditScoreFunc != nil {
		return m.getCreditScoreFunc(ctx, applicantID)
	}
	return 760, nil
}

type mockIdentityVerifier struct {
	identity port.Identity
	err      error
}

func (m *mockIdentityVerifier) GetIdentity(context.Context, uuid.UUID) (port.Identity, error) {
	return m.identity, m.err
}

// mockIdempotencyStore keeps claims in memory. An empty value marks a claim
// whose request is still in flight.
type mockIdempotencyStore struct {
	mu       sync.Mutex
	keys     map[string]string
	released []string
}

func newMockIdempotencyStore() *mockIdempotencyStore {
	return &mockIdempotencyStore{keys: map[string]string{}}
}

func (m *mockIdempotencyStore) Claim(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx, ok := m.keys[key]; ok {
		return tx, false, nil
	}
	m.keys[key] = ""
	return "", true, nil
}

func (m *mockIdempotencyStore) Complete(_ context.Context, key, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = txID
	return nil
}

func (m *mockIdempotencyStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

// --- Fixtures ---

func draftLoan(t *testing.T, score int) model.Loan {
	t.Helper()
	loan, err := model.NewLoan(model.LoanApplication{
		OwnerID:             testutil.BorrowerID,
		UHID:                "UHID-42",
		ApplicationNumber:   "ML2026000001",
		Purpose:             "cardiac procedure",
		RequestedAmount:     decimal.NewFromInt(120000),
		RequestedTermMonths: 12,
		CreditScore:         score,
	}, testutil.ApprovalDate.Add(-72*time.Hour))
	require.NoError(t, err)
	return loan.ClearEvents()
}

func submittedLoan(t *testing.T, score int) model.Loan {
	t.Helper()
	loan, err := draftLoan(t, score).Submit(testutil.ApprovalDate.Add(-48 * time.Hour))
	require.NoError(t, err)
	return loan.ClearEvents()
}

func approvedLoan(t *testing.T, approvedAt time.Time) model.Loan {
	t.Helper()
	loan, err := submittedLoan(t, 720).Approve(model.ApprovalTerms{
		Principal:         decimal.NewFromInt(120000),
		AnnualRatePercent: decimal.NewFromInt(12),
		TermMonths:        12,
	}, approvedAt)
	require.NoError(t, err)
	return loan.ClearEvents()
}

func activeWallet(t *testing.T, owner uuid.UUID) model.Wallet {
	t.Helper()
	w, err := model.NewWallet(owner, "HC-2026-0001", money.INR, valueobject.WalletStatusActive, testutil.ApprovalDate)
	require.NoError(t, err)
	return w
}

func loanRepoReturning(loan model.Loan) *mockLoanRepository {
	return &mockLoanRepository{
		findByIDFunc: func(_ context.Context, id uuid.UUID) (model.Loan, error) {
			if id != loan.ID() {
				return model.Loan{}, model.ErrLoanNotFound
			}
			return loan, nil
		},
	}
}
