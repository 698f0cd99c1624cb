package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/ricare/lending/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// LoanRepository persists and retrieves loans together with their EMI ledger.
// Save inserts a new loan or updates one whose stored version still equals
// loan.Version(); otherwise it fails with model.ErrConcurrencyConflict.
// Pending domain events are written to the outbox in the same transaction.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Loan, error)
	FindByUHID(ctx context.Context, uhid string) ([]model.Loan, error)
}

// WalletRepository persists the health-card wallet projection with the same
// optimistic versioning as LoanRepository.
type WalletRepository interface {
	Save(ctx context.Context, wallet model.Wallet) error
	FindByID(ctx context.Context, id uuid.UUID) (model.Wallet, error)
	FindByCardNumber(ctx context.Context, cardNumber string) (model.Wallet, error)
}

// DisbursementStore commits a loan and a wallet in one atomic unit: both
// version checks pass and both rows change, or nothing changes.
type DisbursementStore interface {
	CommitDisbursement(ctx context.Context, loan model.Loan, wallet model.Wallet) error
}

// SequenceGenerator hands out strictly increasing application sequence
// numbers without reading existing rows.
type SequenceGenerator interface {
	NextApplicationSequence(ctx context.Context) (int64, error)
}

// IdempotencyStore guards client supplied idempotency keys for EMI payments.
type IdempotencyStore interface {
	// Claim reserves key for a new request. When the key is already taken it
	// returns the recorded transaction ID, or "" while the first request is
	// still in flight.
	Claim(ctx context.Context, key string) (transactionID string, claimed bool, err error)
	// Complete records the transaction produced for a claimed key.
	Complete(ctx context.Context, key, transactionID string) error
	// Release drops a claim whose request failed.
	Release(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// CreditBureauClient fetches credit scores from an external bureau.
type CreditBureauClient interface {
	GetCreditScore(ctx context.Context, applicantID uuid.UUID) (int, error)
}

// Identity is the KYC view of a patient.
type Identity struct {
	UHID        string
	KYCVerified bool
}

// IdentityVerifier reports the KYC state of a patient.
type IdentityVerifier interface {
	GetIdentity(ctx context.Context, ownerID uuid.UUID) (Identity, error)
}
