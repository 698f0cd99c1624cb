package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricare/lending/internal/domain/model"
	pkgpostgres "github.com/ricare/lending/pkg/postgres"
)

// DisbursementStore implements port.DisbursementStore by writing the loan,
// the wallet and both sets of events in a single transaction.
type DisbursementStore struct {
	pool *pgxpool.Pool
}

// NewDisbursementStore creates a new PostgreSQL-backed disbursement store.
func NewDisbursementStore(pool *pgxpool.Pool) *DisbursementStore {
	return &DisbursementStore{pool: pool}
}

// CommitDisbursement persists loan and wallet atomically. A version mismatch
// on either row rolls back both.
func (s *DisbursementStore) CommitDisbursement(ctx context.Context, loan model.Loan, wallet model.Wallet) error {
	return pkgpostgres.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		if err := upsertLoan(ctx, tx, loan); err != nil {
			return err
		}
		if err := upsertWallet(ctx, tx, wallet); err != nil {
			return err
		}
		if err := writeOutbox(ctx, tx, loan.DomainEvents()); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, wallet.DomainEvents())
	})
}
