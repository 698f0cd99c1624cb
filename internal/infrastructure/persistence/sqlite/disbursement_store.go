package sqlite

import (
	"context"
	"database/sql"

	"github.com/ricare/lending/internal/domain/model"
)

// DisbursementStore implements port.DisbursementStore.
type DisbursementStore struct {
	store *Store
}

// NewDisbursementStore creates a disbursement store on store.
func NewDisbursementStore(store *Store) *DisbursementStore {
	return &DisbursementStore{store: store}
}

// CommitDisbursement persists loan and wallet in one transaction.
func (d *DisbursementStore) CommitDisbursement(ctx context.Context, loan model.Loan, wallet model.Wallet) error {
	return d.store.withTx(ctx, func(tx *sql.Tx) error {
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
