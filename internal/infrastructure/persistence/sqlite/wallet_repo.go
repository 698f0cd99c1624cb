package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
)

// WalletRepo implements port.WalletRepository.
type WalletRepo struct {
	store *Store
}

// NewWalletRepo creates a wallet repository on store.
func NewWalletRepo(store *Store) *WalletRepo {
	return &WalletRepo{store: store}
}

const walletColumns = `id, owner_id, card_number, currency, available_balance, status, version, created_at, updated_at`

// Save inserts or version-checks and updates a wallet.
func (r *WalletRepo) Save(ctx context.Context, wallet model.Wallet) error {
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertWallet(ctx, tx, wallet); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, wallet.DomainEvents())
	})
}

// FindByID retrieves a wallet by its ID.
func (r *WalletRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Wallet, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = ?`, id.String())
	w, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Wallet{}, fmt.Errorf("%w: %s", model.ErrWalletNotFound, id)
	}
	if err != nil {
		return model.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}

// FindByCardNumber retrieves a wallet by its health-card number.
func (r *WalletRepo) FindByCardNumber(ctx context.Context, cardNumber string) (model.Wallet, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+walletColumns+` FROM wallets WHERE card_number = ?`, cardNumber)
	w, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Wallet{}, fmt.Errorf("%w: card %s", model.ErrWalletNotFound, cardNumber)
	}
	if err != nil {
		return model.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}

func upsertWallet(ctx context.Context, tx *sql.Tx, w model.Wallet) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			available_balance = excluded.available_balance,
			status            = excluded.status,
			version           = wallets.version + 1,
			updated_at        = excluded.updated_at
		WHERE wallets.version = excluded.version
	`,
		w.ID().String(), w.OwnerID().String(), w.CardNumber(), w.Currency().Code(), w.AvailableBalance().String(),
		w.Status().String(), w.Version(), w.CreatedAt().UTC(), w.UpdatedAt().UTC(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: card %s is already registered", model.ErrInvalidArgument, w.CardNumber())
	}
	if err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: wallet %s version %d", model.ErrConcurrencyConflict, w.ID(), w.Version())
	}
	return nil
}

func scanWallet(row scannable) (model.Wallet, error) {
	var (
		id, ownerID          uuid.UUID
		cardNumber, currency string
		balance              decimal.Decimal
		status               string
		version              int
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &ownerID, &cardNumber, &currency, &balance, &status, &version, &createdAt, &updatedAt); err != nil {
		return model.Wallet{}, err
	}
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return model.Wallet{}, err
	}
	st, err := valueobject.NewWalletStatus(status)
	if err != nil {
		return model.Wallet{}, err
	}
	return model.ReconstructWallet(id, ownerID, cardNumber, cur, balance, st, version, createdAt.UTC(), updatedAt.UTC()), nil
}
