package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
	pkgpostgres "github.com/ricare/lending/pkg/postgres"
)

// WalletRepo implements port.WalletRepository.
type WalletRepo struct {
	pool *pgxpool.Pool
}

// NewWalletRepo creates a new PostgreSQL-backed wallet repository.
func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, owner_id, card_number, currency, available_balance, status, version, created_at, updated_at`

// Save inserts or version-checks and updates a wallet.
func (r *WalletRepo) Save(ctx context.Context, wallet model.Wallet) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := upsertWallet(ctx, tx, wallet); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, wallet.DomainEvents())
	})
}

// FindByID retrieves a wallet by its ID.
func (r *WalletRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Wallet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1`, id)
	w, err := scanWallet(row)
	if pkgpostgres.IsNoRows(err) {
		return model.Wallet{}, fmt.Errorf("%w: %s", model.ErrWalletNotFound, id)
	}
	if err != nil {
		return model.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}

// FindByCardNumber retrieves a wallet by its health-card number.
func (r *WalletRepo) FindByCardNumber(ctx context.Context, cardNumber string) (model.Wallet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE card_number = $1`, cardNumber)
	w, err := scanWallet(row)
	if pkgpostgres.IsNoRows(err) {
		return model.Wallet{}, fmt.Errorf("%w: card %s", model.ErrWalletNotFound, cardNumber)
	}
	if err != nil {
		return model.Wallet{}, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}

func upsertWallet(ctx context.Context, q pkgpostgres.Querier, w model.Wallet) error {
	tag, err := q.Exec(ctx, `
		INSERT INTO wallets (`+walletColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			available_balance = EXCLUDED.available_balance,
			status            = EXCLUDED.status,
			version           = wallets.version + 1,
			updated_at        = EXCLUDED.updated_at
		WHERE wallets.version = $7
	`,
		w.ID(), w.OwnerID(), w.CardNumber(), w.Currency().Code(), w.AvailableBalance(),
		w.Status().String(), w.Version(), w.CreatedAt(), w.UpdatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err) {
		return fmt.Errorf("%w: card %s is already registered", model.ErrInvalidArgument, w.CardNumber())
	}
	if err != nil {
		return fmt.Errorf("upsert wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
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
	err := row.Scan(&id, &ownerID, &cardNumber, &currency, &balance, &status, &version, &createdAt, &updatedAt)
	if err != nil {
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
