package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
	pkgpostgres "github.com/ricare/lending/pkg/postgres"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

const loanColumns = `
	id, owner_id, uhid, application_number, currency, purpose,
	requested_amount, requested_term_months, credit_score,
	max_eligible_amount, suggested_rate,
	principal, annual_rate_percent, term_months, monthly_payment, approval_date,
	remaining_balance, next_due_date, status, rejection_reason,
	disbursed_to_wallet, wallet_id, version, created_at, updated_at`

// Save persists a loan, its new EMI payments and its pending events.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := upsertLoan(ctx, tx, loan); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, loan.DomainEvents())
	})
}

// FindByID retrieves a loan and its payment history.
func (r *LoanRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	state, err := scanLoanState(row)
	if pkgpostgres.IsNoRows(err) {
		return model.Loan{}, fmt.Errorf("%w: %s", model.ErrLoanNotFound, id)
	}
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	state.Payments, err = loadPayments(ctx, r.pool, id)
	if err != nil {
		return model.Loan{}, err
	}
	return model.ReconstructLoan(state), nil
}

// FindByOwnerID retrieves all loans of a patient, newest first.
func (r *LoanRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Loan, error) {
	return r.findLoans(ctx, `owner_id = $1`, ownerID)
}

// FindByUHID retrieves all loans recorded against a health ID, newest first.
func (r *LoanRepo) FindByUHID(ctx context.Context, uhid string) ([]model.Loan, error) {
	return r.findLoans(ctx, `uhid = $1`, uhid)
}

func (r *LoanRepo) findLoans(ctx context.Context, where string, arg any) ([]model.Loan, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE `+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}

	var states []model.LoanState
	for rows.Next() {
		s, err := scanLoanState(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		states = append(states, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}

	loans := make([]model.Loan, 0, len(states))
	for _, s := range states {
		if s.Payments, err = loadPayments(ctx, r.pool, s.ID); err != nil {
			return nil, err
		}
		loans = append(loans, model.ReconstructLoan(s))
	}
	return loans, nil
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

// upsertLoan inserts a new loan or updates the stored row when its version
// still matches; payments are append-only.
func upsertLoan(ctx context.Context, q pkgpostgres.Querier, loan model.Loan) error {
	s := loan.State()

	var approvalDate *time.Time
	if !s.ApprovalDate.IsZero() {
		approvalDate = &s.ApprovalDate
	}
	var walletID *uuid.UUID
	if s.WalletID != uuid.Nil {
		walletID = &s.WalletID
	}

	tag, err := q.Exec(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (id) DO UPDATE SET
			principal           = EXCLUDED.principal,
			annual_rate_percent = EXCLUDED.annual_rate_percent,
			term_months         = EXCLUDED.term_months,
			monthly_payment     = EXCLUDED.monthly_payment,
			approval_date       = EXCLUDED.approval_date,
			remaining_balance   = EXCLUDED.remaining_balance,
			next_due_date       = EXCLUDED.next_due_date,
			status              = EXCLUDED.status,
			rejection_reason    = EXCLUDED.rejection_reason,
			disbursed_to_wallet = EXCLUDED.disbursed_to_wallet,
			wallet_id           = EXCLUDED.wallet_id,
			version             = loans.version + 1,
			updated_at          = EXCLUDED.updated_at
		WHERE loans.version = $23
	`,
		s.ID, s.OwnerID, s.UHID, s.ApplicationNumber, s.Currency, s.Purpose,
		s.RequestedAmount, s.RequestedTermMonths, s.CreditScore,
		s.MaxEligibleAmount, s.SuggestedRate,
		s.Principal, s.AnnualRatePercent, s.TermMonths, s.MonthlyPayment, approvalDate,
		s.RemainingBalance, s.NextDueDate, s.Status.String(), s.RejectionReason,
		s.DisbursedToWallet, walletID, s.Version, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: loan %s version %d", model.ErrConcurrencyConflict, s.ID, s.Version)
	}

	for _, p := range s.Payments {
		_, err := q.Exec(ctx, `
			INSERT INTO emi_payments (
				transaction_id, loan_id, installment_number, payment_date,
				amount_paid, principal_component, interest_component, balance_after,
				method, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (transaction_id) DO NOTHING
		`,
			p.TransactionID, s.ID, p.InstallmentNumber, p.PaymentDate,
			p.AmountPaid, p.PrincipalComponent, p.InterestComponent, p.BalanceAfter,
			p.Method.String(), p.Status.String(),
		)
		if err != nil {
			return fmt.Errorf("insert emi payment %s: %w", p.TransactionID, err)
		}
	}
	return nil
}

func scanLoanState(row scannable) (model.LoanState, error) {
	var (
		s            model.LoanState
		approvalDate *time.Time
		walletID     *uuid.UUID
		status       string
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.UHID, &s.ApplicationNumber, &s.Currency, &s.Purpose,
		&s.RequestedAmount, &s.RequestedTermMonths, &s.CreditScore,
		&s.MaxEligibleAmount, &s.SuggestedRate,
		&s.Principal, &s.AnnualRatePercent, &s.TermMonths, &s.MonthlyPayment, &approvalDate,
		&s.RemainingBalance, &s.NextDueDate, &status, &s.RejectionReason,
		&s.DisbursedToWallet, &walletID, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.LoanState{}, err
	}

	s.Status, err = valueobject.NewLoanStatus(status)
	if err != nil {
		return model.LoanState{}, err
	}
	if approvalDate != nil {
		s.ApprovalDate = approvalDate.UTC()
	}
	if walletID != nil {
		s.WalletID = *walletID
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if s.NextDueDate != nil {
		d := s.NextDueDate.UTC()
		s.NextDueDate = &d
	}
	return s, nil
}

func loadPayments(ctx context.Context, q pkgpostgres.Querier, loanID uuid.UUID) ([]model.EmiPayment, error) {
	rows, err := q.Query(ctx, `
		SELECT transaction_id, installment_number, payment_date,
		       amount_paid, principal_component, interest_component, balance_after,
		       method, status
		FROM emi_payments
		WHERE loan_id = $1
		ORDER BY installment_number
	`, loanID)
	if err != nil {
		return nil, fmt.Errorf("query emi payments: %w", err)
	}
	defer rows.Close()

	var payments []model.EmiPayment
	for rows.Next() {
		var (
			p              model.EmiPayment
			method, status string
		)
		if err := rows.Scan(
			&p.TransactionID, &p.InstallmentNumber, &p.PaymentDate,
			&p.AmountPaid, &p.PrincipalComponent, &p.InterestComponent, &p.BalanceAfter,
			&method, &status,
		); err != nil {
			return nil, fmt.Errorf("scan emi payment: %w", err)
		}
		if p.Method, err = valueobject.NewPaymentMethod(method); err != nil {
			return nil, err
		}
		if p.Status, err = valueobject.NewPaymentStatus(status); err != nil {
			return nil, err
		}
		p.PaymentDate = p.PaymentDate.UTC()
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
