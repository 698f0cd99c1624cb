package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	store *Store
}

// NewLoanRepo creates a loan repository on store.
func NewLoanRepo(store *Store) *LoanRepo {
	return &LoanRepo{store: store}
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
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := upsertLoan(ctx, tx, loan); err != nil {
			return err
		}
		return writeOutbox(ctx, tx, loan.DomainEvents())
	})
}

// FindByID retrieves a loan and its payment history.
func (r *LoanRepo) FindByID(ctx context.Context, id uuid.UUID) (model.Loan, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id.String())
	state, err := scanLoanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Loan{}, fmt.Errorf("%w: %s", model.ErrLoanNotFound, id)
	}
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", err)
	}
	if state.Payments, err = r.loadPayments(ctx, id); err != nil {
		return model.Loan{}, err
	}
	return model.ReconstructLoan(state), nil
}

// FindByOwnerID retrieves all loans of a patient, newest first.
func (r *LoanRepo) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Loan, error) {
	return r.findLoans(ctx, `owner_id = ?`, ownerID.String())
}

// FindByUHID retrieves all loans recorded against a health ID, newest first.
func (r *LoanRepo) FindByUHID(ctx context.Context, uhid string) ([]model.Loan, error) {
	return r.findLoans(ctx, `uhid = ?`, uhid)
}

func (r *LoanRepo) findLoans(ctx context.Context, where string, arg any) ([]model.Loan, error) {
	rows, err := r.store.db.QueryContext(ctx,
		`SELECT `+loanColumns+` FROM loans WHERE `+where+` ORDER BY created_at DESC, application_number DESC`, arg)
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
		if s.Payments, err = r.loadPayments(ctx, s.ID); err != nil {
			return nil, err
		}
		loans = append(loans, model.ReconstructLoan(s))
	}
	return loans, nil
}

func upsertLoan(ctx context.Context, tx *sql.Tx, loan model.Loan) error {
	s := loan.State()

	var approvalDate *time.Time
	if !s.ApprovalDate.IsZero() {
		approvalDate = &s.ApprovalDate
	}
	walletID := uuid.NullUUID{UUID: s.WalletID, Valid: s.WalletID != uuid.Nil}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET
			principal           = excluded.principal,
			annual_rate_percent = excluded.annual_rate_percent,
			term_months         = excluded.term_months,
			monthly_payment     = excluded.monthly_payment,
			approval_date       = excluded.approval_date,
			remaining_balance   = excluded.remaining_balance,
			next_due_date       = excluded.next_due_date,
			status              = excluded.status,
			rejection_reason    = excluded.rejection_reason,
			disbursed_to_wallet = excluded.disbursed_to_wallet,
			wallet_id           = excluded.wallet_id,
			version             = loans.version + 1,
			updated_at          = excluded.updated_at
		WHERE loans.version = excluded.version
	`,
		s.ID.String(), s.OwnerID.String(), s.UHID, s.ApplicationNumber, s.Currency, s.Purpose,
		s.RequestedAmount.String(), s.RequestedTermMonths, s.CreditScore,
		s.MaxEligibleAmount.String(), s.SuggestedRate.String(),
		s.Principal.String(), s.AnnualRatePercent.String(), s.TermMonths, s.MonthlyPayment.String(), utcPtr(approvalDate),
		s.RemainingBalance.String(), utcPtr(s.NextDueDate), s.Status.String(), s.RejectionReason,
		s.DisbursedToWallet, walletID, s.Version, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert loan: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("upsert loan: %w", err)
	} else if n == 0 {
		return fmt.Errorf("%w: loan %s version %d", model.ErrConcurrencyConflict, s.ID, s.Version)
	}

	for _, p := range s.Payments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO emi_payments (
				transaction_id, loan_id, installment_number, payment_date,
				amount_paid, principal_component, interest_component, balance_after,
				method, status
			) VALUES (?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT (transaction_id) DO NOTHING
		`,
			p.TransactionID, s.ID.String(), p.InstallmentNumber, p.PaymentDate.UTC(),
			p.AmountPaid.String(), p.PrincipalComponent.String(), p.InterestComponent.String(), p.BalanceAfter.String(),
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
		approvalDate sql.NullTime
		nextDueDate  sql.NullTime
		walletID     uuid.NullUUID
		status       string
	)
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.UHID, &s.ApplicationNumber, &s.Currency, &s.Purpose,
		&s.RequestedAmount, &s.RequestedTermMonths, &s.CreditScore,
		&s.MaxEligibleAmount, &s.SuggestedRate,
		&s.Principal, &s.AnnualRatePercent, &s.TermMonths, &s.MonthlyPayment, &approvalDate,
		&s.RemainingBalance, &nextDueDate, &status, &s.RejectionReason,
		&s.DisbursedToWallet, &walletID, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return model.LoanState{}, err
	}
	if s.Status, err = valueobject.NewLoanStatus(status); err != nil {
		return model.LoanState{}, err
	}
	if approvalDate.Valid {
		s.ApprovalDate = approvalDate.Time.UTC()
	}
	if nextDueDate.Valid {
		d := nextDueDate.Time.UTC()
		s.NextDueDate = &d
	}
	if walletID.Valid {
		s.WalletID = walletID.UUID
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}

func (r *LoanRepo) loadPayments(ctx context.Context, loanID uuid.UUID) ([]model.EmiPayment, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT transaction_id, installment_number, payment_date,
		       amount_paid, principal_component, interest_component, balance_after,
		       method, status
		FROM emi_payments
		WHERE loan_id = ?
		ORDER BY installment_number
	`, loanID.String())
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

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
