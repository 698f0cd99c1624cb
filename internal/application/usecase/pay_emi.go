package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/valueobject"
)

// PayEmiUseCase applies an EMI payment to a loan's ledger.
type PayEmiUseCase struct {
	loanRepo    port.LoanRepository
	idempotency port.IdempotencyStore
	metrics     *LedgerMetrics
	logger      *slog.Logger
}

// NewPayEmiUseCase wires dependencies. idempotency and metrics may be nil.
func NewPayEmiUseCase(
	loanRepo port.LoanRepository,
	idempotency port.IdempotencyStore,
	metrics *LedgerMetrics,
	logger *slog.Logger,
) *PayEmiUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &PayEmiUseCase{
		loanRepo:    loanRepo,
		idempotency: idempotency,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute applies the payment. With an idempotency key, a repeated request
// returns the payment recorded by the first one instead of paying twice.
func (uc *PayEmiUseCase) Execute(ctx context.Context, req dto.PayEmiRequest) (dto.PayEmiResponse, error) {
	loanID, err := parseID("loan_id", req.LoanID)
	if err != nil {
		return dto.PayEmiResponse{}, err
	}
	method, err := valueobject.NewPaymentMethod(req.Method)
	if err != nil {
		return dto.PayEmiResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" || uc.idempotency == nil {
		return uc.apply(ctx, loanID, req.Amount, method)
	}

	// Keys are per loan: the same client key on another loan is a new payment.
	scoped := idempotencyKey(loanID, key)
	txID, claimed, err := uc.idempotency.Claim(ctx, scoped)
	if err != nil {
		return dto.PayEmiResponse{}, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		if txID == "" {
			return dto.PayEmiResponse{}, fmt.Errorf("%w: payment with idempotency key %q is in progress", model.ErrConcurrencyConflict, key)
		}
		return uc.replay(ctx, loanID, txID, req.Amount)
	}

	resp, err := uc.apply(ctx, loanID, req.Amount, method)
	if err != nil {
		if relErr := uc.idempotency.Release(ctx, scoped); relErr != nil {
			uc.logger.Warn("release idempotency key", "key", key, "error", relErr)
		}
		return dto.PayEmiResponse{}, err
	}

	// The payment is committed; a failure here only weakens replay.
	if err := uc.idempotency.Complete(ctx, scoped, resp.Payment.TransactionID); err != nil {
		uc.logger.Error("record idempotency key", "key", key, "transaction_id", resp.Payment.TransactionID, "error", err)
	}
	return resp, nil
}

func idempotencyKey(loanID uuid.UUID, key string) string {
	return loanID.String() + ":" + key
}

func (uc *PayEmiUseCase) apply(
	ctx context.Context,
	loanID uuid.UUID,
	amount decimal.Decimal,
	method valueobject.PaymentMethod,
) (dto.PayEmiResponse, error) {
	for attempt := 1; ; attempt++ {
		loan, err := uc.loanRepo.FindByID(ctx, loanID)
		if err != nil {
			return dto.PayEmiResponse{}, fmt.Errorf("find loan: %w", err)
		}

		loan, payment, err := loan.ApplyPayment(amount, method, time.Now().UTC())
		if err != nil {
			return dto.PayEmiResponse{}, fmt.Errorf("apply payment: %w", err)
		}

		err = uc.loanRepo.Save(ctx, loan)
		if errors.Is(err, model.ErrConcurrencyConflict) && attempt < saveAttempts {
			uc.logger.Warn("loan modified concurrently, retrying payment",
				"loan_id", loanID, "attempt", attempt)
			continue
		}
		if err != nil {
			return dto.PayEmiResponse{}, fmt.Errorf("save loan: %w", err)
		}

		completed := loan.Status() == valueobject.LoanStatusCompleted
		uc.metrics.recordPayment(ctx, method.String(), payment.AmountPaid.InexactFloat64(), completed)
		uc.logger.Info("emi payment applied",
			"loan_id", loanID,
			"transaction_id", payment.TransactionID,
			"amount", payment.AmountPaid.String(),
			"remaining_balance", payment.BalanceAfter.String(),
			"completed", completed,
		)

		return payEmiResponse(loan, payment, amount, false), nil
	}
}

func (uc *PayEmiUseCase) replay(ctx context.Context, loanID uuid.UUID, txID string, amount decimal.Decimal) (dto.PayEmiResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.PayEmiResponse{}, fmt.Errorf("find loan: %w", err)
	}
	for _, p := range loan.Payments() {
		if p.TransactionID == txID {
			return payEmiResponse(loan, p, amount, true), nil
		}
	}
	return dto.PayEmiResponse{}, fmt.Errorf("%w: transaction %s is not recorded on loan %s", model.ErrNotFound, txID, loanID)
}

func payEmiResponse(loan model.Loan, p model.EmiPayment, requested decimal.Decimal, replayed bool) dto.PayEmiResponse {
	return dto.PayEmiResponse{
		LoanID:           loan.ID().String(),
		Payment:          toPaymentResponse(p),
		Overpayment:      decimal.Max(requested.Sub(p.AmountPaid), decimal.Zero),
		RemainingBalance: loan.RemainingBalance(),
		NextDueDate:      loan.NextDueDate(),
		LoanStatus:       loan.Status().String(),
		Replayed:         replayed,
	}
}
