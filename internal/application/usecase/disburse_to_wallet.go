package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/service"
)

// DisburseToWalletUseCase credits an approved loan's principal to the
// borrower's health-card wallet. The loan and the wallet are committed
// together through the DisbursementStore.
type DisburseToWalletUseCase struct {
	loanRepo   port.LoanRepository
	walletRepo port.WalletRepository
	store      port.DisbursementStore
	disburser  *service.DisbursementService
	metrics    *LedgerMetrics
	logger     *slog.Logger
}

// NewDisburseToWalletUseCase wires dependencies. metrics may be nil.
func NewDisburseToWalletUseCase(
	loanRepo port.LoanRepository,
	walletRepo port.WalletRepository,
	store port.DisbursementStore,
	disburser *service.DisbursementService,
	metrics *LedgerMetrics,
	logger *slog.Logger,
) *DisburseToWalletUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &DisburseToWalletUseCase{
		loanRepo:   loanRepo,
		walletRepo: walletRepo,
		store:      store,
		disburser:  disburser,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute performs the transfer exactly once per loan.
func (uc *DisburseToWalletUseCase) Execute(ctx context.Context, req dto.DisburseToWalletRequest) (dto.DisbursementResponse, error) {
	loanID, err := parseID("loan_id", req.LoanID)
	if err != nil {
		return dto.DisbursementResponse{}, err
	}
	walletID, err := parseID("wallet_id", req.WalletID)
	if err != nil {
		return dto.DisbursementResponse{}, err
	}

	for attempt := 1; ; attempt++ {
		// 1. Load both aggregates.
		loan, err := uc.loanRepo.FindByID(ctx, loanID)
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("find loan: %w", err)
		}
		wallet, err := uc.walletRepo.FindByID(ctx, walletID)
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("find wallet: %w", err)
		}

		// 2. Compute both new states.
		loan, wallet, err = uc.disburser.Disburse(loan, wallet, time.Now().UTC())
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("disburse: %w", err)
		}

		// 3. Commit both or neither.
		err = uc.store.CommitDisbursement(ctx, loan, wallet)
		if errors.Is(err, model.ErrConcurrencyConflict) && attempt < saveAttempts {
			uc.logger.Warn("loan or wallet modified concurrently, retrying disbursement",
				"loan_id", loanID, "wallet_id", walletID, "attempt", attempt)
			continue
		}
		if err != nil {
			return dto.DisbursementResponse{}, fmt.Errorf("commit disbursement: %w", err)
		}

		uc.metrics.recordDisbursement(ctx)
		uc.logger.Info("loan disbursed to wallet",
			"loan_id", loanID,
			"wallet_id", walletID,
			"amount", loan.Principal().String(),
		)

		return dto.DisbursementResponse{
			LoanID:         loan.ID().String(),
			WalletID:       wallet.ID().String(),
			TransferAmount: loan.Principal(),
			Currency:       loan.Currency(),
			WalletBalance:  wallet.AvailableBalance(),
			LoanStatus:     loan.Status().String(),
		}, nil
	}
}
