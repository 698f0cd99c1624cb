package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
)

// RegisterWalletUseCase registers a health card as a disbursement target.
type RegisterWalletUseCase struct {
	walletRepo port.WalletRepository
}

// NewRegisterWalletUseCase wires dependencies.
func NewRegisterWalletUseCase(walletRepo port.WalletRepository) *RegisterWalletUseCase {
	return &RegisterWalletUseCase{walletRepo: walletRepo}
}

// Execute registers the card. A card number can be registered once.
func (uc *RegisterWalletUseCase) Execute(ctx context.Context, req dto.RegisterWalletRequest) (dto.WalletResponse, error) {
	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		return dto.WalletResponse{}, err
	}

	var status valueobject.WalletStatus
	if strings.TrimSpace(req.Status) != "" {
		if status, err = valueobject.NewWalletStatus(req.Status); err != nil {
			return dto.WalletResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
		}
	}
	var currency money.Currency
	if req.Currency != "" {
		if currency, err = money.NewCurrency(req.Currency); err != nil {
			return dto.WalletResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
		}
	}

	_, err = uc.walletRepo.FindByCardNumber(ctx, strings.TrimSpace(req.CardNumber))
	switch {
	case err == nil:
		return dto.WalletResponse{}, fmt.Errorf("%w: card %s is already registered", model.ErrInvalidArgument, req.CardNumber)
	case !errors.Is(err, model.ErrNotFound):
		return dto.WalletResponse{}, fmt.Errorf("find wallet: %w", err)
	}

	wallet, err := model.NewWallet(ownerID, req.CardNumber, currency, status, time.Now().UTC())
	if err != nil {
		return dto.WalletResponse{}, fmt.Errorf("create wallet: %w", err)
	}
	if err := uc.walletRepo.Save(ctx, wallet); err != nil {
		return dto.WalletResponse{}, fmt.Errorf("save wallet: %w", err)
	}
	return toWalletResponse(wallet), nil
}

// GetWalletUseCase retrieves a wallet.
type GetWalletUseCase struct {
	walletRepo port.WalletRepository
}

// NewGetWalletUseCase wires dependencies.
func NewGetWalletUseCase(walletRepo port.WalletRepository) *GetWalletUseCase {
	return &GetWalletUseCase{walletRepo: walletRepo}
}

// Execute returns the wallet.
func (uc *GetWalletUseCase) Execute(ctx context.Context, req dto.GetWalletRequest) (dto.WalletResponse, error) {
	id, err := parseID("wallet_id", req.WalletID)
	if err != nil {
		return dto.WalletResponse{}, err
	}
	wallet, err := uc.walletRepo.FindByID(ctx, id)
	if err != nil {
		return dto.WalletResponse{}, fmt.Errorf("find wallet: %w", err)
	}
	return toWalletResponse(wallet), nil
}

// ApplyWalletStatusUseCase mirrors a health-card status change reported by
// the card service onto the local wallet projection.
type ApplyWalletStatusUseCase struct {
	walletRepo port.WalletRepository
	logger     *slog.Logger
}

// NewApplyWalletStatusUseCase wires dependencies.
func NewApplyWalletStatusUseCase(walletRepo port.WalletRepository, logger *slog.Logger) *ApplyWalletStatusUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplyWalletStatusUseCase{walletRepo: walletRepo, logger: logger}
}

// Execute applies the change. Re-delivery of the current status is a no-op.
func (uc *ApplyWalletStatusUseCase) Execute(ctx context.Context, change dto.WalletStatusChange) (dto.WalletResponse, error) {
	status, err := valueobject.NewWalletStatus(change.Status)
	if err != nil {
		return dto.WalletResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}

	wallet, err := uc.walletRepo.FindByCardNumber(ctx, strings.TrimSpace(change.CardNumber))
	if err != nil {
		return dto.WalletResponse{}, fmt.Errorf("find wallet: %w", err)
	}

	at := change.ChangedAt
	if at.IsZero() {
		at = time.Now()
	}
	from := wallet.Status()
	updated, changed := wallet.ChangeStatus(status, at)
	if !changed {
		return toWalletResponse(wallet), nil
	}

	if err := uc.walletRepo.Save(ctx, updated); err != nil {
		return dto.WalletResponse{}, fmt.Errorf("save wallet: %w", err)
	}
	uc.logger.Info("wallet status changed",
		"wallet_id", updated.ID(),
		"card_number", updated.CardNumber(),
		"from", from.String(),
		"to", status.String(),
	)
	return toWalletResponse(updated), nil
}
