package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	pkgkafka "github.com/ricare/lending/pkg/kafka"
)

const conflictRetries = 3

// WalletStatusApplier is satisfied by *usecase.ApplyWalletStatusUseCase.
type WalletStatusApplier interface {
	Execute(ctx context.Context, change dto.WalletStatusChange) (dto.WalletResponse, error)
}

// HealthCardStatusHandler mirrors health-card lifecycle changes published by
// the card issuer onto the wallet projection.
type HealthCardStatusHandler struct {
	applier WalletStatusApplier
	logger  *slog.Logger
}

// NewHealthCardStatusHandler creates the handler.
func NewHealthCardStatusHandler(applier WalletStatusApplier, logger *slog.Logger) *HealthCardStatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthCardStatusHandler{applier: applier, logger: logger}
}

// Handle implements pkgkafka.Handler. Messages that can never apply
// (malformed, unknown card, unknown status) are logged and skipped so they do
// not block the partition.
func (h *HealthCardStatusHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var change dto.WalletStatusChange
	if err := json.Unmarshal(msg.Value, &change); err != nil {
		h.logger.Warn("skipping malformed health-card status message", "key", string(msg.Key), "error", err)
		return nil
	}

	var err error
	for attempt := 1; attempt <= conflictRetries; attempt++ {
		_, err = h.applier.Execute(ctx, change)
		if !errors.Is(err, model.ErrConcurrencyConflict) {
			break
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrInvalidArgument):
		h.logger.Warn("skipping health-card status change",
			"card_number", change.CardNumber, "status", change.Status, "error", err)
		return nil
	default:
		return fmt.Errorf("apply health-card status %s for %s: %w", change.Status, change.CardNumber, err)
	}
}

// NewHealthCardStatusConsumer subscribes the handler to topic.
func NewHealthCardStatusConsumer(
	cfg pkgkafka.Config,
	topic string,
	handler *HealthCardStatusHandler,
	logger *slog.Logger,
) (*pkgkafka.Consumer, error) {
	return pkgkafka.NewConsumer(cfg, topic, handler.Handle, logger)
}
