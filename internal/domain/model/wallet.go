package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/event"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/events"
	"github.com/ricare/lending/pkg/money"
)

// Wallet is the lending service's projection of a patient's health card: the
// balance loans are disbursed into and the card's lifecycle status.
type Wallet struct {
	id               uuid.UUID
	ownerID          uuid.UUID
	cardNumber       string
	currency         money.Currency
	availableBalance decimal.Decimal
	status           valueobject.WalletStatus
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []events.DomainEvent
}

// NewWallet registers a health card issued elsewhere.
func NewWallet(ownerID uuid.UUID, cardNumber string, currency money.Currency, status valueobject.WalletStatus, now time.Time) (Wallet, error) {
	if ownerID == uuid.Nil {
		return Wallet{}, invalidArgument("owner ID is required")
	}
	cardNumber = strings.TrimSpace(cardNumber)
	if cardNumber == "" {
		return Wallet{}, invalidArgument("card number is required")
	}
	if status.IsZero() {
		status = valueobject.WalletStatusPending
	}
	if currency.Code() == "" {
		currency = money.INR
	}

	now = now.UTC()
	w := Wallet{
		id:               uuid.New(),
		ownerID:          ownerID,
		cardNumber:       cardNumber,
		currency:         currency,
		availableBalance: decimal.Zero,
		status:           status,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}
	w.domainEvents = []events.DomainEvent{
		event.NewWalletRegistered(w.id, ownerID, cardNumber, status.String(), now),
	}
	return w, nil
}

// ReconstructWallet rebuilds a Wallet from persisted state.
func ReconstructWallet(
	id, ownerID uuid.UUID,
	cardNumber string,
	currency money.Currency,
	availableBalance decimal.Decimal,
	status valueobject.WalletStatus,
	version int,
	createdAt, updatedAt time.Time,
) Wallet {
	return Wallet{
		id:               id,
		ownerID:          ownerID,
		cardNumber:       cardNumber,
		currency:         currency,
		availableBalance: availableBalance,
		status:           status,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Credit adds amount to the available balance. Only ACTIVE wallets accept
// credits.
func (w Wallet) Credit(amount money.Money, reference string, now time.Time) (Wallet, error) {
	if !w.status.IsActive() {
		return w, ErrWalletInactive
	}
	if !amount.IsPositive() {
		return w, invalidArgument("credit amount must be positive")
	}
	if amount.Currency() != w.currency {
		return w, invalidArgument("credit currency %s does not match wallet currency %s", amount.Currency(), w.currency)
	}

	now = now.UTC()
	w.availableBalance = w.availableBalance.Add(amount.Amount())
	w.updatedAt = now
	w.domainEvents = append(w.copyEvents(), event.NewWalletCredited(
		w.id, w.ownerID, amount.Amount(), w.currency.Code(), w.availableBalance, reference, now,
	))
	return w, nil
}

// ChangeStatus applies a status reported by the health-card service. Setting
// the current status again is a no-op.
func (w Wallet) ChangeStatus(status valueobject.WalletStatus, now time.Time) (Wallet, bool) {
	if status.IsZero() || status == w.status {
		return w, false
	}
	now = now.UTC()
	from := w.status
	w.status = status
	w.updatedAt = now
	w.domainEvents = append(w.copyEvents(), event.NewWalletStatusChanged(w.id, from.String(), status.String(), now))
	return w, true
}

func (w Wallet) ID() uuid.UUID { return w.id }

func (w Wallet) OwnerID() uuid.UUID { return w.ownerID }

func (w Wallet) CardNumber() string { return w.cardNumber }

func (w Wallet) Currency() money.Currency { return w.currency }

func (w Wallet) AvailableBalance() decimal.Decimal { return w.availableBalance }

func (w Wallet) Status() valueobject.WalletStatus { return w.status }

func (w Wallet) Version() int { return w.version }

func (w Wallet) CreatedAt() time.Time { return w.createdAt }

func (w Wallet) UpdatedAt() time.Time { return w.updatedAt }

// DomainEvents returns events raised since the aggregate was loaded.
func (w Wallet) DomainEvents() []events.DomainEvent { return w.copyEvents() }

func (w Wallet) copyEvents() []events.DomainEvent {
	if len(w.domainEvents) == 0 {
		return nil
	}
	cp := make([]events.DomainEvent, len(w.domainEvents))
	copy(cp, w.domainEvents)
	return cp
}
