package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/valueobject"
)

// EmiPayment is an immutable record of one EMI applied to a loan.
// PrincipalComponent + InterestComponent always equals AmountPaid.
type EmiPayment struct {
	PaymentDate        time.Time
	TransactionID      string
	Method             valueobject.PaymentMethod
	Status             valueobject.PaymentStatus
	AmountPaid         decimal.Decimal
	PrincipalComponent decimal.Decimal
	InterestComponent  decimal.Decimal
	BalanceAfter       decimal.Decimal
	InstallmentNumber  int
}

// IsCompleted reports whether the payment counts towards the schedule.
func (p EmiPayment) IsCompleted() bool {
	return p.Status == valueobject.PaymentStatusCompleted
}
