package valueobject

import (
	"fmt"
	"strings"
)

// PaymentMethod is the channel an EMI was collected through.
type PaymentMethod struct {
	value string
}

var (
	PaymentMethodOnline       = PaymentMethod{value: "online"}
	PaymentMethodBankTransfer = PaymentMethod{value: "bank_transfer"}
	PaymentMethodCash         = PaymentMethod{value: "cash"}
	PaymentMethodCheque       = PaymentMethod{value: "cheque"}
)

var validPaymentMethods = map[string]PaymentMethod{
	PaymentMethodOnline.value:       PaymentMethodOnline,
	PaymentMethodBankTransfer.value: PaymentMethodBankTransfer,
	PaymentMethodCash.value:         PaymentMethodCash,
	PaymentMethodCheque.value:       PaymentMethodCheque,
}

// NewPaymentMethod parses a PaymentMethod; an empty string means online.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return PaymentMethodOnline, nil
	}
	v, ok := validPaymentMethods[strings.ToLower(s)]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

func (m PaymentMethod) String() string { return m.value }

func (m PaymentMethod) IsZero() bool { return m.value == "" }

// PaymentStatus is the settlement state of a single EMI payment record.
type PaymentStatus struct {
	value string
}

var (
	PaymentStatusPending   = PaymentStatus{value: "pending"}
	PaymentStatusCompleted = PaymentStatus{value: "completed"}
	PaymentStatusFailed    = PaymentStatus{value: "failed"}
)

// NewPaymentStatus parses a PaymentStatus.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	switch strings.ToLower(s) {
	case PaymentStatusPending.value:
		return PaymentStatusPending, nil
	case PaymentStatusCompleted.value:
		return PaymentStatusCompleted, nil
	case PaymentStatusFailed.value:
		return PaymentStatusFailed, nil
	}
	return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
}

func (s PaymentStatus) String() string { return s.value }

// InstallmentStatus labels a projected schedule entry.
type InstallmentStatus string

const (
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentPending InstallmentStatus = "pending"
	InstallmentOverdue InstallmentStatus = "overdue"
)

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
