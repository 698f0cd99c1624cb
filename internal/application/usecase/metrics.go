package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records ledger activity. A nil *LedgerMetrics records nothing.
type LedgerMetrics struct {
	payments      metric.Int64Counter
	paymentAmount metric.Float64Counter
	disbursements metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	payments, err := meter.Int64Counter("lending.emi_payments",
		metric.WithDescription("EMI payments applied to the ledger"))
	if err != nil {
		return nil, fmt.Errorf("create emi_payments counter: %w", err)
	}
	amount, err := meter.Float64Counter("lending.emi_payment_amount",
		metric.WithDescription("Sum of applied EMI amounts"),
		metric.WithUnit("{INR}"))
	if err != nil {
		return nil, fmt.Errorf("create emi_payment_amount counter: %w", err)
	}
	disbursements, err := meter.Int64Counter("lending.disbursements",
		metric.WithDescription("Loans disbursed to health-card wallets"))
	if err != nil {
		return nil, fmt.Errorf("create disbursements counter: %w", err)
	}
	return &LedgerMetrics{payments: payments, paymentAmount: amount, disbursements: disbursements}, nil
}

func (m *LedgerMetrics) recordPayment(ctx context.Context, method string, amount float64, completed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("loan_completed", completed),
	)
	m.payments.Add(ctx, 1, attrs)
	m.paymentAmount.Add(ctx, amount, attrs)
}

func (m *LedgerMetrics) recordDisbursement(ctx context.Context) {
	if m == nil {
		return
	}
	m.disbursements.Add(ctx, 1)
}
