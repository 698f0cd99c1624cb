package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/valueobject"
)

// ScheduleEntry is one projected installment with its repayment status.
type ScheduleEntry struct {
	AmortizationEntry
	Status        valueobject.InstallmentStatus
	PaidDate      *time.Time
	TransactionID string
	AmountPaid    decimal.Decimal
}

// ScheduleSummary aggregates a projected schedule.
type ScheduleSummary struct {
	PaidCount      int
	PendingCount   int
	OverdueCount   int
	PaidAmount     decimal.Decimal
	OverdueAmount  decimal.Decimal
	PendingAmount  decimal.Decimal
	NextDueDate    *time.Time
	MonthlyPayment decimal.Decimal
}

// BuildSchedule projects the full installment plan of an approved loan and
// overlays completed payments: an installment is paid when a completed
// payment falls in the same calendar month as its due date (each payment is
// used at most once). Unpaid installments due before now are overdue.
// The loan is never modified.
func BuildSchedule(loan Loan, now time.Time) ([]ScheduleEntry, error) {
	if loan.Status().IsZero() || loan.TermMonths() == 0 || loan.ApprovalDate().IsZero() {
		return nil, invalidState("loan %s has no approved terms", loan.ID())
	}

	plan, err := ComputeSchedule(loan.Principal(), loan.AnnualRatePercent(), loan.TermMonths(), loan.ApprovalDate())
	if err != nil {
		return nil, err
	}

	payments := completedPayments(loan.Payments())
	used := make([]bool, len(payments))

	out := make([]ScheduleEntry, 0, len(plan.Entries))
	for _, entry := range plan.Entries {
		se := ScheduleEntry{AmortizationEntry: entry, Status: valueobject.InstallmentPending}

		for i, p := range payments {
			if used[i] || !sameMonth(entry.DueDate, p.PaymentDate) {
				continue
			}
			used[i] = true
			paidAt := p.PaymentDate
			se.Status = valueobject.InstallmentPaid
			se.PaidDate = &paidAt
			se.TransactionID = p.TransactionID
			se.AmountPaid = p.AmountPaid
			break
		}

		if se.Status != valueobject.InstallmentPaid && entry.DueDate.Before(now) {
			se.Status = valueobject.InstallmentOverdue
		}
		out = append(out, se)
	}
	return out, nil
}

// Summarize totals a projected schedule by status.
func Summarize(entries []ScheduleEntry) ScheduleSummary {
	s := ScheduleSummary{
		PaidAmount:    decimal.Zero,
		OverdueAmount: decimal.Zero,
		PendingAmount: decimal.Zero,
	}
	for _, e := range entries {
		switch e.Status {
		case valueobject.InstallmentPaid:
			s.PaidCount++
			s.PaidAmount = s.PaidAmount.Add(e.AmountPaid)
		case valueobject.InstallmentOverdue:
			s.OverdueCount++
			s.OverdueAmount = s.OverdueAmount.Add(e.Payment)
		default:
			s.PendingCount++
			s.PendingAmount = s.PendingAmount.Add(e.Payment)
			if s.NextDueDate == nil {
				d := e.DueDate
				s.NextDueDate = &d
			}
		}
	}
	if len(entries) > 0 {
		s.MonthlyPayment = entries[0].Payment
	}
	return s
}

func completedPayments(all []EmiPayment) []EmiPayment {
	out := make([]EmiPayment, 0, len(all))
	for _, p := range all {
		if p.IsCompleted() {
			out = append(out, p)
		}
	}
	return out
}
