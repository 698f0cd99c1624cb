package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ricare/lending/pkg/money"
)

// MaxTermMonths is the longest term accepted for a schedule or a loan.
const MaxTermMonths = 600

var (
	monthsPerYearPercent = decimal.NewFromInt(1200)
	hundred              = decimal.NewFromInt(100)
)

// AmortizationEntry is an immutable value object representing one period in an
// amortization schedule.
type AmortizationEntry struct {
	DueDate          time.Time
	Payment          decimal.Decimal
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	RemainingBalance decimal.Decimal
	Period           int
}

// Amortization is the result of ComputeSchedule.
type Amortization struct {
	MonthlyPayment decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalPayable   decimal.Decimal
	Entries        []AmortizationEntry
}

// ComputeSchedule computes a standard fixed-payment (EMI) amortization
// schedule.
//
//	r       = annualRatePercent / 100 / 12
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)     (P / n when r == 0)
//
// Every stored amount is rounded to minor units. Interest for a period is
// accrued on the opening balance; the final period (or the first period
// whose principal would overshoot) takes the whole remaining balance, so the
// principal column sums to P exactly.
func ComputeSchedule(
	principal decimal.Decimal,
	annualRatePercent decimal.Decimal,
	termMonths int,
	start time.Time,
) (Amortization, error) {
	if !principal.IsPositive() {
		return Amortization{}, invalidArgument("principal must be positive, got %s", principal)
	}
	if money.HasSubMinorPrecision(principal) {
		return Amortization{}, invalidArgument("principal %s has more than %d decimal places", principal, money.MinorUnits)
	}
	if termMonths <= 0 || termMonths > MaxTermMonths {
		return Amortization{}, invalidArgument("term must be between 1 and %d months, got %d", MaxTermMonths, termMonths)
	}
	if annualRatePercent.IsNegative() || annualRatePercent.GreaterThan(hundred) {
		return Amortization{}, invalidArgument("annual rate must be between 0 and 100 percent, got %s", annualRatePercent)
	}

	payment, err := monthlyPayment(principal, annualRatePercent, termMonths)
	if err != nil {
		return Amortization{}, err
	}

	out := Amortization{
		MonthlyPayment: payment,
		TotalInterest:  decimal.Zero,
		Entries:        make([]AmortizationEntry, 0, termMonths),
	}

	balance := principal
	for period := 1; period <= termMonths && balance.IsPositive(); period++ {
		interest := AccrueInterest(balance, annualRatePercent)
		principalPart := payment.Sub(interest)

		if period == termMonths || principalPart.GreaterThanOrEqual(balance) {
			principalPart = balance
		}

		balance = balance.Sub(principalPart)

		out.Entries = append(out.Entries, AmortizationEntry{
			Period:           period,
			DueDate:          AddMonths(start, period),
			Payment:          principalPart.Add(interest),
			Principal:        principalPart,
			Interest:         interest,
			RemainingBalance: balance,
		})
		out.TotalInterest = out.TotalInterest.Add(interest)
	}

	out.TotalPayable = principal.Add(out.TotalInterest)
	return out, nil
}

// MonthlyPayment returns the fixed EMI for the given terms, rounded to minor
// units. Terms the float power cannot represent are an ErrInvalidArgument.
func MonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if termMonths <= 0 {
		return decimal.Zero, invalidArgument("term must be a positive number of months, got %d", termMonths)
	}
	return monthlyPayment(principal, annualRatePercent, termMonths)
}

func monthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if annualRatePercent.IsZero() {
		return money.Round(principal.Div(decimal.NewFromInt(int64(termMonths)))), nil
	}

	// The power term is evaluated in float64 and the result brought back to
	// decimal before any monetary rounding.
	r := annualRatePercent.InexactFloat64() / 1200
	factor := math.Pow(1+r, float64(termMonths))
	payment := principal.InexactFloat64() * r * factor / (factor - 1)
	if math.IsInf(factor, 0) || math.IsNaN(payment) || math.IsInf(payment, 0) {
		return decimal.Zero, invalidArgument("payment for %s at %s%% over %d months is not representable",
			principal, annualRatePercent, termMonths)
	}

	return money.Round(decimal.NewFromFloat(payment)), nil
}

// AccrueInterest returns one month of interest on balance, rounded to minor
// units. The division is exact before rounding.
func AccrueInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRatePercent).DivRound(monthsPerYearPercent, money.MinorUnits)
}
