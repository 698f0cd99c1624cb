package service

import (
	"github.com/shopspring/decimal"

	"github.com/ricare/lending/internal/domain/model"
)

// ---------------------------------------------------------------------------
// EligibilityEvaluator – maps a credit score to a lending tier
// ---------------------------------------------------------------------------

// Tier is one row of the credit tier table.
type Tier struct {
	Name              string
	MinScore          int
	MaxEligibleAmount decimal.Decimal
	AnnualRatePercent decimal.Decimal
}

// DefaultTiers is the production tier table, highest score first.
//
//	score >= 750 -> 500000 @ 10.5%
//	score >= 700 -> 300000 @ 12.0%
//	score >= 650 -> 150000 @ 14.0%
//	score >= 600 ->  75000 @ 16.0%
//	otherwise    -> ineligible
var DefaultTiers = []Tier{
	{Name: "EXCELLENT", MinScore: 750, MaxEligibleAmount: decimal.NewFromInt(500000), AnnualRatePercent: decimal.RequireFromString("10.5")},
	{Name: "GOOD", MinScore: 700, MaxEligibleAmount: decimal.NewFromInt(300000), AnnualRatePercent: decimal.RequireFromString("12.0")},
	{Name: "FAIR", MinScore: 650, MaxEligibleAmount: decimal.NewFromInt(150000), AnnualRatePercent: decimal.RequireFromString("14.0")},
	{Name: "BASIC", MinScore: 600, MaxEligibleAmount: decimal.NewFromInt(75000), AnnualRatePercent: decimal.RequireFromString("16.0")},
}

// TierIneligible names the result below the lowest tier.
const TierIneligible = "INELIGIBLE"

// EligibilityEvaluator encapsulates rule-based credit decisioning.
type EligibilityEvaluator struct {
	tiers []Tier
}

// NewEligibilityEvaluator returns an evaluator over DefaultTiers.
func NewEligibilityEvaluator() *EligibilityEvaluator {
	return &EligibilityEvaluator{tiers: DefaultTiers}
}

// Evaluate returns the first tier whose threshold the score meets. A score
// below every tier yields an explicit ineligible result with zero amount and
// rate; it is not an error.
func (e *EligibilityEvaluator) Evaluate(creditScore int) model.Eligibility {
	for _, t := range e.tiers {
		if creditScore >= t.MinScore {
			return model.Eligibility{
				Eligible:          true,
				Tier:              t.Name,
				MaxEligibleAmount: t.MaxEligibleAmount,
				AnnualRatePercent: t.AnnualRatePercent,
			}
		}
	}
	return model.Eligibility{
		Tier:              TierIneligible,
		MaxEligibleAmount: decimal.Zero,
		AnnualRatePercent: decimal.Zero,
	}
}

// CheckApproval validates requested principal against the eligibility.
func (e *EligibilityEvaluator) CheckApproval(eligibility model.Eligibility, principal decimal.Decimal) error {
	if !eligibility.Eligible || principal.GreaterThan(eligibility.MaxEligibleAmount) {
		return model.ErrNotEligible
	}
	return nil
}
