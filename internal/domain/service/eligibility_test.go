package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ricare/lending/internal/domain/model"
)

func TestEligibilityEvaluator_Evaluate(t *testing.T) {
	e := NewEligibilityEvaluator()

	tests := []struct {
		score    int
		eligible bool
		tier     string
		amount   string
		rate     string
	}{
		{900, true, "EXCELLENT", "500000", "10.5"},
		{750, true, "EXCELLENT", "500000", "10.5"},
		{749, true, "GOOD", "300000", "12"},
		{700, true, "GOOD", "300000", "12"},
		{699, true, "FAIR", "150000", "14"},
		{650, true, "FAIR", "150000", "14"},
		{649, true, "BASIC", "75000", "16"},
		{600, true, "BASIC", "75000", "16"},
		{599, false, TierIneligible, "0", "0"},
		{300, false, TierIneligible, "0", "0"},
	}

	for _, tt := range tests {
		got := e.Evaluate(tt.score)
		assert.Equal(t, tt.eligible, got.Eligible, "score %d", tt.score)
		assert.Equal(t, tt.tier, got.Tier, "score %d", tt.score)
		assert.True(t, decimal.RequireFromString(tt.amount).Equal(got.MaxEligibleAmount), "score %d amount %s", tt.score, got.MaxEligibleAmount)
		assert.True(t, decimal.RequireFromString(tt.rate).Equal(got.AnnualRatePercent), "score %d rate %s", tt.score, got.AnnualRatePercent)
	}
}

func TestEligibilityEvaluator_CheckApproval(t *testing.T) {
	e := NewEligibilityEvaluator()
	good := e.Evaluate(720)

	assert.NoError(t, e.CheckApproval(good, decimal.NewFromInt(300000)))
	assert.NoError(t, e.CheckApproval(good, decimal.NewFromInt(1000)))

	err := e.CheckApproval(good, decimal.RequireFromString("300000.01"))
	assert.ErrorIs(t, err, model.ErrNotEligible)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	assert.ErrorIs(t, e.CheckApproval(e.Evaluate(550), decimal.NewFromInt(1)), model.ErrNotEligible)
}
