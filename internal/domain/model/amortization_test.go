package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricare/lending/internal/domain/model"
)

var start = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeSchedule(t *testing.T) {
	tests := []struct {
		name         string
		principal    string
		rate         string
		term         int
		payment      string
		firstInt     string
		firstPrin    string
		lastPayment  string
		totalInterst string
	}{
		{
			name: "one year at 12%", principal: "120000", rate: "12", term: 12,
			payment: "10661.85", firstInt: "1200.00", firstPrin: "9461.85",
			lastPayment: "10661.91", totalInterst: "7942.26",
		},
		{
			name: "two years at 10.5%", principal: "100000", rate: "10.5", term: 24,
			payment: "4637.60", firstInt: "875.00", firstPrin: "3762.60",
			lastPayment: "4637.73", totalInterst: "11302.53",
		},
		{
			name: "30-year at 5%", principal: "100000", rate: "5", term: 360,
			payment: "536.82", firstInt: "416.67", firstPrin: "120.15",
			lastPayment: "538.14", totalInterst: "93256.52",
		},
		{
			name: "zero rate splits evenly", principal: "100000", rate: "0", term: 12,
			payment: "8333.33", firstInt: "0", firstPrin: "8333.33",
			lastPayment: "8333.37", totalInterst: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := model.ComputeSchedule(dec(tt.principal), dec(tt.rate), tt.term, start)
			require.NoError(t, err)
			require.Len(t, sched.Entries, tt.term)

			assert.True(t, dec(tt.payment).Equal(sched.MonthlyPayment), "payment %s", sched.MonthlyPayment)

			first := sched.Entries[0]
			assert.True(t, dec(tt.firstInt).Equal(first.Interest), "first interest %s", first.Interest)
			assert.True(t, dec(tt.firstPrin).Equal(first.Principal), "first principal %s", first.Principal)

			last := sched.Entries[len(sched.Entries)-1]
			assert.True(t, dec(tt.lastPayment).Equal(last.Payment), "last payment %s", last.Payment)
			assert.True(t, last.RemainingBalance.IsZero())

			assert.True(t, dec(tt.totalInterst).Equal(sched.TotalInterest), "total interest %s", sched.TotalInterest)
			assert.True(t, dec(tt.principal).Add(sched.TotalInterest).Equal(sched.TotalPayable))
		})
	}
}

func TestComputeSchedule_PrincipalSumsExactly(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		term      int
	}{
		{"120000", "12", 12},
		{"75000", "16", 36},
		{"1000.01", "14", 7},
		{"0.10", "0", 6},
		{"50000", "14", 6},
	}
	for _, c := range cases {
		sched, err := model.ComputeSchedule(dec(c.principal), dec(c.rate), c.term, start)
		require.NoError(t, err)

		sum := decimal.Zero
		prev := dec(c.principal)
		for _, e := range sched.Entries {
			sum = sum.Add(e.Principal)
			assert.True(t, e.Principal.Add(e.Interest).Equal(e.Payment))
			assert.True(t, e.RemainingBalance.LessThanOrEqual(prev), "balance must not increase")
			assert.False(t, e.RemainingBalance.IsNegative())
			prev = e.RemainingBalance
		}
		assert.True(t, dec(c.principal).Equal(sum), "principal %s sum %s", c.principal, sum)
	}
}

func TestComputeSchedule_StopsEarlyWhenBalanceHitsZero(t *testing.T) {
	// 0.10 over 6 months at 0%: 0.02 per month clears the balance in five.
	sched, err := model.ComputeSchedule(dec("0.10"), decimal.Zero, 6, start)
	require.NoError(t, err)
	assert.Len(t, sched.Entries, 5)
}

func TestComputeSchedule_DueDatesAreCalendarMonths(t *testing.T) {
	endOfMonth := time.Date(2026, time.January, 31, 10, 0, 0, 0, time.UTC)
	sched, err := model.ComputeSchedule(dec("30000"), dec("12"), 3, endOfMonth)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.February, 28, 10, 0, 0, 0, time.UTC), sched.Entries[0].DueDate)
	assert.Equal(t, time.Date(2026, time.March, 31, 10, 0, 0, 0, time.UTC), sched.Entries[1].DueDate)
	assert.Equal(t, time.Date(2026, time.April, 30, 10, 0, 0, 0, time.UTC), sched.Entries[2].DueDate)
}

func TestComputeSchedule_InvalidInputs(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
	}{
		{"zero principal", "0", "12", 12},
		{"negative principal", "-1000", "12", 12},
		{"sub-paise principal", "1000.005", "12", 12},
		{"zero term", "1000", "12", 0},
		{"negative term", "1000", "12", -3},
		{"negative rate", "1000", "-1", 12},
		{"rate above 100", "1000", "101", 12},
		{"term above maximum", "100000", "100", 10000},
		{"huge term", "100000", "12", 1 << 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.ComputeSchedule(dec(tt.principal), dec(tt.rate), tt.term, start)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidArgument))
		})
	}
}

func TestComputeSchedule_LongestTerm(t *testing.T) {
	sched, err := model.ComputeSchedule(dec("100000"), dec("100"), model.MaxTermMonths, start)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sched.Entries), model.MaxTermMonths)
	assert.True(t, sched.MonthlyPayment.IsPositive())
	assert.True(t, sched.Entries[len(sched.Entries)-1].RemainingBalance.IsZero())
}

func TestMonthlyPayment_Unrepresentable(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := model.MonthlyPayment(dec("100000"), dec("100"), 10000)
		assert.ErrorIs(t, err, model.ErrInvalidArgument)
	})

	got, err := model.MonthlyPayment(dec("120000"), dec("12"), 12)
	require.NoError(t, err)
	assert.True(t, dec("10661.85").Equal(got))
}

func TestComputeSchedule_SingleMonth(t *testing.T) {
	sched, err := model.ComputeSchedule(dec("10000"), dec("12"), 1, start)
	require.NoError(t, err)
	require.Len(t, sched.Entries, 1)
	assert.True(t, dec("10100").Equal(sched.MonthlyPayment))
	assert.True(t, dec("10000").Equal(sched.Entries[0].Principal))
	assert.True(t, dec("100").Equal(sched.Entries[0].Interest))
}

func TestAccrueInterest(t *testing.T) {
	assert.True(t, dec("1200").Equal(model.AccrueInterest(dec("120000"), dec("12"))))
	assert.True(t, dec("875").Equal(model.AccrueInterest(dec("100000"), dec("10.5"))))
	// 100 * 14 / 1200 = 1.1666.. -> 1.17
	assert.True(t, dec("1.17").Equal(model.AccrueInterest(dec("100"), dec("14"))))
	assert.True(t, model.AccrueInterest(dec("5000"), decimal.Zero).IsZero())
}
