package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/service"
)

// ComputeScheduleUseCase previews an amortization plan for arbitrary terms.
type ComputeScheduleUseCase struct{}

// NewComputeScheduleUseCase returns a ComputeScheduleUseCase.
func NewComputeScheduleUseCase() *ComputeScheduleUseCase {
	return &ComputeScheduleUseCase{}
}

// Execute computes the plan. A zero start date means today.
func (uc *ComputeScheduleUseCase) Execute(_ context.Context, req dto.ComputeScheduleRequest) (dto.AmortizationResponse, error) {
	start := req.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}

	sched, err := model.ComputeSchedule(req.Principal, req.AnnualRatePercent, req.TermMonths, start)
	if err != nil {
		return dto.AmortizationResponse{}, fmt.Errorf("compute schedule: %w", err)
	}

	resp := dto.AmortizationResponse{
		MonthlyPayment: sched.MonthlyPayment,
		TotalInterest:  sched.TotalInterest,
		TotalPayable:   sched.TotalPayable,
		Entries:        make([]dto.AmortizationEntryResponse, 0, len(sched.Entries)),
	}
	for _, e := range sched.Entries {
		resp.Entries = append(resp.Entries, toAmortizationEntryResponse(e))
	}
	return resp, nil
}

// EvaluateEligibilityUseCase exposes the credit tier table.
type EvaluateEligibilityUseCase struct {
	evaluator *service.EligibilityEvaluator
}

// NewEvaluateEligibilityUseCase wires dependencies.
func NewEvaluateEligibilityUseCase(evaluator *service.EligibilityEvaluator) *EvaluateEligibilityUseCase {
	return &EvaluateEligibilityUseCase{evaluator: evaluator}
}

// Execute evaluates the score. Any score below the lowest tier is an
// ineligible result, not an error; only a negative score is rejected.
func (uc *EvaluateEligibilityUseCase) Execute(_ context.Context, req dto.EvaluateEligibilityRequest) (dto.EligibilityResponse, error) {
	if req.CreditScore < 0 {
		return dto.EligibilityResponse{}, fmt.Errorf("%w: credit score must not be negative, got %d",
			model.ErrInvalidArgument, req.CreditScore)
	}

	e := uc.evaluator.Evaluate(req.CreditScore)
	return dto.EligibilityResponse{
		CreditScore:       req.CreditScore,
		Eligible:          e.Eligible,
		Tier:              e.Tier,
		MaxEligibleAmount: e.MaxEligibleAmount,
		AnnualRatePercent: e.AnnualRatePercent,
	}, nil
}
