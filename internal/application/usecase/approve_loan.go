package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/service"
)

// ApproveLoanUseCase fixes the terms of a loan under decision and opens its
// EMI ledger.
type ApproveLoanUseCase struct {
	loanRepo  port.LoanRepository
	evaluator *service.EligibilityEvaluator
}

// NewApproveLoanUseCase wires dependencies.
func NewApproveLoanUseCase(loanRepo port.LoanRepository, evaluator *service.EligibilityEvaluator) *ApproveLoanUseCase {
	return &ApproveLoanUseCase{loanRepo: loanRepo, evaluator: evaluator}
}

// Execute approves the loan. The principal must fit the applicant's tier;
// without an explicit rate the tier rate applies.
func (uc *ApproveLoanUseCase) Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.LoanResponse, error) {
	loan, err := loadLoan(ctx, uc.loanRepo, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	eligibility := uc.evaluator.Evaluate(loan.CreditScore())
	rate := eligibility.AnnualRatePercent
	if req.AnnualRatePercent != nil {
		rate = *req.AnnualRatePercent
	}

	loan, err = loan.Approve(model.ApprovalTerms{
		Principal:         req.Principal,
		AnnualRatePercent: rate,
		TermMonths:        req.TermMonths,
	}, time.Now().UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("approve loan: %w", err)
	}

	if err := uc.evaluator.CheckApproval(eligibility, req.Principal); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("check eligibility: %w", err)
	}

	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}
	return toLoanResponse(loan), nil
}
