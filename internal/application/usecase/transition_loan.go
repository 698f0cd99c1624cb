package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
)

// SubmitLoanUseCase moves a draft application to SUBMITTED.
type SubmitLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewSubmitLoanUseCase wires dependencies.
func NewSubmitLoanUseCase(loanRepo port.LoanRepository) *SubmitLoanUseCase {
	return &SubmitLoanUseCase{loanRepo: loanRepo}
}

// Execute submits the loan.
func (uc *SubmitLoanUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.LoanResponse, error) {
	return transition(ctx, uc.loanRepo, req.LoanID, "submit loan", func(l model.Loan, now time.Time) (model.Loan, error) {
		return l.Submit(now)
	})
}

// StartReviewUseCase moves a submitted application to UNDER_REVIEW.
type StartReviewUseCase struct {
	loanRepo port.LoanRepository
}

// NewStartReviewUseCase wires dependencies.
func NewStartReviewUseCase(loanRepo port.LoanRepository) *StartReviewUseCase {
	return &StartReviewUseCase{loanRepo: loanRepo}
}

// Execute starts the review.
func (uc *StartReviewUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.LoanResponse, error) {
	return transition(ctx, uc.loanRepo, req.LoanID, "start review", func(l model.Loan, now time.Time) (model.Loan, error) {
		return l.StartReview(now)
	})
}

// RejectLoanUseCase closes an application under decision.
type RejectLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewRejectLoanUseCase wires dependencies.
func NewRejectLoanUseCase(loanRepo port.LoanRepository) *RejectLoanUseCase {
	return &RejectLoanUseCase{loanRepo: loanRepo}
}

// Execute rejects the loan with the given reason.
func (uc *RejectLoanUseCase) Execute(ctx context.Context, req dto.RejectLoanRequest) (dto.LoanResponse, error) {
	return transition(ctx, uc.loanRepo, req.LoanID, "reject loan", func(l model.Loan, now time.Time) (model.Loan, error) {
		return l.Reject(req.Reason, now)
	})
}

func transition(
	ctx context.Context,
	repo port.LoanRepository,
	rawID, step string,
	apply func(model.Loan, time.Time) (model.Loan, error),
) (dto.LoanResponse, error) {
	loan, err := loadLoan(ctx, repo, rawID)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	loan, err = apply(loan, time.Now().UTC())
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("%s: %w", step, err)
	}

	if err := repo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}
	return toLoanResponse(loan), nil
}

func loadLoan(ctx context.Context, repo port.LoanRepository, rawID string) (model.Loan, error) {
	id, err := parseID("loan_id", rawID)
	if err != nil {
		return model.Loan{}, err
	}
	loan, err := repo.FindByID(ctx, id)
	if err != nil {
		return model.Loan{}, fmt.Errorf("find loan: %w", err)
	}
	return loan, nil
}
