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

// CreateLoanApplicationUseCase opens a draft loan for a KYC-verified patient.
// The applicant's credit score is pulled and evaluated up front so the draft
// carries its eligibility ceiling and suggested rate.
type CreateLoanApplicationUseCase struct {
	loanRepo  port.LoanRepository
	sequence  port.SequenceGenerator
	identity  port.IdentityVerifier
	bureau    port.CreditBureauClient
	evaluator *service.EligibilityEvaluator
}

// NewCreateLoanApplicationUseCase wires dependencies.
func NewCreateLoanApplicationUseCase(
	loanRepo port.LoanRepository,
	sequence port.SequenceGenerator,
	identity port.IdentityVerifier,
	bureau port.CreditBureauClient,
	evaluator *service.EligibilityEvaluator,
) *CreateLoanApplicationUseCase {
	return &CreateLoanApplicationUseCase{
		loanRepo:  loanRepo,
		sequence:  sequence,
		identity:  identity,
		bureau:    bureau,
		evaluator: evaluator,
	}
}

// Execute creates and persists a DRAFT loan.
func (uc *CreateLoanApplicationUseCase) Execute(
	ctx context.Context,
	req dto.CreateLoanApplicationRequest,
) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	ownerID, err := parseID("owner_id", req.OwnerID)
	if err != nil {
		return dto.LoanResponse{}, err
	}

	// 1. Only KYC-verified patients may apply.
	identity, err := uc.identity.GetIdentity(ctx, ownerID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("verify identity: %w", err)
	}
	if !identity.KYCVerified {
		return dto.LoanResponse{}, model.ErrKYCNotVerified
	}

	// 2. Pull and evaluate the credit score.
	score, err := uc.bureau.GetCreditScore(ctx, ownerID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("fetch credit score: %w", err)
	}
	eligibility := uc.evaluator.Evaluate(score)

	// 3. Allocate the application number.
	seq, err := uc.sequence.NextApplicationSequence(ctx)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("next application sequence: %w", err)
	}

	// 4. Create the aggregate.
	loan, err := model.NewLoan(model.LoanApplication{
		OwnerID:             ownerID,
		UHID:                identity.UHID,
		ApplicationNumber:   model.FormatApplicationNumber(now.Year(), seq),
		Currency:            req.Currency,
		Purpose:             req.Purpose,
		RequestedAmount:     req.RequestedAmount,
		RequestedTermMonths: req.TermMonths,
		CreditScore:         score,
		Eligibility:         eligibility,
	}, now)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 5. Persist (events go to the outbox with the row).
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	return toLoanResponse(loan), nil
}
