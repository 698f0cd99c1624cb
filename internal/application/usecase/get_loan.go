package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
)

// GetLoanUseCase retrieves a loan with its payment history.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo}
}

// Execute returns the loan.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.LoanResponse, error) {
	loan, err := loadLoan(ctx, uc.loanRepo, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, err
	}
	return toLoanResponse(loan), nil
}

// ListLoansUseCase lists loans by owner or by UHID, newest first.
type ListLoansUseCase struct {
	loanRepo port.LoanRepository
}

// NewListLoansUseCase wires dependencies.
func NewListLoansUseCase(loanRepo port.LoanRepository) *ListLoansUseCase {
	return &ListLoansUseCase{loanRepo: loanRepo}
}

// Execute returns the selected loans.
func (uc *ListLoansUseCase) Execute(ctx context.Context, req dto.ListLoansRequest) (dto.ListLoansResponse, error) {
	uhid := strings.TrimSpace(req.UHID)
	if uhid != "" && req.OwnerID != "" {
		return dto.ListLoansResponse{}, fmt.Errorf("%w: owner_id and uhid are mutually exclusive", model.ErrInvalidArgument)
	}

	var (
		loans []model.Loan
		err   error
	)
	if uhid != "" {
		loans, err = uc.loanRepo.FindByUHID(ctx, uhid)
	} else {
		ownerID, perr := parseID("owner_id", req.OwnerID)
		if perr != nil {
			return dto.ListLoansResponse{}, perr
		}
		loans, err = uc.loanRepo.FindByOwnerID(ctx, ownerID)
	}
	if err != nil {
		return dto.ListLoansResponse{}, fmt.Errorf("find loans: %w", err)
	}

	resp := dto.ListLoansResponse{Loans: make([]dto.LoanResponse, 0, len(loans))}
	for _, l := range loans {
		resp.Loans = append(resp.Loans, toLoanResponse(l))
	}
	return resp, nil
}
