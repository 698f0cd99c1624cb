package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/port"
)

// GetEmiScheduleUseCase projects a loan's installment plan with the status of
// each installment. It never writes.
type GetEmiScheduleUseCase struct {
	loanRepo port.LoanRepository
}

// NewGetEmiScheduleUseCase wires dependencies.
func NewGetEmiScheduleUseCase(loanRepo port.LoanRepository) *GetEmiScheduleUseCase {
	return &GetEmiScheduleUseCase{loanRepo: loanRepo}
}

// Execute builds the schedule as of now.
func (uc *GetEmiScheduleUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.EmiScheduleResponse, error) {
	loan, err := loadLoan(ctx, uc.loanRepo, req.LoanID)
	if err != nil {
		return dto.EmiScheduleResponse{}, err
	}

	entries, err := model.BuildSchedule(loan, time.Now().UTC())
	if err != nil {
		return dto.EmiScheduleResponse{}, fmt.Errorf("build schedule: %w", err)
	}

	resp := dto.EmiScheduleResponse{
		LoanID:            loan.ID().String(),
		ApplicationNumber: loan.ApplicationNumber(),
		RemainingBalance:  loan.RemainingBalance(),
		LoanStatus:        loan.Status().String(),
		Entries:           make([]dto.ScheduleEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.ScheduleEntryResponse{
			AmortizationEntryResponse: toAmortizationEntryResponse(e.AmortizationEntry),
			Status:                    string(e.Status),
			PaidDate:                  e.PaidDate,
			TransactionID:             e.TransactionID,
			AmountPaid:                e.AmountPaid,
		})
	}

	sum := model.Summarize(entries)
	resp.Summary = dto.ScheduleSummaryResponse{
		PaidCount:      sum.PaidCount,
		PendingCount:   sum.PendingCount,
		OverdueCount:   sum.OverdueCount,
		PaidAmount:     sum.PaidAmount,
		OverdueAmount:  sum.OverdueAmount,
		PendingAmount:  sum.PendingAmount,
		NextDueDate:    sum.NextDueDate,
		MonthlyPayment: sum.MonthlyPayment,
	}
	return resp, nil
}
