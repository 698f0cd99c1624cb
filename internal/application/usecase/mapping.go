package usecase

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/domain/model"
)

// saveAttempts bounds the re-fetch loop on optimistic version conflicts.
const saveAttempts = 3

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a valid ID", model.ErrInvalidArgument, field, raw)
	}
	return id, nil
}

func toLoanResponse(l model.Loan) dto.LoanResponse {
	resp := dto.LoanResponse{
		ID:                  l.ID().String(),
		OwnerID:             l.OwnerID().String(),
		UHID:                l.UHID(),
		ApplicationNumber:   l.ApplicationNumber(),
		Currency:            l.Currency(),
		Purpose:             l.Purpose(),
		RequestedAmount:     l.RequestedAmount(),
		RequestedTermMonths: l.RequestedTermMonths(),
		CreditScore:         l.CreditScore(),
		MaxEligibleAmount:   l.MaxEligibleAmount(),
		SuggestedRate:       l.SuggestedRate(),
		Principal:           l.Principal(),
		AnnualRatePercent:   l.AnnualRatePercent(),
		TermMonths:          l.TermMonths(),
		MonthlyPayment:      l.MonthlyPayment(),
		RemainingBalance:    l.RemainingBalance(),
		NextDueDate:         l.NextDueDate(),
		Status:              l.Status().String(),
		RejectionReason:     l.RejectionReason(),
		DisbursedToWallet:   l.DisbursedToWallet(),
		CreatedAt:           l.CreatedAt(),
		UpdatedAt:           l.UpdatedAt(),
	}
	if !l.ApprovalDate().IsZero() {
		d := l.ApprovalDate()
		resp.ApprovalDate = &d
	}
	if l.WalletID() != uuid.Nil {
		resp.WalletID = l.WalletID().String()
	}
	for _, p := range l.Payments() {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	return resp
}

func toPaymentResponse(p model.EmiPayment) dto.EmiPaymentResponse {
	return dto.EmiPaymentResponse{
		TransactionID:      p.TransactionID,
		InstallmentNumber:  p.InstallmentNumber,
		PaymentDate:        p.PaymentDate,
		AmountPaid:         p.AmountPaid,
		PrincipalComponent: p.PrincipalComponent,
		InterestComponent:  p.InterestComponent,
		BalanceAfter:       p.BalanceAfter,
		Method:             p.Method.String(),
		Status:             p.Status.String(),
	}
}

func toAmortizationEntryResponse(e model.AmortizationEntry) dto.AmortizationEntryResponse {
	return dto.AmortizationEntryResponse{
		Period:           e.Period,
		DueDate:          e.DueDate,
		Payment:          e.Payment,
		Principal:        e.Principal,
		Interest:         e.Interest,
		RemainingBalance: e.RemainingBalance,
	}
}

func toWalletResponse(w model.Wallet) dto.WalletResponse {
	return dto.WalletResponse{
		ID:               w.ID().String(),
		OwnerID:          w.OwnerID().String(),
		CardNumber:       w.CardNumber(),
		Currency:         w.Currency().Code(),
		AvailableBalance: w.AvailableBalance(),
		Status:           w.Status().String(),
		CreatedAt:        w.CreatedAt(),
		UpdatedAt:        w.UpdatedAt(),
	}
}
