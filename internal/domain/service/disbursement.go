package service

import (
	"fmt"
	"time"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/domain/valueobject"
	"github.com/ricare/lending/pkg/money"
)

// DisbursementService moves an approved loan's principal into the borrower's
// health-card wallet. It only computes the two new aggregate states; the
// caller commits both together or neither.
type DisbursementService struct{}

// NewDisbursementService returns a DisbursementService.
func NewDisbursementService() *DisbursementService {
	return &DisbursementService{}
}

// Disburse checks, in order: not already disbursed, loan APPROVED, same
// owner, wallet ACTIVE. On success the wallet is credited with the principal
// and the loan is marked DISBURSED.
func (s *DisbursementService) Disburse(loan model.Loan, wallet model.Wallet, now time.Time) (model.Loan, model.Wallet, error) {
	if loan.DisbursedToWallet() {
		return loan, wallet, model.ErrAlreadyDisbursed
	}
	if loan.Status() != valueobject.LoanStatusApproved {
		return loan, wallet, fmt.Errorf("%w: cannot disburse loan in %s status", model.ErrInvalidState, loan.Status())
	}
	if wallet.OwnerID() != loan.OwnerID() {
		return loan, wallet, model.ErrOwnershipMismatch
	}
	if !wallet.Status().IsActive() {
		return loan, wallet, model.ErrWalletInactive
	}

	currency, err := money.NewCurrency(loan.Currency())
	if err != nil {
		return loan, wallet, err
	}

	updatedLoan, err := loan.MarkDisbursed(wallet.ID(), now)
	if err != nil {
		return loan, wallet, err
	}

	updatedWallet, err := wallet.Credit(money.New(loan.Principal(), currency), loan.ApplicationNumber(), now)
	if err != nil {
		return loan, wallet, err
	}

	return updatedLoan, updatedWallet, nil
}
