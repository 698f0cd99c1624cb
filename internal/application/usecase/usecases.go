package usecase

import (
	"log/slog"

	"github.com/ricare/lending/internal/domain/port"
	"github.com/ricare/lending/internal/domain/service"
)

// Dependencies are the driven adapters every use case is built from.
// Idempotency and Metrics may be nil.
type Dependencies struct {
	Loans        port.LoanRepository
	Wallets      port.WalletRepository
	Disbursement port.DisbursementStore
	Sequence     port.SequenceGenerator
	Idempotency  port.IdempotencyStore
	Bureau       port.CreditBureauClient
	Identity     port.IdentityVerifier
	Metrics      *LedgerMetrics
	Logger       *slog.Logger
}

// UseCases bundles the application operations exposed by the transports.
type UseCases struct {
	CreateLoanApplication *CreateLoanApplicationUseCase
	SubmitLoan            *SubmitLoanUseCase
	StartReview           *StartReviewUseCase
	ApproveLoan           *ApproveLoanUseCase
	RejectLoan            *RejectLoanUseCase
	GetLoan               *GetLoanUseCase
	ListLoans             *ListLoansUseCase
	PayEmi                *PayEmiUseCase
	GetEmiSchedule        *GetEmiScheduleUseCase
	ComputeSchedule       *ComputeScheduleUseCase
	EvaluateEligibility   *EvaluateEligibilityUseCase
	DisburseToWallet      *DisburseToWalletUseCase
	RegisterWallet        *RegisterWalletUseCase
	GetWallet             *GetWalletUseCase
	ApplyWalletStatus     *ApplyWalletStatusUseCase
}

// NewUseCases wires every use case from deps.
func NewUseCases(deps Dependencies) UseCases {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	evaluator := service.NewEligibilityEvaluator()

	return UseCases{
		CreateLoanApplication: NewCreateLoanApplicationUseCase(deps.Loans, deps.Sequence, deps.Identity, deps.Bureau, evaluator),
		SubmitLoan:            NewSubmitLoanUseCase(deps.Loans),
		StartReview:           NewStartReviewUseCase(deps.Loans),
		ApproveLoan:           NewApproveLoanUseCase(deps.Loans, evaluator),
		RejectLoan:            NewRejectLoanUseCase(deps.Loans),
		GetLoan:               NewGetLoanUseCase(deps.Loans),
		ListLoans:             NewListLoansUseCase(deps.Loans),
		PayEmi:                NewPayEmiUseCase(deps.Loans, deps.Idempotency, deps.Metrics, logger),
		GetEmiSchedule:        NewGetEmiScheduleUseCase(deps.Loans),
		ComputeSchedule:       NewComputeScheduleUseCase(),
		EvaluateEligibility:   NewEvaluateEligibilityUseCase(evaluator),
		DisburseToWallet: NewDisburseToWalletUseCase(
			deps.Loans, deps.Wallets, deps.Disbursement, service.NewDisbursementService(), deps.Metrics, logger,
		),
		RegisterWallet:    NewRegisterWalletUseCase(deps.Wallets),
		GetWallet:         NewGetWalletUseCase(deps.Wallets),
		ApplyWalletStatus: NewApplyWalletStatusUseCase(deps.Wallets, logger),
	}
}
