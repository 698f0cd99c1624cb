package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ricare/lending/internal/application/dto"
	"github.com/ricare/lending/internal/application/usecase"
	"github.com/ricare/lending/internal/presentation/authz"
	"github.com/ricare/lending/pkg/auth"
)

// LendingHandler implements LendingServiceServer on top of the use cases.
type LendingHandler struct {
	uc     usecase.UseCases
	logger *slog.Logger
}

var _ LendingServiceServer = (*LendingHandler)(nil)

// NewLendingHandler creates a new handler.
func NewLendingHandler(uc usecase.UseCases, logger *slog.Logger) *LendingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LendingHandler{uc: uc, logger: logger}
}

// ---------------------------------------------------------------------------
// Applications
// ---------------------------------------------------------------------------

func (h *LendingHandler) CreateLoanApplication(ctx context.Context, req *dto.CreateLoanApplicationRequest) (*dto.LoanResponse, error) {
	if err := authz.RequireSelfOrStaff(ctx, req.OwnerID); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.CreateLoanApplication.Execute(ctx, *req))
}

func (h *LendingHandler) SubmitLoan(ctx context.Context, req *dto.LoanRequest) (*dto.LoanResponse, error) {
	if err := h.authorizeLoan(ctx, req.LoanID); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.SubmitLoan.Execute(ctx, *req))
}

func (h *LendingHandler) StartReview(ctx context.Context, req *dto.LoanRequest) (*dto.LoanResponse, error) {
	if err := authz.RequireAnyRole(ctx, auth.RoleAdmin, auth.RoleOperator); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.StartReview.Execute(ctx, *req))
}

func (h *LendingHandler) ApproveLoan(ctx context.Context, req *dto.ApproveLoanRequest) (*dto.LoanResponse, error) {
	if err := authz.RequireAnyRole(ctx, auth.RoleAdmin); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.ApproveLoan.Execute(ctx, *req))
}

func (h *LendingHandler) RejectLoan(ctx context.Context, req *dto.RejectLoanRequest) (*dto.LoanResponse, error) {
	if err := authz.RequireAnyRole(ctx, auth.RoleAdmin); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.RejectLoan.Execute(ctx, *req))
}

func (h *LendingHandler) GetLoan(ctx context.Context, req *dto.LoanRequest) (*dto.LoanResponse, error) {
	resp, err := h.uc.GetLoan.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := authz.RequireSelfOrStaff(ctx, resp.OwnerID); err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// ListLoans by UHID is a staff lookup; by owner it follows the self-or-staff rule.
func (h *LendingHandler) ListLoans(ctx context.Context, req *dto.ListLoansRequest) (*dto.ListLoansResponse, error) {
	check := authz.RequireSelfOrStaff(ctx, req.OwnerID)
	if req.UHID != "" {
		check = authz.RequireAnyRole(ctx, auth.RoleAdmin, auth.RoleOperator)
	}
	if check != nil {
		return nil, toStatus(check)
	}
	return respond(h.uc.ListLoans.Execute(ctx, *req))
}

// ---------------------------------------------------------------------------
// EMI ledger
// ---------------------------------------------------------------------------

func (h *LendingHandler) PayEmi(ctx context.Context, req *dto.PayEmiRequest) (*dto.PayEmiResponse, error) {
	if err := h.authorizeLoan(ctx, req.LoanID); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.PayEmi.Execute(ctx, *req))
}

func (h *LendingHandler) GetEmiSchedule(ctx context.Context, req *dto.LoanRequest) (*dto.EmiScheduleResponse, error) {
	if err := h.authorizeLoan(ctx, req.LoanID); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.GetEmiSchedule.Execute(ctx, *req))
}

// ---------------------------------------------------------------------------
// Calculators
// ---------------------------------------------------------------------------

func (h *LendingHandler) ComputeSchedule(ctx context.Context, req *dto.ComputeScheduleRequest) (*dto.AmortizationResponse, error) {
	if err := authz.RequireAuthenticated(ctx); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.ComputeSchedule.Execute(ctx, *req))
}

func (h *LendingHandler) EvaluateEligibility(ctx context.Context, req *dto.EvaluateEligibilityRequest) (*dto.EligibilityResponse, error) {
	if err := authz.RequireAuthenticated(ctx); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.EvaluateEligibility.Execute(ctx, *req))
}

// ---------------------------------------------------------------------------
// Wallets
// ---------------------------------------------------------------------------

func (h *LendingHandler) DisburseToWallet(ctx context.Context, req *dto.DisburseToWalletRequest) (*dto.DisbursementResponse, error) {
	if err := h.authorizeLoan(ctx, req.LoanID); err != nil {
		return nil, toStatus(err)
	}
	resp, err := h.uc.DisburseToWallet.Execute(ctx, *req)
	if err != nil {
		h.logger.WarnContext(ctx, "disbursement refused", "loan_id", req.LoanID, "wallet_id", req.WalletID, "error", err)
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *LendingHandler) RegisterWallet(ctx context.Context, req *dto.RegisterWalletRequest) (*dto.WalletResponse, error) {
	if err := authz.RequireSelfOrStaff(ctx, req.OwnerID); err != nil {
		return nil, toStatus(err)
	}
	return respond(h.uc.RegisterWallet.Execute(ctx, *req))
}

func (h *LendingHandler) GetWallet(ctx context.Context, req *dto.GetWalletRequest) (*dto.WalletResponse, error) {
	resp, err := h.uc.GetWallet.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := authz.RequireSelfOrStaff(ctx, resp.OwnerID); err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// authorizeLoan lets staff through and otherwise requires the caller to own
// the loan.
func (h *LendingHandler) authorizeLoan(ctx context.Context, loanID string) error {
	err := authz.RequireAnyRole(ctx, auth.RoleAdmin, auth.RoleOperator)
	if err == nil || errors.Is(err, authz.ErrUnauthenticated) {
		return err
	}
	loan, err := h.uc.GetLoan.Execute(ctx, dto.LoanRequest{LoanID: loanID})
	if err != nil {
		return err
	}
	return authz.RequireSelfOrStaff(ctx, loan.OwnerID)
}

func respond[T any](resp T, err error) (*T, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}
