package rest

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ricare/lending/internal/application/dto"
	lendinggrpc "github.com/ricare/lending/internal/presentation/grpc"
	"github.com/ricare/lending/pkg/auth"
)

// IdempotencyKeyHeader carries the optional PayEmi idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// LendingAPI translates HTTP requests into lending service calls.
type LendingAPI struct {
	svc    lendinggrpc.LendingServiceServer
	logger *slog.Logger
}

func (h *LendingAPI) createLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanApplicationRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = callerID(r)
	}
	resp, err := h.svc.CreateLoanApplication(r.Context(), &req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

func (h *LendingAPI) listLoans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &dto.ListLoansRequest{OwnerID: q.Get("owner_id"), UHID: q.Get("uhid")}
	if req.OwnerID == "" && req.UHID == "" {
		req.OwnerID = callerID(r)
	}
	resp, err := h.svc.ListLoans(r.Context(), req)
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) getLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetLoan(r.Context(), &dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) submitLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.SubmitLoan(r.Context(), &dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) startReview(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.StartReview(r.Context(), &dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) approveLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.ApproveLoanRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.svc.ApproveLoan(r.Context(), &req)
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) rejectLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectLoanRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.svc.RejectLoan(r.Context(), &req)
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) payEmi(w http.ResponseWriter, r *http.Request) {
	var req dto.PayEmiRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	if key := r.Header.Get(IdempotencyKeyHeader); key != "" {
		req.IdempotencyKey = key
	}
	resp, err := h.svc.PayEmi(r.Context(), &req)
	code := http.StatusCreated
	if err == nil && resp.Replayed {
		code = http.StatusOK
	}
	h.respond(w, r, code, resp, err)
}

func (h *LendingAPI) getSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetEmiSchedule(r.Context(), &dto.LoanRequest{LoanID: mux.Vars(r)["id"]})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) disburse(w http.ResponseWriter, r *http.Request) {
	var req dto.DisburseToWalletRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.LoanID = mux.Vars(r)["id"]
	resp, err := h.svc.DisburseToWallet(r.Context(), &req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

func (h *LendingAPI) computeSchedule(w http.ResponseWriter, r *http.Request) {
	var req dto.ComputeScheduleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.ComputeSchedule(r.Context(), &req)
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) evaluateEligibility(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(r.URL.Query().Get("credit_score"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "credit_score must be an integer")
		return
	}
	resp, err := h.svc.EvaluateEligibility(r.Context(), &dto.EvaluateEligibilityRequest{CreditScore: score})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) registerWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterWalletRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = callerID(r)
	}
	resp, err := h.svc.RegisterWallet(r.Context(), &req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

func (h *LendingAPI) getWallet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetWallet(r.Context(), &dto.GetWalletRequest{WalletID: mux.Vars(r)["id"]})
	h.respond(w, r, http.StatusOK, resp, err)
}

func (h *LendingAPI) respond(w http.ResponseWriter, r *http.Request, code int, resp any, err error) {
	if err != nil {
		handleServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, code, resp)
}

// callerID is the authenticated user's ID, used when a request leaves the
// owner implicit.
func callerID(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims.UserID.String()
	}
	return ""
}
