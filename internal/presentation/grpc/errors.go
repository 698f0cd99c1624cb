package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ricare/lending/internal/domain/model"
	"github.com/ricare/lending/internal/presentation/authz"
)

// toStatus maps an error kind to a gRPC status. Unknown failures are
// reported as Internal without their detail.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	code := codeFor(err)
	if code == codes.Internal {
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, authz.ErrForbidden), errors.Is(err, model.ErrOwnershipMismatch):
		return codes.PermissionDenied
	case errors.Is(err, model.ErrInvalidArgument):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrConcurrencyConflict):
		return codes.Aborted
	case errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrAlreadySettled),
		errors.Is(err, model.ErrAlreadyDisbursed),
		errors.Is(err, model.ErrWalletInactive):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}
