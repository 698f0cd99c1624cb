package grpc

// service_desc.go is the hand-written equivalent of generated service code for
// ricare.lending.v1.LendingService. Messages are the application DTOs carried
// by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/ricare/lending/internal/application/dto"
)

const serviceName = "ricare.lending.v1.LendingService"

// LendingServiceServer is the server API for LendingService.
type LendingServiceServer interface {
	CreateLoanApplication(context.Context, *dto.CreateLoanApplicationRequest) (*dto.LoanResponse, error)
	SubmitLoan(context.Context, *dto.LoanRequest) (*dto.LoanResponse, error)
	StartReview(context.Context, *dto.LoanRequest) (*dto.LoanResponse, error)
	ApproveLoan(context.Context, *dto.ApproveLoanRequest) (*dto.LoanResponse, error)
	RejectLoan(context.Context, *dto.RejectLoanRequest) (*dto.LoanResponse, error)
	GetLoan(context.Context, *dto.LoanRequest) (*dto.LoanResponse, error)
	ListLoans(context.Context, *dto.ListLoansRequest) (*dto.ListLoansResponse, error)
	PayEmi(context.Context, *dto.PayEmiRequest) (*dto.PayEmiResponse, error)
	GetEmiSchedule(context.Context, *dto.LoanRequest) (*dto.EmiScheduleResponse, error)
	ComputeSchedule(context.Context, *dto.ComputeScheduleRequest) (*dto.AmortizationResponse, error)
	EvaluateEligibility(context.Context, *dto.EvaluateEligibilityRequest) (*dto.EligibilityResponse, error)
	DisburseToWallet(context.Context, *dto.DisburseToWalletRequest) (*dto.DisbursementResponse, error)
	RegisterWallet(context.Context, *dto.RegisterWalletRequest) (*dto.WalletResponse, error)
	GetWallet(context.Context, *dto.GetWalletRequest) (*dto.WalletResponse, error)
}

// FullMethod returns the gRPC path of method.
func FullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// RegisterLendingServiceServer registers srv with s.
func RegisterLendingServiceServer(s grpclib.ServiceRegistrar, srv LendingServiceServer) {
	s.RegisterService(&lendingServiceDesc, srv)
}

var lendingServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LendingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("CreateLoanApplication", LendingServiceServer.CreateLoanApplication),
		unary("SubmitLoan", LendingServiceServer.SubmitLoan),
		unary("StartReview", LendingServiceServer.StartReview),
		unary("ApproveLoan", LendingServiceServer.ApproveLoan),
		unary("RejectLoan", LendingServiceServer.RejectLoan),
		unary("GetLoan", LendingServiceServer.GetLoan),
		unary("ListLoans", LendingServiceServer.ListLoans),
		unary("PayEmi", LendingServiceServer.PayEmi),
		unary("GetEmiSchedule", LendingServiceServer.GetEmiSchedule),
		unary("ComputeSchedule", LendingServiceServer.ComputeSchedule),
		unary("EvaluateEligibility", LendingServiceServer.EvaluateEligibility),
		unary("DisburseToWallet", LendingServiceServer.DisburseToWallet),
		unary("RegisterWallet", LendingServiceServer.RegisterWallet),
		unary("GetWallet", LendingServiceServer.GetWallet),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "ricare/lending/v1/lending.proto",
}

// unary builds the method descriptor that generated code would contain for
// one request/response RPC.
func unary[Req, Resp any](
	method string,
	call func(LendingServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LendingServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LendingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
