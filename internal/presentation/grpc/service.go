package grpc

// service.go is the hand-written descriptor of bib.origination.v1.OriginationService.
// Messages are the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bib.origination.v1.OriginationService"

// OriginationServiceServer is the server API for OriginationService.
type OriginationServiceServer interface {
	Simulate(context.Context, *dto.LoanRequest) (*dto.SimulationResponse, error)
	Validate(context.Context, *dto.LoanRequest) (*dto.ValidationResponse, error)
	Confirm(context.Context, *dto.ConfirmRequest) (*dto.ScheduleResponse, error)
	GetSchedule(context.Context, *dto.GetScheduleRequest) (*dto.ScheduleResponse, error)
	mustEmbedUnimplementedOriginationServiceServer()
}

// UnimplementedOriginationServiceServer provides forward-compatible default implementations.
type UnimplementedOriginationServiceServer struct{}

func (UnimplementedOriginationServiceServer) Simulate(context.Context, *dto.LoanRequest) (*dto.SimulationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Simulate not implemented")
}
func (UnimplementedOriginationServiceServer) Validate(context.Context, *dto.LoanRequest) (*dto.ValidationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Validate not implemented")
}
func (UnimplementedOriginationServiceServer) Confirm(context.Context, *dto.ConfirmRequest) (*dto.ScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Confirm not implemented")
}
func (UnimplementedOriginationServiceServer) GetSchedule(context.Context, *dto.GetScheduleRequest) (*dto.ScheduleResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSchedule not implemented")
}
func (UnimplementedOriginationServiceServer) mustEmbedUnimplementedOriginationServiceServer() {}

// RegisterOriginationServiceServer registers srv with the gRPC server.
func RegisterOriginationServiceServer(s grpclib.ServiceRegistrar, srv OriginationServiceServer) {
	s.RegisterService(&originationServiceDesc, srv)
}

var originationServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OriginationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Simulate", Handler: unaryHandler("Simulate", OriginationServiceServer.Simulate)},
		{MethodName: "Validate", Handler: unaryHandler("Validate", OriginationServiceServer.Validate)},
		{MethodName: "Confirm", Handler: unaryHandler("Confirm", OriginationServiceServer.Confirm)},
		{MethodName: "GetSchedule", Handler: unaryHandler("GetSchedule", OriginationServiceServer.GetSchedule)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "bib/origination/v1/origination.proto",
}

// methodHandler is the signature grpc.MethodDesc expects for unary methods.
type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error)

// unaryHandler adapts a typed server method to a unary methodHandler.
func unaryHandler[Req, Resp any](
	method string,
	call func(OriginationServiceServer, context.Context, *Req) (*Resp, error),
) methodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(OriginationServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(OriginationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
