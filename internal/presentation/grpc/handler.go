package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
)

// Use-case surfaces the handler needs; the usecase package types satisfy them.
type (
	Simulator interface {
		Execute(ctx context.Context, req dto.LoanRequest) (dto.SimulationResponse, error)
	}
	Validator interface {
		Execute(ctx context.Context, req dto.LoanRequest) (dto.ValidationResponse, error)
	}
	Confirmer interface {
		Execute(ctx context.Context, req dto.ConfirmRequest) (dto.ScheduleResponse, error)
	}
	ScheduleReader interface {
		Execute(ctx context.Context, req dto.GetScheduleRequest) (dto.ScheduleResponse, error)
	}
)

// OriginationHandler is the gRPC handler for origination operations.
type OriginationHandler struct {
	UnimplementedOriginationServiceServer

	simulate    Simulator
	validate    Validator
	confirm     Confirmer
	getSchedule ScheduleReader
	logger      *slog.Logger
}

// NewOriginationHandler creates a new handler with all use-case dependencies.
func NewOriginationHandler(
	simulate Simulator,
	validate Validator,
	confirm Confirmer,
	getSchedule ScheduleReader,
	logger *slog.Logger,
) *OriginationHandler {
	return &OriginationHandler{
		simulate:    simulate,
		validate:    validate,
		confirm:     confirm,
		getSchedule: getSchedule,
		logger:      logger,
	}
}

func (h *OriginationHandler) Simulate(ctx context.Context, req *dto.LoanRequest) (*dto.SimulationResponse, error) {
	resp, err := h.simulate.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) Validate(ctx context.Context, req *dto.LoanRequest) (*dto.ValidationResponse, error) {
	resp, err := h.validate.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) Confirm(ctx context.Context, req *dto.ConfirmRequest) (*dto.ScheduleResponse, error) {
	resp, err := h.confirm.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func (h *OriginationHandler) GetSchedule(ctx context.Context, req *dto.GetScheduleRequest) (*dto.ScheduleResponse, error) {
	resp, err := h.getSchedule.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// toStatus maps domain errors onto gRPC codes. Unexpected errors are logged
// and reported as Internal without their text.
func (h *OriginationHandler) toStatus(ctx context.Context, err error) error {
	var (
		inErr *model.InputError
		notOK *model.NotEligibleError
	)
	switch {
	case errors.As(err, &inErr):
		st := status.New(codes.InvalidArgument, err.Error())
		if detailed, derr := st.WithDetails(&errdetails.BadRequest{
			FieldViolations: []*errdetails.BadRequest_FieldViolation{{Field: inErr.Field, Description: inErr.Reason}},
		}); derr == nil {
			st = detailed
		}
		return st.Err()
	case errors.As(err, &notOK):
		st := status.New(codes.FailedPrecondition, err.Error())
		violations := make([]*errdetails.PreconditionFailure_Violation, 0, len(notOK.Result.Errors))
		for _, i := range notOK.Result.Errors {
			violations = append(violations, &errdetails.PreconditionFailure_Violation{
				Type: i.Code, Subject: i.Field, Description: i.Message,
			})
		}
		if detailed, derr := st.WithDetails(&errdetails.PreconditionFailure{Violations: violations}); derr == nil {
			st = detailed
		}
		return st.Err()
	case errors.Is(err, port.ErrScheduleNotFound), errors.Is(err, model.ErrPaymentNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, port.ErrScheduleExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, port.ErrIdempotencyInFlight):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, model.ErrScheduleInvariant):
		h.logger.ErrorContext(ctx, "schedule invariant violated", "error", err)
		return status.Error(codes.Internal, "schedule invariant violated")
	default:
		h.logger.ErrorContext(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

// methodName returns the last element of a full gRPC method name.
func methodName(fullMethod string) string {
	if i := strings.LastIndex(fullMethod, "/"); i >= 0 {
		return fullMethod[i+1:]
	}
	return fullMethod
}
