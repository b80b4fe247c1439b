package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
)

// GetScheduleUseCase reads a stored schedule and derives its statuses.
type GetScheduleUseCase struct {
	repo  port.ScheduleRepository
	clock Clock
}

// NewGetScheduleUseCase wires dependencies.
func NewGetScheduleUseCase(repo port.ScheduleRepository, clock Clock) *GetScheduleUseCase {
	return &GetScheduleUseCase{repo: repo, clock: clock}
}

// Execute returns the schedule of req.LoanID as of req.AsOf (today when
// empty). Statuses are recomputed on every read.
func (uc *GetScheduleUseCase) Execute(ctx context.Context, req dto.GetScheduleRequest) (dto.ScheduleResponse, error) {
	if req.LoanID == "" {
		return dto.ScheduleResponse{}, model.NewInputError("loan_id", "is required")
	}
	asOf, err := parseDate("as_of", req.AsOf, uc.clock.now())
	if err != nil {
		return dto.ScheduleResponse{}, err
	}

	s, err := uc.repo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find schedule: %w", err)
	}
	return ToScheduleResponse(s.AsOf(asOf), asOf), nil
}
