package usecase

import (
	"context"
	"log/slog"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// SimulateLoanUseCase serves quick loan previews.
type SimulateLoanUseCase struct {
	simulator *service.Simulator
	currency  money.Currency
	metrics   *Metrics
	logger    *slog.Logger
}

// NewSimulateLoanUseCase wires dependencies.
func NewSimulateLoanUseCase(
	simulator *service.Simulator,
	currency money.Currency,
	metrics *Metrics,
	logger *slog.Logger,
) *SimulateLoanUseCase {
	return &SimulateLoanUseCase{simulator: simulator, currency: currency, metrics: metrics, logger: logger}
}

// Execute prices the request. No state is read or written.
func (uc *SimulateLoanUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.SimulationResponse, error) {
	lr, err := toLoanRequest(req, uc.currency)
	if err != nil {
		return dto.SimulationResponse{}, err
	}

	res, err := uc.simulator.Simulate(lr)
	if err != nil {
		return dto.SimulationResponse{}, err
	}

	uc.metrics.simulated(ctx, res.Product.String())
	uc.logger.DebugContext(ctx, "loan simulated",
		"product", res.Product.String(),
		"term_months", res.TermMonths,
		"annual_rate", res.AnnualRate.String(),
		"monthly_payment", res.MonthlyPayment.String(),
	)
	return toSimulationResponse(res), nil
}
