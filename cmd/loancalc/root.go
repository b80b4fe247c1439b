package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/config"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// app carries state shared by every subcommand.
type app struct {
	policyFile string
	asJSON     bool

	policy    policy.LendingPolicy
	currency  money.Currency
	rates     *service.RateResolver
	validator *service.EligibilityValidator
	simulator *service.Simulator
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "loancalc",
		Short:        "Loan origination calculator",
		Long:         "Simulate loans, check eligibility and print amortization schedules using the lending policy.",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.policyFile, "policy", "", "Lending policy TOML file (built-in policy when empty)")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		newSimulateCmd(a),
		newValidateCmd(a),
		newScheduleCmd(a),
		newRatesCmd(a),
	)
	return root
}

func (a *app) load() error {
	lp, err := config.LoadPolicy(a.policyFile)
	if err != nil {
		return err
	}
	currency, err := money.NewCurrency(lp.Currency)
	if err != nil {
		return fmt.Errorf("policy currency: %w", err)
	}
	a.policy = lp
	a.currency = currency
	a.rates = service.NewRateResolver(lp)
	a.validator = service.NewEligibilityValidator(lp, a.rates)
	a.simulator = service.NewSimulator(lp, a.rates)
	return nil
}

// loanFlags are the application fields shared by simulate, validate and
// schedule.
type loanFlags struct {
	loanType     string
	amount       string
	term         int
	income       string
	age          int
	employment   int
	creditScore  int
	vehicle      string
	vehiclePrice string
	downPayment  string
	vehicleYear  int
	customerID   string
	currency     string
}

func (f *loanFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.loanType, "type", "t", "PERSONAL", "Loan type: PERSONAL or AUTO")
	fs.StringVarP(&f.amount, "amount", "a", "", "Requested principal")
	fs.IntVarP(&f.term, "term", "n", 0, "Term in months")
	fs.StringVar(&f.income, "income", "", "Net monthly income")
	fs.IntVar(&f.age, "age", 0, "Applicant age in years")
	fs.IntVar(&f.employment, "employment", 0, "Months in current employment")
	fs.IntVar(&f.creditScore, "credit-score", 0, "Bureau score (omitted when not set)")
	fs.StringVar(&f.vehicle, "vehicle", "", "Vehicle type for AUTO loans: NEW or USED")
	fs.StringVar(&f.vehiclePrice, "vehicle-price", "", "Vehicle price for AUTO loans")
	fs.StringVar(&f.downPayment, "down-payment", "", "Down payment for AUTO loans")
	fs.IntVar(&f.vehicleYear, "vehicle-year", 0, "Model year of a used vehicle")
	fs.StringVar(&f.customerID, "customer", "", "Customer identifier")
	fs.StringVar(&f.currency, "currency", "", "ISO 4217 currency (policy currency when empty)")
}

func (f *loanFlags) request(cmd *cobra.Command) (dto.LoanRequest, error) {
	req := dto.LoanRequest{
		LoanType:         f.loanType,
		TermMonths:       f.term,
		ApplicantAge:     f.age,
		EmploymentMonths: f.employment,
		VehicleType:      f.vehicle,
		VehicleYear:      f.vehicleYear,
		CustomerID:       f.customerID,
		Currency:         f.currency,
	}
	for _, d := range []struct {
		flag string
		src  string
		dst  *decimal.Decimal
	}{
		{"amount", f.amount, &req.Amount},
		{"income", f.income, &req.MonthlyIncome},
		{"vehicle-price", f.vehiclePrice, &req.VehiclePrice},
		{"down-payment", f.downPayment, &req.DownPayment},
	} {
		v, err := parseDecimalFlag(d.flag, d.src)
		if err != nil {
			return dto.LoanRequest{}, err
		}
		*d.dst = v
	}
	if cmd.Flags().Changed("credit-score") {
		score := f.creditScore
		req.CreditScore = &score
	}
	return req, nil
}

func parseDecimalFlag(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, s)
	}
	return d, nil
}

// dateClock returns a clock pinned to the given YYYY-MM-DD day, or the
// wall clock when s is empty.
func dateClock(s string) (func() time.Time, error) {
	if s == "" {
		return time.Now, nil
	}
	day, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("--as-of: %q is not a YYYY-MM-DD date", s)
	}
	return func() time.Time { return day }, nil
}
