package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
)

func newSimulateCmd(a *app) *cobra.Command {
	var lf loanFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Quote the monthly payment of a loan",
		Example: "  loancalc simulate --type PERSONAL --amount 50000 --term 24\n" +
			"  loancalc simulate --type AUTO --vehicle NEW --amount 300000 --term 48",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := lf.request(cmd)
			if err != nil {
				return err
			}
			uc := usecase.NewSimulateLoanUseCase(a.simulator, a.currency, nil, observability.Discard())
			resp, err := uc.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, resp)
			}
			return kv(out,
				[2]string{"Product", resp.Product},
				[2]string{"Principal", priced(resp.Principal, resp.Currency)},
				[2]string{"Term", strconv.Itoa(resp.TermMonths) + " months"},
				[2]string{"Annual rate", rate(resp.AnnualRate)},
				[2]string{"Monthly payment", priced(resp.MonthlyPayment, resp.Currency)},
				[2]string{"Total payment", priced(resp.TotalPayment, resp.Currency)},
				[2]string{"Total interest", priced(resp.TotalInterest, resp.Currency)},
			)
		},
	}
	lf.register(cmd)
	return cmd
}
