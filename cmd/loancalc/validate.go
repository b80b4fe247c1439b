package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/memory"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
)

var errNotEligible = errors.New("applicant is not eligible")

func newValidateCmd(a *app) *cobra.Command {
	var (
		lf   loanFlags
		asOf string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an application against the eligibility rules",
		Long:  "Check an application against the eligibility rules. Exits non-zero when the applicant is not eligible.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := lf.request(cmd)
			if err != nil {
				return err
			}
			clock, err := dateClock(asOf)
			if err != nil {
				return err
			}
			uc := usecase.NewValidateLoanUseCase(a.validator, &memory.EventRecorder{}, a.currency, clock, nil, observability.Discard())
			resp, err := uc.Execute(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				err = printJSON(out, resp)
			} else {
				err = printValidation(out, resp)
			}
			if err != nil {
				return err
			}
			if !resp.Eligible {
				return errNotEligible
			}
			return nil
		},
	}
	lf.register(cmd)
	cmd.Flags().StringVar(&asOf, "as-of", "", "Evaluation date YYYY-MM-DD (today when empty)")
	return cmd
}

func printValidation(w io.Writer, r dto.ValidationResponse) error {
	verdict := "ELIGIBLE"
	if !r.Eligible {
		verdict = "NOT ELIGIBLE"
	}
	if err := kv(w,
		[2]string{"Result", verdict},
		[2]string{"Annual rate", rate(r.AnnualRate)},
		[2]string{"Monthly payment", amount(r.MonthlyPayment)},
		[2]string{"Payment ratio", r.PaymentRatio.Shift(2).StringFixed(1) + "%"},
	); err != nil {
		return err
	}
	for _, group := range []struct {
		title  string
		issues []dto.IssueResponse
	}{
		{"Errors", r.Errors},
		{"Warnings", r.Warnings},
	} {
		if len(group.issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", group.title)
		for _, is := range group.issues {
			fmt.Fprintf(w, "  %-28s %s\n", is.Code, is.Message)
		}
	}
	return nil
}
