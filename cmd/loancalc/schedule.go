package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/export"
	"github.com/bibbank/bib/services/origination-service/internal/infrastructure/memory"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
)

func newScheduleCmd(a *app) *cobra.Command {
	var (
		lf        loanFlags
		startDate string
		asOf      string
		rateFlag  string
		loanID    string
		xlsxPath  string
		pdfPath   string
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Validate an application and print its amortization schedule",
		Example: "  loancalc schedule --amount 50000 --term 24 --income 20000 --age 35 --employment 36 --start 2025-01-31\n" +
			"  loancalc schedule --amount 50000 --term 24 --income 20000 --age 35 --employment 36 --xlsx plan.xlsx",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := lf.request(cmd)
			if err != nil {
				return err
			}
			clock, err := dateClock(asOf)
			if err != nil {
				return err
			}
			confirm := dto.ConfirmRequest{Request: req, LoanID: loanID, StartDate: startDate}
			if rateFlag != "" {
				r, err := parseDecimalFlag("rate", rateFlag)
				if err != nil {
					return err
				}
				confirm.AnnualRate = &r
			}

			uc := usecase.NewConfirmLoanUseCase(a.policy, a.validator, memory.NewScheduleRepo(), &memory.EventRecorder{},
				nil, a.currency, clock, nil, observability.Discard())
			resp, err := uc.Execute(cmd.Context(), confirm)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := writeFile(xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, resp) }); err != nil {
					return err
				}
			}
			if pdfPath != "" {
				if err := writeFile(pdfPath, func(w io.Writer) error { return export.WritePDF(w, resp) }); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, resp)
			}
			return printSchedule(out, resp)
		},
	}
	lf.register(cmd)
	fs := cmd.Flags()
	fs.StringVar(&startDate, "start", "", "Origination date YYYY-MM-DD (today when empty)")
	fs.StringVar(&asOf, "as-of", "", "Date statuses are derived for, YYYY-MM-DD (today when empty)")
	fs.StringVar(&rateFlag, "rate", "", "Annual rate override in percent")
	fs.StringVar(&loanID, "loan-id", "", "Loan identifier (generated when empty)")
	fs.StringVar(&xlsxPath, "xlsx", "", "Also write the schedule to this Excel file")
	fs.StringVar(&pdfPath, "pdf", "", "Also write the schedule to this PDF file")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSchedule(w io.Writer, s dto.ScheduleResponse) error {
	if err := kv(w,
		[2]string{"Loan", s.LoanID},
		[2]string{"Principal", priced(s.Principal, s.Currency)},
		[2]string{"Annual rate", rate(s.AnnualRate)},
		[2]string{"Term", fmt.Sprintf("%d months from %s", s.TermMonths, s.StartDate)},
		[2]string{"Monthly payment", priced(s.MonthlyPayment, s.Currency)},
	); err != nil {
		return err
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "#\tDue\tPrincipal\tInterest\tTax\tTotal\tBalance\tStatus\t")
	for _, p := range s.Payments {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.PaymentNumber, p.DueDate,
			amount(p.Principal), amount(p.Interest), amount(p.Tax), amount(p.Total),
			amount(p.RemainingBalance), p.Status)
	}
	sum := s.Summary
	fmt.Fprintf(tw, "\tTotal\t%s\t%s\t%s\t%s\t\t\t\n",
		amount(sum.TotalPrincipal), amount(sum.TotalInterest), amount(sum.TotalTax), amount(sum.TotalAmount))
	if err := tw.Flush(); err != nil {
		return err
	}

	if sum.NextPaymentDate != "" {
		fmt.Fprintf(w, "\nNext payment %s on %s (%d overdue)\n",
			amount(sum.NextPaymentAmount), sum.NextPaymentDate, sum.PaymentsOverdue)
	}
	return nil
}
