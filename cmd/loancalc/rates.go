package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
)

type rateRow struct {
	Term int    `json:"term_months"`
	Rate string `json:"annual_rate"`
}

type productRates struct {
	Product      string    `json:"product"`
	MinPrincipal string    `json:"min_principal"`
	MaxPrincipal string    `json:"max_principal"`
	Rates        []rateRow `json:"rates"`
}

func newRatesCmd(a *app) *cobra.Command {
	var product string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "List the rate tables and principal bounds of each product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			products := vo.Products()
			if product != "" {
				p, err := vo.NewProduct(product)
				if err != nil {
					return err
				}
				products = []vo.Product{p}
			}

			catalog := make([]productRates, 0, len(products))
			for _, p := range products {
				pp := a.policy.For(p)
				pr := productRates{
					Product:      p.String(),
					MinPrincipal: amount(pp.Principal.Min),
					MaxPrincipal: amount(pp.Principal.Max),
				}
				for _, b := range a.rates.Table(p) {
					pr.Rates = append(pr.Rates, rateRow{Term: b.MaxTerm, Rate: b.Rate.StringFixed(2)})
				}
				catalog = append(catalog, pr)
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return printJSON(out, catalog)
			}
			return printRates(out, catalog)
		},
	}
	cmd.Flags().StringVarP(&product, "product", "p", "", "Only this product: PERSONAL, AUTO_NEW or AUTO_USED")
	return cmd
}

func printRates(w io.Writer, catalog []productRates) error {
	for i, pr := range catalog {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  principal %s - %s\n", pr.Product, pr.MinPrincipal, pr.MaxPrincipal)
		tw := newTable(w)
		fmt.Fprintln(tw, "Term\tRate\t")
		for _, r := range pr.Rates {
			fmt.Fprintf(tw, "%d\t%s%%\t\n", r.Term, r.Rate)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
