package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

// kv prints aligned "key  value" lines.
func kv(w io.Writer, pairs ...[2]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\n", p[0], p[1])
	}
	return tw.Flush()
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

// priced tags d with its currency code, falling back to the bare amount when
// the code is not ISO 4217.
func priced(d decimal.Decimal, code string) string {
	cur, err := money.NewCurrency(code)
	if err != nil {
		return amount(d)
	}
	return money.New(d, cur).RoundCents().String()
}

func rate(d decimal.Decimal) string { return d.StringFixed(2) + "%" }
