package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var personalApplicant = []string{
	"--type", "PERSONAL", "--amount", "50000", "--term", "24",
	"--income", "20000", "--age", "35", "--employment", "36",
}

func TestSimulateCmd(t *testing.T) {
	t.Run("prints the quote", func(t *testing.T) {
		out, err := run(t, "simulate", "--amount", "50000", "--term", "24")
		require.NoError(t, err)
		assert.Contains(t, out, "PERSONAL")
		assert.Contains(t, out, "14.50%")
		assert.Contains(t, out, "50000.00 MXN")
		assert.Contains(t, out, "2412.47 MXN")
		assert.Contains(t, out, "7899.33")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, "simulate", "--amount", "5000", "--term", "6", "--json")
		require.NoError(t, err)

		var resp dto.SimulationResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		testutil.AssertDecimal(t, "877.63", resp.MonthlyPayment)
		assert.Equal(t, "MXN", resp.Currency)
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		_, err := run(t, "simulate", "--amount", "lots", "--term", "24")
		testutil.AssertErrorContains(t, err, "--amount")
	})

	t.Run("rejects a principal outside the product bounds", func(t *testing.T) {
		_, err := run(t, "simulate", "--amount", "100", "--term", "24")
		require.Error(t, err)
	})
}

func TestValidateCmd(t *testing.T) {
	t.Run("eligible applicant", func(t *testing.T) {
		out, err := run(t, append([]string{"validate"}, personalApplicant...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "ELIGIBLE")
		assert.NotContains(t, out, "NOT ELIGIBLE")
		assert.Contains(t, out, "2412.47")
	})

	t.Run("ineligible applicant lists the failed rules", func(t *testing.T) {
		out, err := run(t, "validate",
			"--amount", "50000", "--term", "24",
			"--income", "5000", "--age", "16", "--employment", "36")
		assert.ErrorIs(t, err, errNotEligible)
		assert.Contains(t, out, "NOT ELIGIBLE")
		assert.Contains(t, out, "PAYMENT_RATIO_EXCEEDED")
		assert.Contains(t, out, "APPLICANT_UNDER_MIN_AGE")
	})

	t.Run("bad as-of date", func(t *testing.T) {
		_, err := run(t, append([]string{"validate", "--as-of", "10/03/2025"}, personalApplicant...)...)
		testutil.AssertErrorContains(t, err, "--as-of")
	})
}

func TestScheduleCmd(t *testing.T) {
	base := append([]string{"schedule", "--loan-id", "loan-1", "--start", "2025-01-31", "--as-of", "2025-03-10"}, personalApplicant...)

	t.Run("prints rows and totals", func(t *testing.T) {
		out, err := run(t, base...)
		require.NoError(t, err)
		assert.Contains(t, out, "loan-1")
		assert.Contains(t, out, "2025-02-28")
		assert.Contains(t, out, "1808.30")
		assert.Contains(t, out, "48191.70")
		assert.Contains(t, out, "OVERDUE")
		assert.Contains(t, out, "59163.24")
	})

	t.Run("json output", func(t *testing.T) {
		out, err := run(t, append(base, "--json")...)
		require.NoError(t, err)

		var resp dto.ScheduleResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		require.Len(t, resp.Payments, 24)
		assert.Equal(t, "2025-03-10", resp.AsOf)
		testutil.AssertDecimal(t, "2509.14", resp.Payments[0].Total)
		testutil.AssertDecimal(t, "0", resp.Payments[23].RemainingBalance)
	})

	t.Run("rate override", func(t *testing.T) {
		out, err := run(t, append(base, "--rate", "0", "--json")...)
		require.NoError(t, err)

		var resp dto.ScheduleResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		testutil.AssertDecimal(t, "2083.33", resp.MonthlyPayment)
	})

	t.Run("writes exports", func(t *testing.T) {
		dir := t.TempDir()
		xlsx := filepath.Join(dir, "plan.xlsx")
		pdf := filepath.Join(dir, "plan.pdf")

		_, err := run(t, append(base, "--xlsx", xlsx, "--pdf", pdf)...)
		require.NoError(t, err)

		data, err := os.ReadFile(xlsx)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")

		data, err = os.ReadFile(pdf)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("ineligible applicant gets no schedule", func(t *testing.T) {
		out, err := run(t, "schedule", "--amount", "50000", "--term", "24", "--income", "5000", "--age", "35", "--employment", "36")
		require.Error(t, err)
		assert.Empty(t, out)
	})
}

func TestRatesCmd(t *testing.T) {
	t.Run("single product", func(t *testing.T) {
		out, err := run(t, "rates", "--product", "auto_new")
		require.NoError(t, err)
		assert.Contains(t, out, "AUTO_NEW")
		assert.Contains(t, out, "10000.00")
		assert.Contains(t, out, "8.50%")
		assert.NotContains(t, out, "PERSONAL")
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := run(t, "rates", "--product", "BOAT")
		require.Error(t, err)
	})

	t.Run("policy file overrides the table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[personal]
min_principal = "1000"

[[personal.rates]]
term = 24
rate = "20.00"
`), 0o600))

		out, err := run(t, "rates", "--policy", path, "--product", "PERSONAL", "--json")
		require.NoError(t, err)

		var catalog []productRates
		require.NoError(t, json.Unmarshal([]byte(out), &catalog))
		require.Len(t, catalog, 1)
		assert.Equal(t, "1000.00", catalog[0].MinPrincipal)
		assert.Equal(t, []rateRow{{Term: 24, Rate: "20.00"}}, catalog[0].Rates)
	})

	t.Run("missing policy file", func(t *testing.T) {
		_, err := run(t, "rates", "--policy", filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})
}

func TestPriced(t *testing.T) {
	t.Run("tags the currency", func(t *testing.T) {
		assert.Equal(t, "877.63 USD", priced(testutil.Dec("877.625"), "USD"))
	})

	t.Run("unknown code prints the bare amount", func(t *testing.T) {
		assert.Equal(t, "877.63", priced(testutil.Dec("877.63"), "dollars"))
	})
}
