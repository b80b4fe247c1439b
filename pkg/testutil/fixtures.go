package testutil

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deterministic identifiers and instants for tests.
var (
	LoanID     = "loan-00000000-0000-0000-0000-000000000001"
	CustomerID = "cust-00000000-0000-0000-0000-000000000042"

	// StartDate is the origination date used across schedule tests.
	StartDate = time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
)

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
