package policy

import "github.com/shopspring/decimal"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func b(term int, rate string) RateBucket { return RateBucket{MaxTerm: term, Rate: d(rate)} }

// Default returns the product catalog in force for branch origination.
func Default() LendingPolicy {
	auto := Bounds{Min: d("10000"), Max: d("2000000")}
	return LendingPolicy{
		Personal: ProductPolicy{
			Rates:     RateTable{b(6, "18.00"), b(12, "16.50"), b(18, "15.50"), b(24, "14.50"), b(36, "13.50"), b(48, "13.00"), b(60, "12.50")},
			Principal: Bounds{Min: d("5000"), Max: d("500000")},
		},
		AutoNew: ProductPolicy{
			Rates:     RateTable{b(12, "11.00"), b(24, "10.50"), b(36, "10.00"), b(48, "9.50"), b(60, "9.00"), b(72, "8.50")},
			Principal: auto,
		},
		AutoUsed: ProductPolicy{
			Rates:     RateTable{b(12, "13.00"), b(24, "12.50"), b(36, "12.00"), b(48, "11.50"), b(60, "11.00"), b(72, "10.50")},
			Principal: auto,
		},

		DefaultRate: d("14.50"),
		TaxRate:     d("16"),
		Currency:    "MXN",

		MaxPaymentRatio:     d("0.40"),
		WarnPaymentRatio:    d("0.35"),
		MinDownPaymentRatio: d("0.10"),

		MinAge:              18,
		MaxAgeAtMaturity:    75,
		MinEmploymentMonths: 6,

		MinCreditScore:  600,
		WarnCreditScore: 650,

		UsedVehicleWarnAge: 5,
		UsedVehicleMaxAge:  10,
	}
}
