package valueobject

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// LoanType – immutable value object
// ---------------------------------------------------------------------------

// LoanType is the product family requested at the branch.
type LoanType struct {
	value string
}

const (
	loanTypePersonal = "PERSONAL"
	loanTypeAuto     = "AUTO"
)

var (
	LoanTypePersonal = LoanType{value: loanTypePersonal}
	LoanTypeAuto     = LoanType{value: loanTypeAuto}
)

// NewLoanType parses a loan type, case-insensitively.
func NewLoanType(s string) (LoanType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case loanTypePersonal:
		return LoanTypePersonal, nil
	case loanTypeAuto:
		return LoanTypeAuto, nil
	}
	return LoanType{}, fmt.Errorf("invalid loan type: %q", s)
}

func (t LoanType) String() string { return t.value }

// IsZero returns true if the loan type has not been initialised.
func (t LoanType) IsZero() bool { return t.value == "" }

// IsAuto reports whether the loan finances a vehicle.
func (t LoanType) IsAuto() bool { return t.value == loanTypeAuto }

// ---------------------------------------------------------------------------
// VehicleType – immutable value object
// ---------------------------------------------------------------------------

// VehicleType distinguishes new from used vehicles for AUTO loans.
type VehicleType struct {
	value string
}

const (
	vehicleTypeNew  = "NEW"
	vehicleTypeUsed = "USED"
)

var (
	VehicleTypeNew  = VehicleType{value: vehicleTypeNew}
	VehicleTypeUsed = VehicleType{value: vehicleTypeUsed}
)

// NewVehicleType parses a vehicle type. The empty string yields the zero
// value, meaning "not supplied".
func NewVehicleType(s string) (VehicleType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return VehicleType{}, nil
	case vehicleTypeNew:
		return VehicleTypeNew, nil
	case vehicleTypeUsed:
		return VehicleTypeUsed, nil
	}
	return VehicleType{}, fmt.Errorf("invalid vehicle type: %q", s)
}

func (v VehicleType) String() string { return v.value }

// IsZero returns true if no vehicle type was supplied.
func (v VehicleType) IsZero() bool { return v.value == "" }

// ---------------------------------------------------------------------------
// Product – the rate-table key
// ---------------------------------------------------------------------------

// Product is the closed set of priced products: {PERSONAL} ∪ {AUTO} × {NEW, USED}.
type Product struct {
	value string
}

const (
	productPersonal = "PERSONAL"
	productAutoNew  = "AUTO_NEW"
	productAutoUsed = "AUTO_USED"
)

var (
	ProductPersonal = Product{value: productPersonal}
	ProductAutoNew  = Product{value: productAutoNew}
	ProductAutoUsed = Product{value: productAutoUsed}
)

// Products lists every product in catalog order.
func Products() []Product {
	return []Product{ProductPersonal, ProductAutoNew, ProductAutoUsed}
}

// NewProduct parses a product key such as "AUTO_NEW".
func NewProduct(s string) (Product, error) {
	for _, p := range Products() {
		if strings.EqualFold(strings.TrimSpace(s), p.value) {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("invalid product: %q", s)
}

// ProductFor maps a loan type and optional vehicle type onto a product.
// An AUTO loan without a vehicle type is priced as used.
func ProductFor(loanType LoanType, vehicle VehicleType) Product {
	if !loanType.IsAuto() {
		return ProductPersonal
	}
	if vehicle == VehicleTypeNew {
		return ProductAutoNew
	}
	return ProductAutoUsed
}

func (p Product) String() string { return p.value }

// IsZero returns true if the product has not been initialised.
func (p Product) IsZero() bool { return p.value == "" }

// IsAuto reports whether the product is a vehicle loan.
func (p Product) IsAuto() bool { return p == ProductAutoNew || p == ProductAutoUsed }
