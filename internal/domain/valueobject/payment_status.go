package valueobject

import "fmt"

// PaymentStatus is the derived state of one scheduled payment.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusPending = "PENDING"
	paymentStatusPaid    = "PAID"
	paymentStatusOverdue = "OVERDUE"
)

var (
	PaymentStatusPending = PaymentStatus{value: paymentStatusPending}
	PaymentStatusPaid    = PaymentStatus{value: paymentStatusPaid}
	PaymentStatusOverdue = PaymentStatus{value: paymentStatusOverdue}
)

var validPaymentStatuses = map[string]PaymentStatus{
	paymentStatusPending: PaymentStatusPending,
	paymentStatusPaid:    PaymentStatusPaid,
	paymentStatusOverdue: PaymentStatusOverdue,
}

// NewPaymentStatus creates a PaymentStatus from a raw string.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	v, ok := validPaymentStatuses[s]
	if !ok {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

func (s PaymentStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s PaymentStatus) IsZero() bool { return s.value == "" }
