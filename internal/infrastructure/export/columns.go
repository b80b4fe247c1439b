// Package export renders payment schedules as spreadsheets and printable
// documents for branch staff.
package export

import (
	"strconv"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
)

var scheduleColumns = []string{
	"#", "Due date", "Principal", "Interest", "Tax", "Payment", "Balance", "Status",
}

// rowCells returns the display text of one payment in scheduleColumns order.
func rowCells(p dto.PaymentResponse) []string {
	return []string{
		strconv.Itoa(p.PaymentNumber),
		p.DueDate,
		p.Principal.StringFixed(2),
		p.Interest.StringFixed(2),
		p.Tax.StringFixed(2),
		p.Total.StringFixed(2),
		p.RemainingBalance.StringFixed(2),
		p.Status,
	}
}
