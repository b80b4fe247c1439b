package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
)

var pdfColumnWidths = []float64{12, 30, 34, 34, 30, 34, 38, 30}

// WritePDF writes s as a landscape A4 document: loan terms, then the
// payment table with the header repeated on every page.
func WritePDF(w io.Writer, s dto.ScheduleResponse) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Payment schedule "+s.LoanID, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			tableHeader(pdf)
		}
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Payment schedule", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	sum := s.Summary
	for _, line := range []string{
		fmt.Sprintf("Loan %s    Currency %s    Start %s    As of %s", s.LoanID, s.Currency, s.StartDate, s.AsOf),
		fmt.Sprintf("Principal %s    Rate %s%%    Term %d months    Monthly payment %s",
			s.Principal.StringFixed(2), s.AnnualRate.StringFixed(2), s.TermMonths, s.MonthlyPayment.StringFixed(2)),
		fmt.Sprintf("Interest %s    Tax %s    Total %s    Remaining %s",
			sum.TotalInterest.StringFixed(2), sum.TotalTax.StringFixed(2),
			sum.TotalAmount.StringFixed(2), sum.AmountRemaining.StringFixed(2)),
	} {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	tableHeader(pdf)
	pdf.SetFont("Arial", "", 9)
	for i, p := range s.Payments {
		fill := i%2 == 1
		pdf.SetFillColor(242, 242, 242)
		for c, text := range rowCells(p) {
			align := "R"
			if c == 1 || c == 7 {
				align = "C"
			}
			pdf.CellFormat(pdfColumnWidths[c], 6, text, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(68, 114, 196)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range scheduleColumns {
		pdf.CellFormat(pdfColumnWidths[i], 7, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 9)
}
