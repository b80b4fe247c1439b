package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
)

const (
	scheduleSheet = "Schedule"
	summarySheet  = "Summary"
	amountFormat  = "#,##0.00"
)

// WriteXLSX writes s as a workbook with a row-per-payment sheet and a
// summary sheet. Amounts are numeric cells so the sheet can be summed.
func WriteXLSX(w io.Writer, s dto.ScheduleResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeScheduleSheet(f, s); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, s); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeScheduleSheet(f *excelize.File, s dto.ScheduleResponse) error {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(amountFormat)})
	if err != nil {
		return fmt.Errorf("create amount style: %w", err)
	}

	for i, col := range scheduleColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(scheduleSheet, cell, col); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(scheduleColumns), 1)
	if err := f.SetCellStyle(scheduleSheet, "A1", last, header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, p := range s.Payments {
		row := i + 2
		values := []any{
			p.PaymentNumber,
			p.DueDate,
			amountValue(p.Principal),
			amountValue(p.Interest),
			amountValue(p.Tax),
			amountValue(p.Total),
			amountValue(p.RemainingBalance),
			p.Status,
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(scheduleSheet, start, &values); err != nil {
			return fmt.Errorf("write payment %d: %w", p.PaymentNumber, err)
		}
		from, _ := excelize.CoordinatesToCellName(3, row)
		to, _ := excelize.CoordinatesToCellName(7, row)
		if err := f.SetCellStyle(scheduleSheet, from, to, amount); err != nil {
			return fmt.Errorf("style payment %d: %w", p.PaymentNumber, err)
		}
	}

	if err := f.SetPanes(scheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if err := f.SetColWidth(scheduleSheet, "A", "A", 6); err != nil {
		return err
	}
	return f.SetColWidth(scheduleSheet, "B", "H", 14)
}

func writeSummarySheet(f *excelize.File, s dto.ScheduleResponse) error {
	sum := s.Summary
	rows := [][]any{
		{"Loan", s.LoanID},
		{"Currency", s.Currency},
		{"Principal", amountValue(s.Principal)},
		{"Annual rate (%)", amountValue(s.AnnualRate)},
		{"Tax rate (%)", amountValue(s.TaxRate)},
		{"Term (months)", s.TermMonths},
		{"Monthly payment", amountValue(s.MonthlyPayment)},
		{"Start date", s.StartDate},
		{"As of", s.AsOf},
		{"Total interest", amountValue(sum.TotalInterest)},
		{"Total tax", amountValue(sum.TotalTax)},
		{"Total amount", amountValue(sum.TotalAmount)},
		{"Amount paid", amountValue(sum.AmountPaid)},
		{"Amount remaining", amountValue(sum.AmountRemaining)},
		{"Payments made", sum.PaymentsMade},
		{"Payments overdue", sum.PaymentsOverdue},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", 20)
}

// amountValue converts an already rounded amount for a numeric cell.
func amountValue(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func ptr[T any](v T) *T { return &v }
