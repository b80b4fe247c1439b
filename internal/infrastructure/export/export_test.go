package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

func scheduleFixture(t *testing.T, term int) dto.ScheduleResponse {
	t.Helper()
	s, err := model.NewPaymentSchedule(model.ScheduleParams{
		ID:          "sched-1",
		LoanID:      testutil.LoanID,
		Currency:    money.MXN,
		Principal:   testutil.Dec("50000"),
		AnnualRate:  testutil.Dec("14.5"),
		TaxRate:     testutil.Dec("16"),
		TermMonths:  term,
		StartDate:   testutil.StartDate,
		GeneratedAt: testutil.StartDate,
	})
	require.NoError(t, err)
	asOf := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	return usecase.ToScheduleResponse(s.AsOf(asOf), asOf)
}

func TestRowCells(t *testing.T) {
	s := scheduleFixture(t, 24)
	assert.Equal(t,
		[]string{"1", "2025-02-28", "1808.30", "604.17", "96.67", "2509.14", "48191.70", "OVERDUE"},
		rowCells(s.Payments[0]))
}

func TestWriteXLSX(t *testing.T) {
	s := scheduleFixture(t, 24)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{scheduleSheet, summarySheet}, f.GetSheetList())

	rows, err := f.GetRows(scheduleSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 25)
	assert.Equal(t, scheduleColumns, rows[0])
	assert.Equal(t, []string{"1", "2025-02-28", "1808.3", "604.17", "96.67", "2509.14", "48191.7", "OVERDUE"}, rows[1])
	assert.Equal(t, "24", rows[24][0])
	assert.Equal(t, "0", rows[24][6])

	total, err := f.GetCellValue(summarySheet, "B12", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "59163.24", total)
}

func TestWritePDF(t *testing.T) {
	for _, term := range []int{6, 120} {
		s := scheduleFixture(t, term)

		var buf bytes.Buffer
		require.NoError(t, WritePDF(&buf, s))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "term %d", term)
		assert.Contains(t, buf.String(), "%%EOF")
	}
}
