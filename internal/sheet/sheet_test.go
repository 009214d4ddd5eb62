package sheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"timesheet-consolidator/internal/models"
)

func TestReadRows_CSV(t *testing.T) {
	data := "\xef\xbb\xbfDepartment,Name,Date/Time,Status\n" +
		"Ops,Somchai,04/08/2025 18:12:28,C/In\n" +
		",,,\n" +
		"Ops,Somchai,05/08/2025 07:42:31,C/Out\n"

	rows, err := ReadRows(strings.NewReader(data), "attendance.csv")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, models.Row{Number: 2, Name: "Somchai", DateTime: "04/08/2025 18:12:28", Status: "C/In"}, rows[0])
	assert.Equal(t, 4, rows[1].Number)
}

func TestReadRows_SplitColumnsAfterTitle(t *testing.T) {
	data := "Attendance export\n" +
		"Employee Name,Date,Time,State\n" +
		"Malee,04/08/2025,08:00:00,CheckIn\n"

	rows, err := ReadRows(strings.NewReader(data), "export.CSV")
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, models.Row{Number: 3, Name: "Malee", Date: "04/08/2025", Time: "08:00:00", Status: "CheckIn"}, rows[0])
}

func TestReadRows_MissingColumns(t *testing.T) {
	_, err := ReadRows(strings.NewReader("Name,Date,Status\nA,04/08/2025,In\n"), "a.csv")

	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadRows_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Name", "Date/Time", "Status"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Somchai", "04/08/2025 18:12:28", "C/In"}))
	// a real date cell is stored as a serial number
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Somchai", time.Date(2025, 8, 5, 7, 42, 31, 0, time.UTC), "C/Out"}))
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadRows(&buf, "attendance.xlsx")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "04/08/2025 18:12:28", rows[0].DateTime)
	assert.Equal(t, "05/08/2025 07:42:31", rows[1].DateTime)
	assert.Equal(t, "C/Out", rows[1].Status)
}

func TestSerialToText(t *testing.T) {
	assert.Equal(t, "18:00:00", serialToText("0.75", "15:04:05"))
	assert.Equal(t, "04/08/2025", serialToText("04/08/2025", models.DateLayout))
	assert.Equal(t, "abc", serialToText("abc", models.DateLayout))
	assert.Equal(t, "", serialToText("", models.DateLayout))
}

func sampleExport() Export {
	day := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	shifts := []*models.ConsolidatedShift{
		{
			EmployeeName:  "Somchai",
			ShiftDate:     day,
			StartTime:     models.NewClock(8, 0, 0),
			EndTime:       models.NewClock(17, 37, 12),
			ShiftType:     models.DayShift,
			TotalHours:    decimal.RequireFromString("9.62"),
			RegularHours:  decimal.RequireFromString("9"),
			OvertimeHours: decimal.RequireFromString("0.62"),
			EntryCount:    2,
		},
		{
			EmployeeName:  "Somchai",
			ShiftDate:     day.AddDate(0, 0, 1),
			StartTime:     models.NewClock(8, 0, 0),
			EndTime:       models.NewClock(16, 0, 0),
			ShiftType:     models.DayShift,
			TotalHours:    decimal.NewFromInt(8),
			RegularHours:  decimal.NewFromInt(8),
			OvertimeHours: decimal.Zero,
			EntryCount:    1,
			Anomaly:       models.AnomalyMissingCheckOut,
		},
	}
	summary := &models.MonthlyOvertimeSummary{EmployeeName: "Somchai", Year: 2025, Month: 8, TotalHours: decimal.Zero, TotalOvertimeHours: decimal.Zero}
	for _, s := range shifts {
		summary.Add(s)
	}

	report := models.NewReport(5)
	report.Anomalies.Add(models.Issue{Kind: models.IssueMissingPair, EmployeeName: "Somchai", Date: day.AddDate(0, 0, 1), Detail: "missing_check_out"})
	report.Rejected.Add(models.Issue{Kind: models.IssueParseFailure, Row: 7, Detail: "row 7: invalid date"})

	return Export{Shifts: shifts, Summaries: []*models.MonthlyOvertimeSummary{summary}, Report: report}
}

func TestExport_WriteCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, sampleExport().WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Name,Date,Start Time,End Time,Shift Time,Total Hours"))
	assert.Equal(t, "Somchai,04/08/2025,08:00:00,17:37:12,Day Shift,9.62,9.00,00:37:12,0.62,2,,No,No", lines[1])
	assert.Contains(t, lines[2], "missing_check_out")
}

func TestExport_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleExport().WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ShiftsSheet, SummarySheet, IssuesSheet}, f.GetSheetList())

	name, err := f.GetCellValue(ShiftsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Somchai", name)
	overtime, err := f.GetCellValue(ShiftsSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "00:37:12", overtime)

	line, err := f.GetCellValue(SummarySheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "Month Total: 00:37:12 | OT Days: 1", line)

	issues, err := f.GetRows(IssuesSheet)
	require.NoError(t, err)
	assert.Len(t, issues, 3)
}
