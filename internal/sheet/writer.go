package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"timesheet-consolidator/internal/models"
	"timesheet-consolidator/internal/shift"
)

const (
	ShiftsSheet  = "Shifts"
	SummarySheet = "Monthly Summary"
	IssuesSheet  = "Issues"
)

var shiftHeader = []string{
	"Name", "Date", "Start Time", "End Time", "Shift Time",
	"Total Hours", "Regular Hours", "Overtime Hours", "Overtime (h)",
	"Entry Count", "Anomaly", "Bridged", "Rest Day",
}

var summaryHeader = []string{
	"Name", "Month", "Shifts", "Total Hours", "Overtime Hours", "OT Days", "Rest Day Shifts", "Summary",
}

var issueHeader = []string{"Kind", "Row", "Name", "Date", "Detail"}

// Export is everything written out for one processed file.
type Export struct {
	Shifts    []*models.ConsolidatedShift
	Summaries []*models.MonthlyOvertimeSummary
	Report    *models.Report
}

func shiftRecord(s *models.ConsolidatedShift) []string {
	return []string{
		s.EmployeeName,
		s.ShiftDate.Format(models.DateLayout),
		s.StartTime.String(),
		s.EndTime.String(),
		string(s.ShiftType),
		s.TotalHours.StringFixed(2),
		s.RegularHours.StringFixed(2),
		shift.FormatHours(s.OvertimeHours),
		s.OvertimeHours.StringFixed(2),
		strconv.Itoa(s.EntryCount),
		string(s.Anomaly),
		yesNo(s.Bridged),
		yesNo(s.RestDay),
	}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// WriteCSV writes the consolidated shifts as CSV.
func (e Export) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(shiftHeader); err != nil {
		return err
	}
	for _, s := range e.Shifts {
		if err := writer.Write(shiftRecord(s)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a workbook with the shifts, the monthly rollup and the
// issue samples on separate sheets.
func (e Export) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	anomalyStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	shiftRows := make([][]any, 0, len(e.Shifts))
	for _, s := range e.Shifts {
		rec := shiftRecord(s)
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		// numeric columns stay numeric in the workbook
		row[5] = s.TotalHours.InexactFloat64()
		row[6] = s.RegularHours.InexactFloat64()
		row[8] = s.OvertimeHours.InexactFloat64()
		row[9] = s.EntryCount
		shiftRows = append(shiftRows, row)
	}
	if err := writeTable(f, ShiftsSheet, shiftHeader, shiftRows, headerStyle); err != nil {
		return err
	}
	for i, s := range e.Shifts {
		if !s.IsEstimated() {
			continue
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		end, _ := excelize.CoordinatesToCellName(len(shiftHeader), i+2)
		if err := f.SetCellStyle(ShiftsSheet, start, end, anomalyStyle); err != nil {
			return err
		}
	}

	summaryRows := make([][]any, 0, len(e.Summaries))
	for _, m := range e.Summaries {
		summaryRows = append(summaryRows, []any{
			m.EmployeeName,
			m.Label(),
			m.ShiftCount,
			m.TotalHours.InexactFloat64(),
			shift.FormatHours(m.TotalOvertimeHours),
			m.OvertimeDays,
			m.RestDayShifts,
			shift.SummaryLine(m),
		})
	}
	if err := writeTable(f, SummarySheet, summaryHeader, summaryRows, headerStyle); err != nil {
		return err
	}

	if e.Report != nil {
		var issueRows [][]any
		for _, log := range []models.IssueLog{e.Report.Violations, e.Report.Unmatched, e.Report.Anomalies, e.Report.Rejected} {
			for _, issue := range log.Samples {
				date := ""
				if !issue.Date.IsZero() {
					date = issue.Date.Format(models.DateLayout)
				}
				issueRows = append(issueRows, []any{issue.Kind, issue.Row, issue.EmployeeName, date, issue.Detail})
			}
		}
		if err := writeTable(f, IssuesSheet, issueHeader, issueRows, headerStyle); err != nil {
			return err
		}
	}

	idx, err := f.GetSheetIndex(ShiftsSheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	return f.Write(w)
}

func writeTable(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 16)
}
