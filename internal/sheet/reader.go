package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"timesheet-consolidator/internal/models"
)

var (
	ErrNoWorksheet    = errors.New("no worksheet found")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrMissingColumns = errors.New("missing required columns")
)

const maxXLSRows = 100000

type column int

const (
	colName column = iota
	colDateTime
	colDate
	colTime
	colStatus
)

var headerAliases = map[string]column{
	"name":          colName,
	"employee":      colName,
	"employee name": colName,
	"date/time":     colDateTime,
	"datetime":      colDateTime,
	"date time":     colDateTime,
	"timestamp":     colDateTime,
	"date":          colDate,
	"time":          colTime,
	"status":        colStatus,
	"state":         colStatus,
}

// ReadFile loads attendance rows from a .csv, .xls or .xlsx file.
func ReadFile(path string) ([]models.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadRows(f, filepath.Base(path))
}

// ReadRows picks a decoder from the filename extension and maps the first
// worksheet onto attendance rows.
func ReadRows(r io.Reader, filename string) ([]models.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var table [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		table, err = readCSV(data)
	case ".xls":
		table, err = readXLS(data)
	default:
		table, err = readXLSX(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return mapRows(table)
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}

	rows := workbook.ReadAllCells(maxXLSRows)
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoWorksheet
	}

	// Raw values keep date cells as serial numbers instead of whatever
	// display format the workbook author picked.
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorksheet
	}
	return rows, nil
}

// mapRows locates the header row and converts every following line.
// Blank lines are skipped; row numbers are 1-based like the sheet itself.
func mapRows(table [][]string) ([]models.Row, error) {
	headerAt, columns := -1, map[column]int{}
	for i, line := range table {
		if found := mapHeader(line); len(found) > 0 {
			headerAt, columns = i, found
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrMissingColumns
	}

	_, hasName := columns[colName]
	_, hasStatus := columns[colStatus]
	_, hasCombined := columns[colDateTime]
	_, hasDate := columns[colDate]
	_, hasTime := columns[colTime]
	if !hasName || !hasStatus || !(hasCombined || (hasDate && hasTime)) {
		return nil, fmt.Errorf("%w: need Name, Status and Date/Time or Date and Time", ErrMissingColumns)
	}

	rows := make([]models.Row, 0, len(table)-headerAt-1)
	for i := headerAt + 1; i < len(table); i++ {
		line := table[i]
		if isBlank(line) {
			continue
		}

		cell := func(c column) string {
			idx, ok := columns[c]
			if !ok || idx >= len(line) {
				return ""
			}
			return strings.TrimSpace(line[idx])
		}

		rows = append(rows, models.Row{
			Number:   i + 1,
			Name:     cell(colName),
			DateTime: serialToText(cell(colDateTime), "02/01/2006 15:04:05"),
			Date:     serialToText(cell(colDate), models.DateLayout),
			Time:     serialToText(cell(colTime), "15:04:05"),
			Status:   cell(colStatus),
		})
	}
	return rows, nil
}

func mapHeader(line []string) map[column]int {
	found := make(map[column]int)
	for i, raw := range line {
		key := strings.ToLower(strings.Join(strings.Fields(raw), " "))
		if c, ok := headerAliases[key]; ok {
			if _, dup := found[c]; !dup {
				found[c] = i
			}
		}
	}
	if _, ok := found[colName]; !ok {
		return nil
	}
	return found
}

// serialToText renders an Excel date serial in layout. Anything that is not
// a plain number is returned untouched.
func serialToText(value, layout string) string {
	if value == "" || strings.ContainsAny(value, "/:-") {
		return value
	}
	serial, err := strconv.ParseFloat(value, 64)
	if err != nil || serial < 0 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	// Serials carry float noise; snap to the nearest second.
	return t.Round(time.Second).Format(layout)
}

func isBlank(line []string) bool {
	for _, v := range line {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
