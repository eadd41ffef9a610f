package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-admitdoc/internal/dateutil"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// rosterRow is one patient line of a roster spreadsheet.
type rosterRow struct {
	line      int // 1-based spreadsheet row, for messages
	name      string
	birthDate string
	admission string
}

// rosterColumns locates the patient fields in a row.
type rosterColumns struct {
	name, birthDate, admission int
}

// positionalColumns is used when the sheet has no header row.
var positionalColumns = rosterColumns{name: 0, birthDate: 1, admission: 2}

// headerAliases maps normalized header labels to fields.
var headerAliases = map[string]string{
	"nome":               "name",
	"name":               "name",
	"paciente":           "name",
	"nome do paciente":   "name",
	"data de nascimento": "birthDate",
	"nascimento":         "birthDate",
	"birth date":         "birthDate",
	"birthdate":          "birthDate",
	"tipo":               "admission",
	"tipo de internacao": "admission",
	"internacao":         "admission",
	"type":               "admission",
	"admission":          "admission",
}

// readRoster reads patient rows from an .xlsx roster. sheet selects the
// worksheet; empty means the first one. A first row made of known headers
// is used to locate the columns; otherwise columns are name, birth date,
// and type, in that order. Blank rows are skipped.
func readRoster(path, sheet string) ([]rosterRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadRoster, path, err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no worksheets", ErrEmptyRoster, path)
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers regardless of the
	// cell's display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadRoster, path, err)
	}

	cols := positionalColumns
	start := 0
	if len(rows) > 0 {
		if c, ok := headerColumns(rows[0]); ok {
			cols = c
			start = 1
		}
	}

	var out []rosterRow
	for i := start; i < len(rows); i++ {
		row := rows[i]
		r := rosterRow{
			line:      i + 1,
			name:      strings.TrimSpace(cell(row, cols.name)),
			birthDate: strings.TrimSpace(cell(row, cols.birthDate)),
			admission: strings.TrimSpace(cell(row, cols.admission)),
		}
		if r.name == "" && r.birthDate == "" && r.admission == "" {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRoster, path)
	}
	return out, nil
}

// headerColumns reports the field columns of a header row. The row counts
// as a header only when it names both the patient and the admission type.
func headerColumns(row []string) (rosterColumns, bool) {
	cols := rosterColumns{name: -1, birthDate: -1, admission: -1}
	for i, label := range row {
		switch headerAliases[normalizeHeader(label)] {
		case "name":
			cols.name = i
		case "birthDate":
			cols.birthDate = i
		case "admission":
			cols.admission = i
		}
	}
	if cols.name < 0 || cols.admission < 0 {
		return positionalColumns, false
	}
	return cols, true
}

// normalizeHeader lowercases a label and drops accents.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if r < 0x300 || r > 0x36f {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseRosterDate accepts the text formats of dateutil.ParseDate and Excel
// date serials.
func parseRosterDate(s string) (time.Time, error) {
	t, err := dateutil.ParseDate(s)
	if err == nil {
		return t, nil
	}
	serial, convErr := strconv.ParseFloat(s, 64)
	if convErr != nil || serial <= 0 {
		return time.Time{}, err
	}
	t, convErr = excelize.ExcelDateToTime(serial, false)
	if convErr != nil {
		return time.Time{}, err
	}
	return dateutil.DateOnly(t), nil
}

// patient parses the row into a validated patient.
func (r rosterRow) patient() (patient, error) {
	p, err := parsePatient(r.name, "", r.admission)
	if err != nil {
		return patient{}, err
	}
	if r.birthDate != "" {
		birth, err := parseRosterDate(r.birthDate)
		if err != nil {
			return patient{}, err
		}
		p.birthDate = birth
	}
	return p, nil
}
