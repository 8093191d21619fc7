package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor reads the spreadsheet result sheet format. The layout is
// the same column-positional contract as the CSV format, but cells may hold
// non-string values so everything is read through excelize's stringified
// row view and trimmed before matching.
type XLSXExtractor struct {
	Opts Options
}

func (e *XLSXExtractor) Format() string { return "xlsx" }

func (e *XLSXExtractor) Extract(path string) (RawHeader, []RawRow, *Diagnostics, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawHeader{}, nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return RawHeader{}, nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	diags := &Diagnostics{}
	header := parseTabularHeader(rows, csvHeaderRows)

	start := -1
	for i, row := range rows {
		if len(row) > 0 && strings.Contains(row[0], resultsMarker) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		diags.skip(e.Format(), "results banner row not found")
		return header, nil, diags, nil
	}

	var raws []RawRow
	for _, row := range rows[start:] {
		if len(row) < csvRowWidth || !e.Opts.isRegNumber(row[csvColRegNo]) {
			continue
		}
		raws = append(raws, RawRow{
			Name:               strings.TrimSpace(row[csvColName]),
			RegistrationNumber: strings.TrimSpace(row[csvColRegNo]),
			Department:         strings.TrimSpace(row[csvColDept]),
			Level:              strings.TrimSpace(row[csvColLevel]),
			CA:                 strings.TrimSpace(row[csvColCA]),
			Exam:               strings.TrimSpace(row[csvColExam]),
			Total:              strings.TrimSpace(row[csvColTotal]),
			Grade:              strings.TrimSpace(row[csvColGrade]),
		})
	}
	diags.RowsExtracted = len(raws)

	return header, raws, diags, nil
}
