package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strings"
)

// Word result sheets carry both the header block and the student rows as
// table rows. A row is student data when it is wide enough and one cell
// holds a registration number, recognizable by its "/" separator; the
// remaining fields sit at fixed offsets from that cell. The name is always
// the first cell regardless of where the registration number landed.
const (
	docxMinRowCells = 7

	docxOffDept  = 1
	docxOffCA    = 3
	docxOffExam  = 4
	docxOffTotal = 5
	docxOffGrade = 6
)

// DocxExtractor reads the word-processor result sheet format.
type DocxExtractor struct {
	Opts Options
}

func (e *DocxExtractor) Format() string { return "docx" }

func (e *DocxExtractor) Extract(path string) (RawHeader, []RawRow, *Diagnostics, error) {
	rows, err := readDocxTableRows(path)
	if err != nil {
		return RawHeader{}, nil, nil, err
	}

	var header RawHeader
	var raws []RawRow
	diags := &Diagnostics{}

	for _, cells := range rows {
		if len(cells) >= 2 {
			parseDocxHeaderRow(cells, &header)
		}
		if row, ok := e.parseDocxDataRow(cells, diags); ok {
			raws = append(raws, row)
		}
	}
	diags.RowsExtracted = len(raws)

	return header, raws, diags, nil
}

// parseDocxHeaderRow applies the Word format's per-label value positions.
// Unlike the delimited formats, two header fields share a row here: the
// course title row also carries the code, the department row the semester,
// and the faculty row the session, each in the last cell.
func parseDocxHeaderRow(cells []string, h *RawHeader) {
	first := strings.TrimSpace(cells[0])
	second := strings.TrimSpace(cells[1])
	last := strings.TrimSpace(cells[len(cells)-1])

	switch {
	case strings.Contains(first, labelCourseTitle):
		h.CourseTitle = second
		h.CourseCode = last
	case strings.Contains(first, labelExamDate):
		// The examination date row carries the course unit in its last cell.
		h.CourseUnit = last
	case strings.Contains(first, labelDepartment):
		h.Department = second
		h.Semester = last
	case strings.Contains(first, labelFaculty):
		h.Faculty = second
		h.Session = last
	case strings.Contains(first, labelLecturers):
		h.Lecturers = second
	}
}

// parseDocxDataRow recognizes a student row heuristically and reads its
// fields at fixed offsets from the registration-number cell. A row that
// carries a registration number but is too narrow for the offsets is
// reported, not dropped silently.
func (e *DocxExtractor) parseDocxDataRow(cells []string, diags *Diagnostics) (RawRow, bool) {
	if len(cells) < docxMinRowCells {
		return RawRow{}, false
	}

	regIdx := -1
	for i, c := range cells {
		if strings.Contains(c, "/") {
			regIdx = i
			break
		}
	}
	if regIdx == -1 {
		return RawRow{}, false
	}
	if regIdx+docxOffGrade >= len(cells) {
		diags.skip(e.Format(), fmt.Sprintf("row for %q too narrow for score columns", strings.TrimSpace(cells[regIdx])))
		return RawRow{}, false
	}

	return RawRow{
		Name:               strings.TrimSpace(cells[0]),
		RegistrationNumber: strings.TrimSpace(cells[regIdx]),
		Department:         strings.TrimSpace(cells[regIdx+docxOffDept]),
		Level:              defaultLevel,
		CA:                 strings.TrimSpace(cells[regIdx+docxOffCA]),
		Exam:               strings.TrimSpace(cells[regIdx+docxOffExam]),
		Total:              strings.TrimSpace(cells[regIdx+docxOffTotal]),
		Grade:              strings.TrimSpace(cells[regIdx+docxOffGrade]),
	}, true
}

// readDocxTableRows parses word/document.xml from the .docx ZIP archive and
// returns the cells of every table row in document order.
func readDocxTableRows(path string) ([][]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)

	var rows [][]string
	var row []string
	var cell strings.Builder
	var inRow, inCell, inText bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				inRow = true
				row = nil
			case "tc":
				if inRow {
					inCell = true
					cell.Reset()
				}
			case "t":
				inText = inCell
			}

		case xml.CharData:
			if inText {
				cell.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// Paragraph break inside a cell becomes a space.
				if inCell && cell.Len() > 0 {
					cell.WriteByte(' ')
				}
			case "tc":
				if inCell {
					row = append(row, strings.TrimSpace(cell.String()))
					inCell = false
				}
			case "tr":
				if inRow {
					rows = append(rows, row)
					inRow = false
				}
			}
		}
	}

	return rows, nil
}
