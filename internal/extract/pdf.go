package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// The PDF sheets are free text: header fields are recovered by anchored
// patterns capturing the text between two known labels, and student rows by
// whitespace tokenization after the results banner.
var (
	pdfTitleRe    = regexp.MustCompile(`Title of Course:\s*([\w\s]+?)\s*Course Code:\s*(\w+)`)
	pdfUnitRe     = regexp.MustCompile(`Course Unit:\s*(\d+)`)
	pdfDeptRe     = regexp.MustCompile(`Department:\s*([\w\s]+?)\s*Semester:`)
	pdfSemesterRe = regexp.MustCompile(`Semester:\s*([A-Za-z]+)`)
	pdfFacultyRe  = regexp.MustCompile(`Faculty:\s*([\w\s]+?)\s*Session:`)
	pdfSessionRe  = regexp.MustCompile(`Session:\s*(\d+/\d+)`)
	pdfLectRe     = regexp.MustCompile(`Name of Lecturers:\s*(.*?)\s*Page`)
)

// pdfScoreCount is how many trailing numeric tokens make up a score triple:
// CA, exam and total, in that order.
const pdfScoreCount = 3

// PDFExtractor reads the PDF result sheet format from the first page's
// extracted plain text.
type PDFExtractor struct {
	Opts Options
}

func (e *PDFExtractor) Format() string { return "pdf" }

func (e *PDFExtractor) Extract(path string) (RawHeader, []RawRow, *Diagnostics, error) {
	text, err := readPDFFirstPageText(path)
	if err != nil {
		return RawHeader{}, nil, nil, err
	}
	header, raws, diags := e.parseReportText(text)
	return header, raws, diags, nil
}

// parseReportText runs the header patterns and row heuristics over the
// extracted page text. Split out from Extract so the parsing rules can be
// exercised without a PDF in hand.
func (e *PDFExtractor) parseReportText(text string) (RawHeader, []RawRow, *Diagnostics) {
	var header RawHeader
	var raws []RawRow
	diags := &Diagnostics{}

	lines := strings.Split(text, "\n")

	for _, line := range lines {
		switch {
		case strings.Contains(line, labelCourseTitle+":"):
			if m := pdfTitleRe.FindStringSubmatch(line); m != nil {
				header.CourseTitle = strings.TrimSpace(m[1])
				header.CourseCode = strings.TrimSpace(m[2])
			}
		case strings.Contains(line, labelCourseUnit+":"):
			if m := pdfUnitRe.FindStringSubmatch(line); m != nil {
				header.CourseUnit = m[1]
			}
		case strings.Contains(line, labelDepartment+":"):
			if m := pdfDeptRe.FindStringSubmatch(line); m != nil {
				header.Department = strings.TrimSpace(m[1])
			}
			// Department and semester share a line on these sheets.
			if m := pdfSemesterRe.FindStringSubmatch(line); m != nil {
				header.Semester = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, labelFaculty+":"):
			if m := pdfFacultyRe.FindStringSubmatch(line); m != nil {
				header.Faculty = strings.TrimSpace(m[1])
			}
			if m := pdfSessionRe.FindStringSubmatch(line); m != nil {
				header.Session = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, labelSemester+":"):
			if m := pdfSemesterRe.FindStringSubmatch(line); m != nil {
				header.Semester = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, labelSession+":"):
			if m := pdfSessionRe.FindStringSubmatch(line); m != nil {
				header.Session = strings.TrimSpace(m[1])
			}
		case strings.Contains(line, labelLecturers+":"):
			if m := pdfLectRe.FindStringSubmatch(line); m != nil {
				header.Lecturers = strings.TrimSpace(m[1])
			}
		}
	}

	resultsSection := false
	for _, line := range lines {
		if strings.Contains(line, resultsMarker) {
			resultsSection = true
			continue
		}
		if !resultsSection {
			continue
		}

		parts := strings.Fields(line)
		regIdx := -1
		for i, p := range parts {
			if e.Opts.isRegNumber(p) {
				regIdx = i
				break
			}
		}
		if regIdx == -1 {
			continue
		}

		name := strings.Join(parts[:regIdx], " ")

		var scores []string
		for _, p := range parts[regIdx+1:] {
			if isNumericToken(p) {
				scores = append(scores, p)
			}
		}
		if len(scores) < pdfScoreCount {
			diags.skip(e.Format(), fmt.Sprintf("%s: found %d score tokens, need %d", parts[regIdx], len(scores), pdfScoreCount))
			continue
		}

		grade := parts[len(parts)-1]
		if len(grade) != 1 || !strings.Contains("ABCDEF", grade) {
			diags.skip(e.Format(), fmt.Sprintf("%s: trailing token %q is not a grade", parts[regIdx], grade))
			continue
		}

		// The last three numeric tokens are CA, exam and total.
		tail := scores[len(scores)-pdfScoreCount:]
		raws = append(raws, RawRow{
			Name:               name,
			RegistrationNumber: parts[regIdx],
			Level:              defaultLevel,
			CA:                 tail[0],
			Exam:               tail[1],
			Total:              tail[2],
			Grade:              grade,
		})
	}
	diags.RowsExtracted = len(raws)

	return header, raws, diags
}

// isNumericToken reports whether a token is all digits and dots with at
// least one digit, the shape of a score cell.
func isNumericToken(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
		default:
			return false
		}
	}
	return digits > 0
}

// readPDFFirstPageText extracts plain text from the first page of a PDF via
// its content streams. Text-show operators contribute characters; the
// positioning operators become line breaks so the page keeps its row
// structure.
func readPDFFirstPageText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	if ctx.PageCount < 1 {
		return "", fmt.Errorf("pdf has no pages")
	}

	r, err := pdfcpu.ExtractPageContent(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("extract page content: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read page content: %w", err)
	}

	return textFromContentStream(data), nil
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// textFromContentStream parses PDF content stream operators for text.
func textFromContentStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		// Tj / TJ show text on the current line.
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.Write(decodePDFString(m[1]))
			}

		// ' moves to the next line and shows text.
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			sb.WriteByte('\n')
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				sb.Write(decodePDFString(m[1]))
			}

		// Td/TD reposition the text cursor; T* moves to the next line.
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")), bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) []byte {
	var out bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 'r':
			out.WriteByte('\r')
		case 't':
			out.WriteByte('\t')
		case '\\', '(', ')':
			out.WriteByte(raw[i])
		default:
			// Octal escape, e.g. \040 for space.
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out.WriteByte(byte(val))
			} else {
				out.WriteByte(raw[i])
			}
		}
	}
	return out.Bytes()
}
