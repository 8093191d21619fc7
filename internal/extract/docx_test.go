package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docxRow(cells ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:tr>")
	for _, c := range cells {
		sb.WriteString("<w:tc><w:p><w:r><w:t>")
		sb.WriteString(c)
		sb.WriteString("</w:t></w:r></w:p></w:tc>")
	}
	sb.WriteString("</w:tr>")
	return sb.String()
}

// writeTempDocx assembles a minimal .docx archive holding one table.
func writeTempDocx(t *testing.T, tableRows []string) string {
	t.Helper()

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:tbl>`)
	for _, r := range tableRows {
		doc.WriteString(r)
	}
	doc.WriteString(`</w:tbl></w:body></w:document>`)

	path := filepath.Join(t.TempDir(), "results.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(doc.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func goldenDocxRows() []string {
	return []string{
		docxRow("Title of Course", "Introduction to Computer Science", "Course Code", "CSC101"),
		docxRow("Examination Date", "2024-01-15", "Course Unit", "3"),
		docxRow("Department", "Computer Science", "Semester", "First"),
		docxRow("Faculty", "Physical Sciences", "Session", "2023/2024"),
		docxRow("Name of Lecturers", "Dr. A. Bello"),
		docxRow("Names", "Reg. No", "Department", "Level", "CA", "Exam", "Total", "Grade"),
		docxRow("ADAEZE OBI", "2019/243001", "COMPUTER SCIENCE", "100", "28", "55", "83", "A"),
	}
}

func TestDocxExtractor_GoldenSheet(t *testing.T) {
	path := writeTempDocx(t, goldenDocxRows())

	e := &DocxExtractor{}
	header, rows, diags, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "Introduction to Computer Science", header.CourseTitle)
	assert.Equal(t, "CSC101", header.CourseCode)
	assert.Equal(t, "3", header.CourseUnit)
	assert.Equal(t, "Computer Science", header.Department)
	assert.Equal(t, "First", header.Semester)
	assert.Equal(t, "Physical Sciences", header.Faculty)
	assert.Equal(t, "2023/2024", header.Session)
	assert.Equal(t, "Dr. A. Bello", header.Lecturers)

	require.Len(t, rows, 1)
	assert.Equal(t, 1, diags.RowsExtracted)
	assert.Equal(t, "ADAEZE OBI", rows[0].Name)
	assert.Equal(t, "2019/243001", rows[0].RegistrationNumber)
	assert.Equal(t, "COMPUTER SCIENCE", rows[0].Department)
	assert.Equal(t, "28", rows[0].CA)
	assert.Equal(t, "55", rows[0].Exam)
	assert.Equal(t, "83", rows[0].Total)
	assert.Equal(t, "A", rows[0].Grade)
}

func TestDocxExtractor_NameIsFirstCellWhenRegistrationShifts(t *testing.T) {
	// A serial-number column pushes the registration number right; the
	// offsets follow it but the name stays in the first cell.
	rows := []string{
		docxRow("1", "CHIDI NWOSU", "2019/243002", "COMPUTER SCIENCE", "100", "20", "40", "60", "C"),
	}
	path := writeTempDocx(t, rows)

	e := &DocxExtractor{}
	_, raws, _, err := e.Extract(path)
	require.NoError(t, err)

	require.Len(t, raws, 1)
	assert.Equal(t, "1", raws[0].Name)
	assert.Equal(t, "2019/243002", raws[0].RegistrationNumber)
	assert.Equal(t, "COMPUTER SCIENCE", raws[0].Department)
	assert.Equal(t, "20", raws[0].CA)
	assert.Equal(t, "60", raws[0].Total)
	assert.Equal(t, "C", raws[0].Grade)
}

func TestDocxExtractor_IgnoresNarrowRows(t *testing.T) {
	rows := []string{
		docxRow("Faculty", "Physical Sciences", "Session", "2023/2024"),
		docxRow("short", "2019/243001", "row"),
	}
	path := writeTempDocx(t, rows)

	e := &DocxExtractor{}
	header, raws, _, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, "2023/2024", header.Session)
	assert.Empty(t, raws)
}

func TestDocxExtractor_ReportsRowTooNarrowForOffsets(t *testing.T) {
	// Seven cells, registration number in the second: the grade offset
	// lands past the end of the row. The row is skipped with a reason.
	rows := []string{
		docxRow("EKENE UDO", "2019/243004", "COMPUTER SCIENCE", "100", "20", "40", "60"),
	}
	path := writeTempDocx(t, rows)

	e := &DocxExtractor{}
	_, raws, diags, err := e.Extract(path)
	require.NoError(t, err)

	assert.Empty(t, raws)
	assert.Equal(t, 1, diags.RowsSkipped)
	require.Len(t, diags.Problems, 1)
	assert.Contains(t, diags.Problems[0], "2019/243004")
	assert.Contains(t, diags.Problems[0], "too narrow")
}

func TestDocxExtractor_Idempotent(t *testing.T) {
	path := writeTempDocx(t, goldenDocxRows())
	e := &DocxExtractor{}

	h1, r1, _, err := e.Extract(path)
	require.NoError(t, err)
	h2, r2, _, err := e.Extract(path)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, r1, r2)
}

func TestDocxExtractor_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0644))

	e := &DocxExtractor{}
	_, _, _, err := e.Extract(path)
	require.Error(t, err)
}

func TestDocxExtractor_MissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	e := &DocxExtractor{}
	_, _, _, err = e.Extract(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml")
}
