package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const title = "Data summary"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the summary the way spreadsheet tools in comma-decimal
// locales expect it: a BOM first, then ';'-separated rows.
func WriteCSV(w io.Writer, s *Summary) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	records := [][]string{
		{title},
		{},
		{"Statistic", "Value"},
	}
	for _, row := range s.Rows() {
		records = append(records, []string{row[0], row[1]})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func WritePDF(w io.Writer, s *Summary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetFillColor(0, 0, 255)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 14, title, "", 1, "C", true, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(128, 128, 128)
	pdf.CellFormat(95, 10, "Statistic", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 10, "Value", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(245, 245, 220)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, row := range s.Rows() {
		pdf.CellFormat(95, 9, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.CellFormat(95, 9, tr(row[1]), "1", 1, "L", true, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Generated "+s.GeneratedAt.Format("2006-01-02 15:04 UTC"), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
