package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Line is a label/amount pair on a document.
type Line struct {
	Label string
	Value string
}

// Payslip is the content of a single payslip document.
type Payslip struct {
	Title        string
	EmployeeName string
	EmployeeCode string
	Period       string
	Status       string
	Earnings     []Line
	Deductions   []Line
	NetPay       string
}

// PayslipPDF renders p as an A4 PDF.
func PayslipPDF(p Payslip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(p.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, p.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", p.EmployeeName, p.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", p.Period))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(10)

	section := func(title string, lines []Line) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range lines {
			pdf.CellFormat(100, 7, l.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, l.Value, "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}
	section("Earnings", p.Earnings)
	section("Deductions", p.Deductions)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(100, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 9, p.NetPay, "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
