package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXLSX(t *testing.T) {
	data, err := XLSX(Table{
		Name:    "Attendance",
		Headers: []string{"Date", "Employee", "Hours"},
		Rows: [][]interface{}{
			{"2024-03-04", "Ada Lovelace", 8.5},
			{"2024-03-05", "Ada Lovelace", 7},
		},
		Widths: map[int]float64{2: 30},
	})
	require.NoError(t, err)

	rows, err := ReadXLSX(data)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Employee", "Hours"}, rows[0])
	assert.Equal(t, "Ada Lovelace", rows[1][1])
	assert.Equal(t, "8.5", rows[1][2])
}

func TestPayslipPDF(t *testing.T) {
	data, err := PayslipPDF(Payslip{
		Title:        "Payslip",
		EmployeeName: "Ada Lovelace",
		EmployeeCode: "EMP0001",
		Period:       "2024-03",
		Status:       "processed",
		Earnings:     []Line{{Label: "Base salary", Value: "4000.00"}},
		Deductions:   []Line{{Label: "Tax", Value: "395.00"}},
		NetPay:       "3555.00",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
