package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rates() Rates {
	return Rates{
		WorkingDays:        20,
		StandardHours:      8,
		OvertimeMultiplier: decimal.RequireFromString("1.5"),
		TaxRate:            decimal.RequireFromString("0.10"),
	}
}

func TestCompute(t *testing.T) {
	b := Compute(Input{
		BaseSalary:      decimal.NewFromInt(4000),
		Allowances:      decimal.NewFromInt(200),
		OvertimeHours:   4,
		UnpaidLeaveDays: 2,
	}, rates())

	// daily 200, hourly 25, overtime 4h * 25 * 1.5
	assert.Equal(t, "150", b.OvertimePay.String())
	assert.Equal(t, "400", b.Deductions.String())
	assert.Equal(t, "4350", b.Gross.String())
	assert.Equal(t, "395", b.Tax.String())
	assert.Equal(t, "3555", b.Net.String())
}

func TestCompute_DeductionCappedAtBase(t *testing.T) {
	b := Compute(Input{BaseSalary: decimal.NewFromInt(1000), UnpaidLeaveDays: 40}, rates())
	assert.True(t, b.Deductions.Equal(decimal.NewFromInt(1000)))
	assert.True(t, b.Net.IsZero())
}

func TestParsePeriod(t *testing.T) {
	start, end, err := ParsePeriod("2024-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), end)

	_, _, err = ParsePeriod("2024-13")
	assert.Error(t, err)
}

func TestAdvance(t *testing.T) {
	now := time.Now()
	p := Payroll{Status: StatusDraft}
	assert.ErrorIs(t, p.Advance(StatusPaid, now), ErrInvalidTransition)
	require.NoError(t, p.Advance(StatusProcessed, now))
	require.NoError(t, p.Advance(StatusPaid, now))
	assert.ErrorIs(t, p.Advance(StatusProcessed, now), ErrInvalidTransition)
	assert.NotNil(t, p.PaidAt)
}
