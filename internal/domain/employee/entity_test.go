package employee

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextEmployeeCode(t *testing.T) {
	cases := map[string]string{
		"":         "EMP0001",
		"EMP0001":  "EMP0002",
		"EMP0041":  "EMP0042",
		"EMP9999":  "EMP10000",
		"garbage":  "EMP0001",
		"EMPabc":   "EMP0001",
		"EMP10000": "EMP10001",
	}
	for last, want := range cases {
		assert.Equal(t, want, NextEmployeeCode(last), last)
	}
}

func TestUpdateEmployeeRequest_OnlyContactFields(t *testing.T) {
	phone := "+1 555 0100"
	req := UpdateEmployeeRequest{Phone: &phone}
	assert.True(t, req.OnlyContactFields())

	position := "Lead"
	req.Position = &position
	assert.False(t, req.OnlyContactFields())
}
