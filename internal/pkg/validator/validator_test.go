package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-12d3-a456-426614174000",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"{0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b}",
		"",
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if _, ok := IsValidDate("2024-02-29"); !ok {
		t.Errorf("IsValidDate(2024-02-29) = false, want true")
	}
	if _, ok := IsValidDate("2023-02-29"); ok {
		t.Errorf("IsValidDate(2023-02-29) = true, want false")
	}
	if _, ok := IsValidDate("29/02/2024"); ok {
		t.Errorf("IsValidDate(29/02/2024) = true, want false")
	}
}

func TestIsValidDateTime(t *testing.T) {
	for _, s := range []string{"2024-01-15T10:30:00Z", "2024-01-15T10:30:00+07:00", "2024-01-15T10:30:00.123Z"} {
		if _, ok := IsValidDateTime(s); !ok {
			t.Errorf("IsValidDateTime(%q) = false, want true", s)
		}
	}
	if _, ok := IsValidDateTime("2024-01-15 10:30"); ok {
		t.Errorf("IsValidDateTime(space separated) = true, want false")
	}
}

type sampleRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Role     string   `json:"role" validate:"required,oneof=admin employee"`
	Assignee []string `json:"assignedTo" validate:"min=1"`
	Internal string   `json:"-"`
}

func TestStruct(t *testing.T) {
	errs := Struct(sampleRequest{Email: "nope", Role: "owner"})
	require.Len(t, errs, 3)

	m := errs.ToMap()
	assert.Equal(t, "email must be a valid email address", m["email"])
	assert.Equal(t, "role must be one of [admin employee]", m["role"])
	assert.Contains(t, m, "assignedTo")

	assert.Nil(t, Struct(sampleRequest{Email: "a@b.cd", Role: "admin", Assignee: []string{"x"}}))
}

func TestValidationErrors_Err(t *testing.T) {
	var errs ValidationErrors
	assert.NoError(t, errs.Err())

	errs.Add("startDate", "startDate is required")
	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, "startDate: startDate is required", err.Error())
}
