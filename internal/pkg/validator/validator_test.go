package validator

import (
	"testing"

	"github.com/shopspring/decimal"
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

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestIsValidNPWP(t *testing.T) {
	valid := []string{"01.234.567.8-901.000", "012345678901000", "3171234567890001"}
	invalid := []string{"", "12345", "01.234.567.8-901.00A", "01234567890100000"}
	for _, npwp := range valid {
		if !IsValidNPWP(npwp) {
			t.Errorf("IsValidNPWP(%q) = false, want true", npwp)
		}
	}
	for _, npwp := range invalid {
		if IsValidNPWP(npwp) {
			t.Errorf("IsValidNPWP(%q) = true, want false", npwp)
		}
	}
}

func TestIsValidTaxStatus(t *testing.T) {
	valid := []string{"TK0", "TK3", "K0", "K3", "HB0", "HB3", "tk1", " K2 "}
	invalid := []string{"", "TK4", "K", "KK1", "HB", "X0", "TK01"}
	for _, s := range valid {
		if !IsValidTaxStatus(s) {
			t.Errorf("IsValidTaxStatus(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidTaxStatus(s) {
			t.Errorf("IsValidTaxStatus(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	cases := []struct {
		input int
		want  bool
	}{
		{0, false},
		{1, true},
		{12, true},
		{13, false},
		{-1, false},
	}
	for _, c := range cases {
		if got := IsValidMonth(c.input); got != c.want {
			t.Errorf("IsValidMonth(%d) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidTaxYear(t *testing.T) {
	if !IsValidTaxYear(2025) {
		t.Errorf("IsValidTaxYear(2025) = false, want true")
	}
	if IsValidTaxYear(1999) {
		t.Errorf("IsValidTaxYear(1999) = true, want false")
	}
}

func TestIsNonNegative(t *testing.T) {
	if !IsNonNegative(decimal.Zero) {
		t.Errorf("IsNonNegative(0) = false, want true")
	}
	if IsNonNegative(decimal.NewFromInt(-1)) {
		t.Errorf("IsNonNegative(-1) = true, want false")
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"a", "b", "c"}
	if !IsInSlice("a", slice) {
		t.Errorf("IsInSlice('a') = false, want true")
	}
	if IsInSlice("d", slice) {
		t.Errorf("IsInSlice('d') = true, want false")
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "invalid"},
		{Field: "employee_id", Message: "required"},
	}
	got := errs.Error()
	want := "month: invalid; employee_id: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "month", Message: "invalid"},
		{Field: "employee_id", Message: "required"},
	}
	got := errs.ToMap()
	want := map[string]string{"month": "invalid", "employee_id": "required"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
