package validator

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Numeric validation
var numericRegex = regexp.MustCompile(`^[0-9]+$`)

func IsNumeric(s string) bool {
	return numericRegex.MatchString(s)
}

// NPWP validation: 15 digits (legacy) or 16 digits (NIK-based)
func IsValidNPWP(npwp string) bool {
	npwp = strings.NewReplacer(".", "", "-", "", " ", "").Replace(npwp)
	return (len(npwp) == 15 || len(npwp) == 16) && IsNumeric(npwp)
}

// Tax status validation (PTKP status)
var taxStatusRegex = regexp.MustCompile(`^(TK|K|HB)[0-3]$`)

func IsValidTaxStatus(status string) bool {
	return taxStatusRegex.MatchString(strings.ToUpper(strings.TrimSpace(status)))
}

// Month validation
func IsValidMonth(month int) bool {
	return month >= 1 && month <= 12
}

// IsValidTaxYear accepts years under UU 36/2008 and later.
func IsValidTaxYear(year int) bool {
	return year >= 2009 && year <= 2100
}

// IsNonNegative reports whether d is zero or positive.
func IsNonNegative(d decimal.Decimal) bool {
	return !d.IsNegative()
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}
