package tax

import (
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Warning codes
const (
	WarnSettingsDefault  = "settings_default"
	WarnTERRateFallback  = "ter_rate_fallback"
	WarnPTKPFallback     = "ptkp_fallback"
	WarnBracketFallback  = "tax_bracket_fallback"
	WarnMissingTaxStatus = "missing_tax_status"
	WarnMissingTaxID     = "missing_tax_id"
	WarnNegativeInput    = "negative_input_clamped"
	WarnAnnualDetected   = "annual_value_detected"
	WarnIntegrityDrift   = "integrity_drift"
	WarnJointFiler       = "joint_filer"
)

// calculation carries the per-invocation state: resolved settings and the
// warnings collected along the way.
type calculation struct {
	employeeID string
	settings   tax.Settings
	warnings   []tax.Warning
	logger     *slog.Logger
}

func newCalculation(employeeID string, settings tax.Settings, logger *slog.Logger) *calculation {
	if logger == nil {
		logger = slog.Default()
	}
	return &calculation{employeeID: employeeID, settings: settings, logger: logger}
}

func (c *calculation) warn(code, message string, attrs ...any) {
	c.warnings = append(c.warnings, tax.Warning{Code: code, Message: message})
	args := append([]any{"code", code, "employee_id", c.employeeID}, attrs...)
	c.logger.Warn(message, args...)
	metrics.RecordFallback(code)
}

// nonNegative clamps a negative input to zero and records a warning.
func (c *calculation) nonNegative(field string, v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		c.warn(WarnNegativeInput, fmt.Sprintf("%s is negative, treated as zero", field), "field", field, "value", v.String())
		return decimal.Zero
	}
	return v
}

func (c *calculation) ptkp(mapper *CategoryMapper, status string) decimal.Decimal {
	lookup := mapper.GetPTKPAmount(status, c.settings)
	if lookup.IsFallback() {
		c.warn(WarnPTKPFallback,
			fmt.Sprintf("PTKP for status %q not configured, using %s default", lookup.Status, lookup.Source),
			"status", lookup.Status, "source", string(lookup.Source), "amount", lookup.Amount.String())
	}
	return lookup.Amount
}

// occupationalExpense is biaya jabatan: 5% of gross, capped at 500,000.
func occupationalExpense(gross decimal.Decimal) decimal.Decimal {
	expense := gross.Mul(fixtures.OccupationalExpenseRate).Div(hundred)
	if expense.GreaterThan(fixtures.OccupationalExpenseCap) {
		return fixtures.OccupationalExpenseCap
	}
	return expense
}

func roundIDR(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}
