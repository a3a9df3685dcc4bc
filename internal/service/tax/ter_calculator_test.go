package tax

import (
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTERCalculator() *TERCalculator {
	store := cache.New()
	mapper := NewCategoryMapper(store, time.Hour, time.Hour)
	return NewTERCalculator(store, time.Hour, mapper, DetectionThresholdsFromConfig(config.DefaultTaxConfig()))
}

func singleRowSettings() tax.Settings {
	s := fixtures.GetDefaultSettings()
	s.TERBrackets = []tax.TERBracket{
		{Category: tax.TERCategoryA, IncomeFrom: idr(0), IncomeTo: idr(8_000_000), Rate: decimal.Zero},
		{Category: tax.TERCategoryA, IncomeFrom: idr(8_000_000), IncomeTo: idr(13_000_000), Rate: decimal.NewFromInt(5)},
		{Category: tax.TERCategoryA, IncomeFrom: idr(13_000_000), Rate: decimal.NewFromInt(10), IsHighestBracket: true},
	}
	return s
}

func TestFindTERRate(t *testing.T) {
	t.Parallel()

	rows := singleRowSettings().TERBracketsFor(tax.TERCategoryA)

	tests := []struct {
		name  string
		gross decimal.Decimal
		want  decimal.Decimal
	}{
		{"first row", idr(5_000_000), decimal.Zero},
		{"lower bound inclusive", idr(8_000_000), decimal.NewFromInt(5)},
		{"upper bound exclusive", idr(13_000_000), decimal.NewFromInt(10)},
		{"highest row", idr(900_000_000), decimal.NewFromInt(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := FindTERRate(rows, tt.gross)
			require.True(t, found)
			assert.True(t, got.Equal(tt.want), "rate = %s", got)
		})
	}

	_, found := FindTERRate(nil, idr(1))
	assert.False(t, found)
}

func TestCalculateMonthlyTaxTER(t *testing.T) {
	t.Parallel()

	calc := testCalculation(singleRowSettings())
	period := &tax.PayPeriod{EmployeeID: "emp-1", Year: 2025, Month: 3, GrossPay: idr(10_000_000)}
	profile := tax.TaxpayerProfile{EmployeeID: "emp-1", TaxStatus: "TK0", HasTaxID: true}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, profile)

	assert.Equal(t, tax.MethodTER, got.Method)
	assert.Equal(t, tax.TERCategoryA, got.TERCategory)
	assert.True(t, got.TERRate.Equal(decimal.NewFromInt(5)))
	assert.True(t, got.MonthlyTax.Equal(idr(500_000)), "monthly tax = %s", got.MonthlyTax)
	assert.True(t, got.OccupationalExpense.Equal(idr(500_000)))
	assert.True(t, got.NetIncome.Equal(idr(9_500_000)))
	assert.True(t, got.AnnualTaxableIncome.Equal(idr(120_000_000)))

	assert.True(t, period.IsUsingTER)
	assert.Equal(t, "5.00", period.TERRate.StringFixed(2))
	assert.True(t, period.TaxDeduction.Equal(period.MonthlyTax))
	assert.True(t, period.CorrectionAmount.IsZero())
	assert.Empty(t, calc.warnings)
}

func TestCalculateMonthlyTaxTER_DefaultTable(t *testing.T) {
	t.Parallel()

	calc := testCalculation(fixtures.GetDefaultSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(10_000_000), BPJSEmployeeTotal: idr(300_000)}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"})

	assert.True(t, got.TERRate.Equal(decimal.NewFromInt(2)))
	assert.True(t, got.MonthlyTax.Equal(idr(200_000)))
	assert.True(t, got.NetIncome.Equal(idr(9_200_000)))
}

func TestCalculateMonthlyTaxTER_FallbackRate(t *testing.T) {
	t.Parallel()

	settings := fixtures.GetDefaultSettings()
	settings.TERBrackets = nil
	calc := testCalculation(settings)
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(10_000_000)}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "K0"})

	assert.Equal(t, tax.TERCategoryB, got.TERCategory)
	assert.True(t, got.TERRate.Equal(decimal.NewFromInt(15)))
	assert.True(t, got.MonthlyTax.Equal(idr(1_500_000)))
	assert.Contains(t, warningCodes(calc.warnings), WarnTERRateFallback)
}

func TestCalculateMonthlyTaxTER_AnnualValue(t *testing.T) {
	t.Parallel()

	calc := testCalculation(singleRowSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(120_000_000)}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"})

	assert.True(t, got.AnnualDetection.IsAnnual)
	assert.True(t, got.MonthlyGrossForTER.Equal(idr(10_000_000)))
	assert.True(t, got.MonthlyTax.Equal(idr(500_000)))
	assert.Contains(t, warningCodes(calc.warnings), WarnAnnualDetected)
}

func TestCalculateMonthlyTaxTER_NegativeGross(t *testing.T) {
	t.Parallel()

	calc := testCalculation(singleRowSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(-5)}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"})

	assert.True(t, got.MonthlyTax.IsZero())
	assert.True(t, got.GrossPay.IsZero())
	assert.Contains(t, warningCodes(calc.warnings), WarnNegativeInput)
}

func TestCalculateMonthlyTaxTER_Idempotent(t *testing.T) {
	t.Parallel()

	c := testTERCalculator()
	settings := singleRowSettings()
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(10_000_000)}
	profile := tax.TaxpayerProfile{TaxStatus: "TK0"}

	first := c.CalculateMonthlyTaxTER(testCalculation(settings), period, profile)
	second := c.CalculateMonthlyTaxTER(testCalculation(settings), period, profile)

	assert.True(t, first.MonthlyTax.Equal(second.MonthlyTax))
	assert.True(t, first.TERRate.Equal(second.TERRate))
	assert.True(t, period.MonthlyTax.Equal(idr(500_000)))
}

func TestCalculateMonthlyTaxTER_StoredFieldsDrift(t *testing.T) {
	t.Parallel()

	calc := testCalculation(singleRowSettings())
	period := &tax.PayPeriod{
		Year: 2025, Month: 3, GrossPay: idr(10_000_000),
		IsUsingTER:          true,
		MonthlyGrossForTER:  idr(10_000_000),
		AnnualTaxableIncome: idr(120_000_000),
		TERCategory:         tax.TERCategoryA,
		TERRate:             decimal.RequireFromString("4.5"),
		MonthlyTax:          idr(450_000),
		TaxDeduction:        idr(450_000),
	}

	got := testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"})

	codes := warningCodes(calc.warnings)
	require.NotEmpty(t, codes)
	for _, code := range codes {
		assert.Equal(t, WarnIntegrityDrift, code)
	}
	assert.Contains(t, calc.warnings[0].Message, "ter_rate corrected from 4.5 to 5")
	assert.True(t, got.MonthlyTax.Equal(idr(500_000)))
	assert.True(t, period.TERRate.Equal(decimal.NewFromInt(5)))
	assert.True(t, period.TaxDeduction.Equal(idr(500_000)))
}

func TestCalculateMonthlyTaxTER_FreshPeriodSkipsDriftCheck(t *testing.T) {
	t.Parallel()

	calc := testCalculation(singleRowSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 3, GrossPay: idr(10_000_000), TERRate: decimal.NewFromInt(99)}

	testTERCalculator().CalculateMonthlyTaxTER(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"})

	assert.Empty(t, calc.warnings)
	assert.True(t, period.TERRate.Equal(decimal.NewFromInt(5)))
}

func TestVerifyTERFields_CorrectsDrift(t *testing.T) {
	t.Parallel()

	c := testTERCalculator()
	settings := singleRowSettings()
	period := &tax.PayPeriod{
		MonthlyGrossForTER:  idr(10_000_000),
		AnnualTaxableIncome: idr(100),
		TERCategory:         tax.TERCategoryC,
		TERRate:             decimal.RequireFromString("4.5"),
		MonthlyTax:          idr(1),
		TaxDeduction:        idr(1),
	}

	discrepancies := c.VerifyTERFields(period, tax.TaxpayerProfile{TaxStatus: "TK0"}, settings)

	assert.Len(t, discrepancies, 5)
	assert.True(t, period.AnnualTaxableIncome.Equal(idr(120_000_000)))
	assert.Equal(t, tax.TERCategoryA, period.TERCategory)
	assert.True(t, period.TERRate.Equal(decimal.NewFromInt(5)))
	assert.True(t, period.MonthlyTax.Equal(idr(500_000)))
	assert.True(t, period.TaxDeduction.Equal(idr(500_000)))
	for _, d := range discrepancies {
		assert.True(t, strings.Contains(d, "corrected from"), d)
	}
}

func TestVerifyTERFields_WithinTolerance(t *testing.T) {
	t.Parallel()

	c := testTERCalculator()
	period := &tax.PayPeriod{
		MonthlyGrossForTER:  idr(10_000_000),
		AnnualTaxableIncome: idr(120_000_000),
		TERCategory:         tax.TERCategoryA,
		TERRate:             decimal.NewFromInt(5),
		MonthlyTax:          decimal.RequireFromString("500000.01"),
		TaxDeduction:        decimal.RequireFromString("500000.01"),
	}

	assert.Empty(t, c.VerifyTERFields(period, tax.TaxpayerProfile{TaxStatus: "TK0"}, singleRowSettings()))
}
