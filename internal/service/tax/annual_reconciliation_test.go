package tax

import (
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func flatTenPercentSettings() tax.Settings {
	s := fixtures.GetDefaultSettings()
	s.TaxBrackets = []tax.TaxBracket{{IncomeFrom: decimal.Zero, IncomeTo: decimal.Zero, Rate: decimal.NewFromInt(10)}}
	return s
}

func TestCalculateYearEndCorrection(t *testing.T) {
	t.Parallel()

	calc := testCalculation(flatTenPercentSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 12, GrossPay: idr(12_500_000), TaxDeduction: idr(123)}
	ytd := tax.YearToDateAggregate{Year: 2025, BeforeMonth: 12, Gross: idr(137_000_000), TaxPaid: idr(8_000_000)}

	got := NewAnnualReconciler(testMapper()).CalculateYearEndCorrection(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"}, ytd)

	assert.True(t, got.IsYearEnd)
	assert.True(t, got.GrossPay.Equal(idr(149_500_000)))
	assert.True(t, got.OccupationalExpense.Equal(idr(500_000)), "biaya jabatan capped once per year")
	assert.True(t, got.NetIncome.Equal(idr(149_000_000)))
	assert.True(t, got.PKP.Equal(idr(95_000_000)))
	assert.True(t, got.AnnualTax.Equal(idr(9_500_000)))
	assert.True(t, got.CorrectionAmount.Equal(idr(1_500_000)), "correction = %s", got.CorrectionAmount)
	assert.True(t, got.YTDTaxPaid.Equal(idr(8_000_000)))

	assert.True(t, period.TaxDeduction.Equal(idr(1_500_000)))
	assert.True(t, period.MonthlyTax.IsZero())
	assert.False(t, period.IsUsingTER)
}

func TestCalculateYearEndCorrection_Overpaid(t *testing.T) {
	t.Parallel()

	calc := testCalculation(flatTenPercentSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 12, GrossPay: idr(12_500_000)}
	ytd := tax.YearToDateAggregate{Year: 2025, Gross: idr(137_000_000), TaxPaid: idr(10_000_000)}

	got := NewAnnualReconciler(testMapper()).CalculateYearEndCorrection(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"}, ytd)

	assert.True(t, got.CorrectionAmount.Equal(idr(-500_000)))
	assert.True(t, period.TaxDeduction.Equal(idr(-500_000)))
}

func TestCalculateYearEndCorrection_BPJSReducesNet(t *testing.T) {
	t.Parallel()

	calc := testCalculation(flatTenPercentSettings())
	period := &tax.PayPeriod{Year: 2025, Month: 12, GrossPay: idr(12_500_000), BPJSEmployeeTotal: idr(250_000)}
	ytd := tax.YearToDateAggregate{Year: 2025, Gross: idr(137_000_000), BPJS: idr(2_750_000)}

	got := NewAnnualReconciler(testMapper()).CalculateYearEndCorrection(calc, period, tax.TaxpayerProfile{TaxStatus: "TK0"}, ytd)

	assert.True(t, got.BPJSEmployeeTotal.Equal(idr(3_000_000)))
	assert.True(t, got.NetIncome.Equal(idr(146_000_000)))
	assert.True(t, got.AnnualTax.Equal(idr(9_200_000)))
	assert.True(t, got.CorrectionAmount.Equal(idr(9_200_000)))
}
