package tax

import (
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBPJSCalculator_Compute(t *testing.T) {
	t.Parallel()

	rates := fixtures.GetDefaultBPJSRates()
	caps := fixtures.GetDefaultSalaryCaps()
	enrolled := tax.TaxpayerProfile{HealthInsuranceEnrolled: true, EmploymentInsuranceEnrolled: true}

	t.Run("caps health and pension bases", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(enrolled, idr(20_000_000), rates, caps)

		assert.True(t, got.HealthEmployee.Equal(idr(120_000)), "health employee = %s", got.HealthEmployee)
		assert.True(t, got.HealthEmployer.Equal(idr(480_000)))
		assert.True(t, got.JHTEmployee.Equal(idr(400_000)))
		assert.True(t, got.JHTEmployer.Equal(idr(740_000)))
		assert.True(t, got.JPEmployee.Equal(idr(90_776)))
		assert.True(t, got.JPEmployer.Equal(idr(181_552)))
		assert.True(t, got.JKKEmployer.Equal(idr(48_000)))
		assert.True(t, got.JKMEmployer.Equal(idr(60_000)))
		assert.True(t, got.TotalEmployee.Equal(idr(610_776)), "total employee = %s", got.TotalEmployee)
		assert.True(t, got.TotalEmployer.Equal(idr(1_509_552)), "total employer = %s", got.TotalEmployer)
	})

	t.Run("below caps", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(enrolled, idr(5_000_000), rates, caps)

		assert.True(t, got.HealthEmployee.Equal(idr(50_000)))
		assert.True(t, got.JPEmployee.Equal(idr(50_000)))
		assert.True(t, got.TotalEmployee.Equal(idr(200_000)))
	})

	t.Run("not enrolled", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(tax.TaxpayerProfile{}, idr(10_000_000), rates, caps)

		assert.True(t, got.TotalEmployee.IsZero())
		assert.True(t, got.TotalEmployer.IsZero())
	})

	t.Run("health only", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(tax.TaxpayerProfile{HealthInsuranceEnrolled: true}, idr(10_000_000), rates, caps)

		assert.True(t, got.TotalEmployee.Equal(idr(100_000)))
		assert.True(t, got.JHTEmployee.IsZero())
	})

	t.Run("negative base", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(enrolled, idr(-1), rates, caps)

		assert.True(t, got.TotalEmployee.IsZero())
		assert.True(t, got.TotalEmployer.IsZero())
	})

	t.Run("zero cap is uncapped", func(t *testing.T) {
		got := NewBPJSCalculator().Compute(enrolled, idr(20_000_000), rates, tax.SalaryCaps{})

		assert.True(t, got.HealthEmployee.Equal(idr(200_000)))
		assert.True(t, got.JPEmployee.Equal(decimal.NewFromInt(200_000)))
	})
}
