package tax

import (
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type BPJSCalculator struct {
}

func NewBPJSCalculator() *BPJSCalculator {
	return &BPJSCalculator{}
}

// Compute returns BPJS contributions for a monthly base salary.
// Health and pension bases are capped; old-age, accident and death are not.
func (c *BPJSCalculator) Compute(profile tax.TaxpayerProfile, baseSalary decimal.Decimal, rates tax.BPJSRates, caps tax.SalaryCaps) tax.ContributionResult {
	result := tax.ContributionResult{}
	if baseSalary.IsNegative() {
		baseSalary = decimal.Zero
	}

	if profile.HealthInsuranceEnrolled {
		healthBase := capBase(baseSalary, caps.Health)
		result.HealthEmployee = contribution(healthBase, rates.HealthEmployee)
		result.HealthEmployer = contribution(healthBase, rates.HealthEmployer)
	}

	if profile.EmploymentInsuranceEnrolled {
		pensionBase := capBase(baseSalary, caps.Pension)
		result.JHTEmployee = contribution(baseSalary, rates.JHTEmployee)
		result.JHTEmployer = contribution(baseSalary, rates.JHTEmployer)
		result.JPEmployee = contribution(pensionBase, rates.JPEmployee)
		result.JPEmployer = contribution(pensionBase, rates.JPEmployer)
		result.JKKEmployer = contribution(baseSalary, rates.JKKEmployer)
		result.JKMEmployer = contribution(baseSalary, rates.JKMEmployer)
	}

	result.TotalEmployee = result.HealthEmployee.Add(result.JHTEmployee).Add(result.JPEmployee)
	result.TotalEmployer = result.HealthEmployer.Add(result.JHTEmployer).Add(result.JPEmployer).
		Add(result.JKKEmployer).Add(result.JKMEmployer)

	return result
}

// capBase applies a cap; a zero or negative cap means uncapped.
func capBase(base, limit decimal.Decimal) decimal.Decimal {
	if limit.IsPositive() && base.GreaterThan(limit) {
		return limit
	}
	return base
}

func contribution(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Mul(ratePercent).Div(hundred).RoundBank(2)
}
