package tax

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
	"github.com/shopspring/decimal"
)

const nsTERRate = "ter_rate"

var driftTolerance = decimal.RequireFromString("0.01")

type terRateLookup struct {
	Rate  decimal.Decimal
	Found bool
}

type TERCalculator struct {
	cache      *cache.Store
	rateTTL    time.Duration
	mapper     *CategoryMapper
	thresholds DetectionThresholds
}

func NewTERCalculator(c *cache.Store, rateTTL time.Duration, mapper *CategoryMapper, thresholds DetectionThresholds) *TERCalculator {
	return &TERCalculator{cache: c, rateTTL: rateTTL, mapper: mapper, thresholds: thresholds}
}

// CalculateMonthlyTaxTER applies the flat effective rate of the employee's
// category to the monthly gross and writes the TER fields onto period.
func (c *TERCalculator) CalculateMonthlyTaxTER(calc *calculation, period *tax.PayPeriod, profile tax.TaxpayerProfile) tax.TaxResult {
	gross := calc.nonNegative("gross_pay", period.GrossPay)
	bpjs := calc.nonNegative("bpjs_employee_total", period.BPJSEmployeeTotal)

	detection := DetectAnnualIncome(gross, period.TotalEarnings, period.BasicSalary, period.BypassAnnualDetection, c.thresholds)
	monthly := detection.MonthlyValue
	if detection.IsAnnual {
		calc.warn(WarnAnnualDetected, "gross looks like an annual figure, using monthly value "+monthly.String(),
			"reason", detection.Reason, "original", gross.String(), "monthly", monthly.String())
	}

	// fields left by an earlier TER run are checked before they are overwritten
	if period.IsUsingTER {
		stored := *period
		for _, discrepancy := range c.VerifyTERFields(&stored, profile, calc.settings) {
			calc.warn(WarnIntegrityDrift, discrepancy)
		}
	}

	category := c.mapper.MapTaxStatusToTERCategory(profile.TaxStatus, calc.settings)
	rate, found := c.LookupRate(category, monthly, calc.settings)
	if !found {
		calc.warn(WarnTERRateFallback,
			fmt.Sprintf("no TER bracket for category %s at %s, using fixed rate %s%%", category, monthly, rate),
			"category", string(category), "gross", monthly.String(), "rate", rate.String())
	}

	monthlyTax := roundIDR(monthly.Mul(rate).Div(hundred))
	occupational := occupationalExpense(monthly)

	period.OccupationalExpense = occupational
	period.NetIncome = monthly.Sub(occupational).Sub(bpjs)
	period.IsUsingTER = true
	period.TERRate = rate.RoundBank(2)
	period.TERCategory = category
	period.MonthlyGrossForTER = monthly
	period.AnnualTaxableIncome = monthly.Mul(twelve)
	period.MonthlyTax = monthlyTax
	period.TaxDeduction = monthlyTax
	period.CorrectionAmount = decimal.Zero

	return tax.TaxResult{
		Method:              tax.MethodTER,
		IsUsingTER:          true,
		TERRate:             period.TERRate,
		TERCategory:         period.TERCategory,
		GrossPay:            gross,
		MonthlyGrossForTER:  period.MonthlyGrossForTER,
		OccupationalExpense: period.OccupationalExpense,
		BPJSEmployeeTotal:   bpjs,
		NetIncome:           period.NetIncome,
		AnnualTaxableIncome: period.AnnualTaxableIncome,
		MonthlyTax:          period.MonthlyTax,
		AnnualDetection:     detection,
	}
}

// LookupRate returns the TER percentage for a monthly gross. When no row
// matches it returns the fixed category rate and found=false.
func (c *TERCalculator) LookupRate(category tax.TERCategory, gross decimal.Decimal, settings tax.Settings) (decimal.Decimal, bool) {
	key := fmt.Sprintf("%s:%s:%s", nsTERRate, category, gross.StringFixed(2))
	if v, ok := c.cache.Get(key); ok {
		if lookup, ok := v.(terRateLookup); ok {
			return lookup.Rate, lookup.Found
		}
	}

	rate, found := FindTERRate(settings.TERBracketsFor(category), gross)
	if !found {
		rate = fallbackTERRate(category)
	}
	c.cache.Set(key, terRateLookup{Rate: rate, Found: found}, c.rateTTL)
	return rate, found
}

// FindTERRate picks the matching row with the highest lower bound.
func FindTERRate(rows []tax.TERBracket, gross decimal.Decimal) (decimal.Decimal, bool) {
	sorted := make([]tax.TERBracket, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IncomeFrom.GreaterThan(sorted[j].IncomeFrom)
	})
	for _, row := range sorted {
		if row.Contains(gross) {
			return row.Rate, true
		}
	}
	return decimal.Zero, false
}

func fallbackTERRate(category tax.TERCategory) decimal.Decimal {
	rates := fixtures.GetFallbackTERRates()
	if rate, ok := rates[category]; ok {
		return rate
	}
	return rates[tax.TERCategoryC]
}

// VerifyTERFields recomputes the derived TER fields from the stored monthly
// gross and overwrites any that drifted by more than 0.01. It returns one
// message per corrected field.
func (c *TERCalculator) VerifyTERFields(period *tax.PayPeriod, profile tax.TaxpayerProfile, settings tax.Settings) []string {
	var discrepancies []string

	expectedAnnual := period.MonthlyGrossForTER.Mul(twelve)
	if drifted(period.AnnualTaxableIncome, expectedAnnual) {
		discrepancies = append(discrepancies, fmt.Sprintf("annual_taxable_income corrected from %s to %s", period.AnnualTaxableIncome, expectedAnnual))
		period.AnnualTaxableIncome = expectedAnnual
	}

	expectedCategory := c.mapper.MapTaxStatusToTERCategory(profile.TaxStatus, settings)
	if period.TERCategory != expectedCategory {
		discrepancies = append(discrepancies, fmt.Sprintf("ter_category corrected from %q to %q", period.TERCategory, expectedCategory))
		period.TERCategory = expectedCategory
	}

	rate, _ := c.LookupRate(expectedCategory, period.MonthlyGrossForTER, settings)
	expectedRate := rate.RoundBank(2)
	if drifted(period.TERRate, expectedRate) {
		discrepancies = append(discrepancies, fmt.Sprintf("ter_rate corrected from %s to %s", period.TERRate, expectedRate))
		period.TERRate = expectedRate
	}

	expectedTax := roundIDR(period.MonthlyGrossForTER.Mul(period.TERRate).Div(hundred))
	if drifted(period.MonthlyTax, expectedTax) {
		discrepancies = append(discrepancies, fmt.Sprintf("monthly_tax corrected from %s to %s", period.MonthlyTax, expectedTax))
		period.MonthlyTax = expectedTax
	}
	if drifted(period.TaxDeduction, period.MonthlyTax) {
		discrepancies = append(discrepancies, fmt.Sprintf("tax deduction corrected from %s to %s", period.TaxDeduction, period.MonthlyTax))
		period.TaxDeduction = period.MonthlyTax
	}

	return discrepancies
}

func drifted(stored, expected decimal.Decimal) bool {
	return stored.Sub(expected).Abs().GreaterThan(driftTolerance)
}
