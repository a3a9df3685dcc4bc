package tax

import (
	"sort"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/shopspring/decimal"
)

// ProgressiveTax is the outcome of a bracket walk.
type ProgressiveTax struct {
	Total       decimal.Decimal
	Breakdown   []tax.BracketTax
	UsedDefault bool
}

// CalculateProgressiveTax walks brackets in ascending order over the taxable
// base. An empty table falls back to the statutory brackets.
func CalculateProgressiveTax(pkp decimal.Decimal, brackets []tax.TaxBracket) ProgressiveTax {
	result := ProgressiveTax{Total: decimal.Zero}
	if pkp.IsNegative() {
		pkp = decimal.Zero
	}
	if len(brackets) == 0 {
		brackets = fixtures.GetDefaultTaxBrackets()
		result.UsedDefault = true
	}

	sorted := make([]tax.TaxBracket, len(brackets))
	copy(sorted, brackets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].IncomeFrom.LessThan(sorted[j].IncomeFrom)
	})

	remaining := pkp
	for _, b := range sorted {
		if !remaining.IsPositive() {
			break
		}
		taxable := remaining
		if !b.IsOpenEnded() {
			taxable = decimal.Min(remaining, b.IncomeTo.Sub(b.IncomeFrom))
		}
		if !taxable.IsPositive() {
			continue
		}
		bracketTax := taxable.Mul(b.Rate).Div(hundred)
		result.Total = result.Total.Add(bracketTax)
		if !bracketTax.IsZero() {
			result.Breakdown = append(result.Breakdown, tax.BracketTax{Rate: b.Rate, Taxable: taxable, Tax: bracketTax})
		}
		remaining = remaining.Sub(taxable)
	}

	return result
}

type ProgressiveCalculator struct {
	mapper *CategoryMapper
}

func NewProgressiveCalculator(mapper *CategoryMapper) *ProgressiveCalculator {
	return &ProgressiveCalculator{mapper: mapper}
}

// CalculateMonthlyTaxProgressive annualizes the month's net income, applies
// the brackets and withholds one twelfth.
func (c *ProgressiveCalculator) CalculateMonthlyTaxProgressive(calc *calculation, period *tax.PayPeriod, profile tax.TaxpayerProfile) tax.TaxResult {
	gross := calc.nonNegative("gross_pay", period.GrossPay)
	bpjs := calc.nonNegative("bpjs_employee_total", period.BPJSEmployeeTotal)

	occupational := occupationalExpense(gross)
	net := gross.Sub(occupational).Sub(bpjs)
	annualNet := net.Mul(twelve)
	ptkp := calc.ptkp(c.mapper, profile.TaxStatus)
	pkp := decimal.Max(annualNet.Sub(ptkp), decimal.Zero)

	progressive := CalculateProgressiveTax(pkp, calc.settings.TaxBrackets)
	if progressive.UsedDefault {
		calc.warn(WarnBracketFallback, "no progressive brackets configured, using statutory defaults")
	}
	monthlyTax := roundIDR(progressive.Total.Div(twelve))

	period.OccupationalExpense = occupational
	period.NetIncome = net
	period.IsUsingTER = false
	period.TERRate = decimal.Zero
	period.TERCategory = ""
	period.MonthlyGrossForTER = decimal.Zero
	period.AnnualTaxableIncome = annualNet
	period.MonthlyTax = monthlyTax
	period.TaxDeduction = monthlyTax
	period.CorrectionAmount = decimal.Zero

	return tax.TaxResult{
		Method:              tax.MethodProgressive,
		GrossPay:            gross,
		OccupationalExpense: occupational,
		BPJSEmployeeTotal:   bpjs,
		NetIncome:           net,
		AnnualTaxableIncome: annualNet,
		PTKP:                ptkp,
		PKP:                 pkp,
		AnnualTax:           progressive.Total,
		MonthlyTax:          monthlyTax,
		Breakdown:           progressive.Breakdown,
		AnnualDetection:     tax.AnnualDetection{OriginalGross: gross, MonthlyValue: gross},
	}
}
