package tax

import (
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// AnnualReconciler computes the year-end (December) correction.
type AnnualReconciler struct {
	mapper *CategoryMapper
}

func NewAnnualReconciler(mapper *CategoryMapper) *AnnualReconciler {
	return &AnnualReconciler{mapper: mapper}
}

// CalculateYearEndCorrection recomputes the full-year tax progressively and
// returns the difference from what was already withheld. A positive
// correction is underpaid tax due this period, a negative one is overpaid.
func (r *AnnualReconciler) CalculateYearEndCorrection(calc *calculation, period *tax.PayPeriod, profile tax.TaxpayerProfile, ytd tax.YearToDateAggregate) tax.TaxResult {
	gross := calc.nonNegative("gross_pay", period.GrossPay)
	bpjs := calc.nonNegative("bpjs_employee_total", period.BPJSEmployeeTotal)
	ytdGross := calc.nonNegative("ytd.gross", ytd.Gross)
	ytdBPJS := calc.nonNegative("ytd.bpjs", ytd.BPJS)

	annualGross := ytdGross.Add(gross)
	annualBPJS := ytdBPJS.Add(bpjs)
	// cap applies once per year here, not 12 x the monthly cap
	annualOccupational := occupationalExpense(annualGross)
	annualNet := annualGross.Sub(annualOccupational).Sub(annualBPJS)
	ptkp := calc.ptkp(r.mapper, profile.TaxStatus)
	pkp := decimal.Max(annualNet.Sub(ptkp), decimal.Zero)

	progressive := CalculateProgressiveTax(pkp, calc.settings.TaxBrackets)
	if progressive.UsedDefault {
		calc.warn(WarnBracketFallback, "no progressive brackets configured, using statutory defaults")
	}
	correction := roundIDR(progressive.Total.Sub(ytd.TaxPaid))

	period.OccupationalExpense = annualOccupational
	period.NetIncome = annualNet
	period.IsUsingTER = false
	period.TERRate = decimal.Zero
	period.TERCategory = ""
	period.MonthlyGrossForTER = decimal.Zero
	period.AnnualTaxableIncome = annualNet
	period.MonthlyTax = decimal.Zero
	period.CorrectionAmount = correction
	// the correction replaces the period's tax line
	period.TaxDeduction = correction

	return tax.TaxResult{
		Method:              tax.MethodProgressive,
		GrossPay:            annualGross,
		OccupationalExpense: annualOccupational,
		BPJSEmployeeTotal:   annualBPJS,
		NetIncome:           annualNet,
		AnnualTaxableIncome: annualNet,
		PTKP:                ptkp,
		PKP:                 pkp,
		AnnualTax:           progressive.Total,
		YTDTaxPaid:          ytd.TaxPaid,
		CorrectionAmount:    correction,
		Breakdown:           progressive.Breakdown,
		IsYearEnd:           true,
		AnnualDetection:     tax.AnnualDetection{OriginalGross: gross, MonthlyValue: gross},
	}
}
