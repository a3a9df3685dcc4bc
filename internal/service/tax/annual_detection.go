package tax

import (
	"fmt"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// DetectionThresholds are policy values for spotting an annual figure
// supplied where a monthly one was expected.
type DetectionThresholds struct {
	EarningsFactor    decimal.Decimal
	AbsoluteThreshold decimal.Decimal
	BasicFactor       decimal.Decimal
	RatioMin          decimal.Decimal
	RatioMax          decimal.Decimal
}

func DetectionThresholdsFromConfig(cfg config.TaxConfig) DetectionThresholds {
	return DetectionThresholds{
		EarningsFactor:    cfg.AnnualEarningsFactor,
		AbsoluteThreshold: cfg.AnnualAbsoluteThreshold,
		BasicFactor:       cfg.AnnualBasicFactor,
		RatioMin:          cfg.AnnualRatioMin,
		RatioMax:          cfg.AnnualRatioMax,
	}
}

// DetectAnnualIncome checks gross against total earnings, an absolute
// threshold and basic salary, in that order. A detection whose monthly value
// would not be positive is discarded.
func DetectAnnualIncome(gross, totalEarnings, basicSalary decimal.Decimal, bypass bool, th DetectionThresholds) tax.AnnualDetection {
	notAnnual := tax.AnnualDetection{OriginalGross: gross, MonthlyValue: gross}
	if bypass || !gross.IsPositive() {
		return notAnnual
	}

	perMonth := gross.Div(twelve).RoundBank(2)
	var monthly decimal.Decimal
	var reason string

	switch {
	case totalEarnings.IsPositive() && gross.GreaterThan(totalEarnings.Mul(th.EarningsFactor)):
		reason = fmt.Sprintf("gross %s exceeds %sx total earnings %s", gross, th.EarningsFactor, totalEarnings)
		monthly = smallerPositiveOr(totalEarnings, gross, perMonth)

	case gross.GreaterThan(th.AbsoluteThreshold):
		reason = fmt.Sprintf("gross %s exceeds absolute threshold %s", gross, th.AbsoluteThreshold)
		monthly = perMonth

	case basicSalary.IsPositive() && gross.GreaterThan(basicSalary.Mul(th.BasicFactor)):
		ratio := gross.Div(basicSalary)
		reason = fmt.Sprintf("gross %s exceeds %sx basic salary %s (ratio %s)", gross, th.BasicFactor, basicSalary, ratio.Round(2))
		if ratio.GreaterThanOrEqual(th.RatioMin) && ratio.LessThanOrEqual(th.RatioMax) {
			monthly = perMonth
		} else {
			monthly = smallerPositiveOr(totalEarnings, gross, perMonth)
		}

	default:
		return notAnnual
	}

	if !monthly.IsPositive() {
		return notAnnual
	}
	return tax.AnnualDetection{
		IsAnnual:      true,
		Reason:        reason,
		OriginalGross: gross,
		MonthlyValue:  monthly,
	}
}

// smallerPositiveOr returns candidate when it is positive and below gross.
func smallerPositiveOr(candidate, gross, fallback decimal.Decimal) decimal.Decimal {
	if candidate.IsPositive() && candidate.LessThan(gross) {
		return candidate
	}
	return fallback
}
