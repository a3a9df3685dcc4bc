package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

type TaxService interface {
	// Core calculations
	ComputePeriodTax(ctx context.Context, period *PayPeriod, profile TaxpayerProfile) (TaxResult, error)
	ComputeYearEndCorrection(ctx context.Context, period *PayPeriod, profile TaxpayerProfile, ytd YearToDateAggregate) (TaxResult, error)
	ComputeBPJS(ctx context.Context, profile TaxpayerProfile, baseSalary decimal.Decimal) (ContributionResult, error)
	RefreshCategoryMapping(ctx context.Context, status string) (TERCategory, error)

	// Payslip flow
	CalculatePayslip(ctx context.Context, req CalculatePayslipRequest) (PayslipCalculationResponse, error)
	SubmitPeriod(ctx context.Context, req SubmitPeriodRequest) (MonthlyTaxDetail, error)
	RefreshYTD(ctx context.Context, employeeID string, year, beforeMonth int) (YearToDateAggregate, error)

	// Cache
	ClearCache(ctx context.Context, namespace string)
	WarmCache(ctx context.Context) error
}
