package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
)

// MockTaxService is a mock implementation of tax.TaxService.
type MockTaxService struct {
	mock.Mock
}

func (m *MockTaxService) ComputePeriodTax(ctx context.Context, period *tax.PayPeriod, profile tax.TaxpayerProfile) (tax.TaxResult, error) {
	args := m.Called(ctx, period, profile)
	return args.Get(0).(tax.TaxResult), args.Error(1)
}

func (m *MockTaxService) ComputeYearEndCorrection(ctx context.Context, period *tax.PayPeriod, profile tax.TaxpayerProfile, ytd tax.YearToDateAggregate) (tax.TaxResult, error) {
	args := m.Called(ctx, period, profile, ytd)
	return args.Get(0).(tax.TaxResult), args.Error(1)
}

func (m *MockTaxService) ComputeBPJS(ctx context.Context, profile tax.TaxpayerProfile, baseSalary decimal.Decimal) (tax.ContributionResult, error) {
	args := m.Called(ctx, profile, baseSalary)
	return args.Get(0).(tax.ContributionResult), args.Error(1)
}

func (m *MockTaxService) RefreshCategoryMapping(ctx context.Context, status string) (tax.TERCategory, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(tax.TERCategory), args.Error(1)
}

func (m *MockTaxService) CalculatePayslip(ctx context.Context, req tax.CalculatePayslipRequest) (tax.PayslipCalculationResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(tax.PayslipCalculationResponse), args.Error(1)
}

func (m *MockTaxService) SubmitPeriod(ctx context.Context, req tax.SubmitPeriodRequest) (tax.MonthlyTaxDetail, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(tax.MonthlyTaxDetail), args.Error(1)
}

func (m *MockTaxService) RefreshYTD(ctx context.Context, employeeID string, year, beforeMonth int) (tax.YearToDateAggregate, error) {
	args := m.Called(ctx, employeeID, year, beforeMonth)
	return args.Get(0).(tax.YearToDateAggregate), args.Error(1)
}

func (m *MockTaxService) ClearCache(ctx context.Context, namespace string) {
	m.Called(ctx, namespace)
}

func (m *MockTaxService) WarmCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
