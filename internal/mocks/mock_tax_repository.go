package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
)

// MockSettingsRepository is a mock implementation of tax.SettingsRepository.
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) GetSettings(ctx context.Context) (tax.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(tax.Settings), args.Error(1)
}

// MockTaxpayerProfileRepository is a mock implementation of tax.TaxpayerProfileRepository.
type MockTaxpayerProfileRepository struct {
	mock.Mock
}

func (m *MockTaxpayerProfileRepository) GetTaxpayerProfile(ctx context.Context, employeeID string) (tax.TaxpayerProfile, error) {
	args := m.Called(ctx, employeeID)
	return args.Get(0).(tax.TaxpayerProfile), args.Error(1)
}

// MockYTDRepository is a mock implementation of tax.YTDRepository.
type MockYTDRepository struct {
	mock.Mock
}

func (m *MockYTDRepository) GetYTDAggregate(ctx context.Context, employeeID string, year, beforeMonth int) (tax.YearToDateAggregate, error) {
	args := m.Called(ctx, employeeID, year, beforeMonth)
	return args.Get(0).(tax.YearToDateAggregate), args.Error(1)
}

func (m *MockYTDRepository) UpsertMonthlyDetail(ctx context.Context, detail tax.MonthlyTaxDetail) (tax.MonthlyTaxDetail, error) {
	args := m.Called(ctx, detail)
	return args.Get(0).(tax.MonthlyTaxDetail), args.Error(1)
}
