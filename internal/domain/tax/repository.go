package tax

import "context"

// TaxpayerProfileRepository reads tax attributes of employees.
type TaxpayerProfileRepository interface {
	GetTaxpayerProfile(ctx context.Context, employeeID string) (TaxpayerProfile, error)
}

// SettingsRepository reads the tax configuration document.
// Returns ErrSettingsNotFound when no document exists.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (Settings, error)
}

// YTDRepository aggregates and records monthly withholding.
type YTDRepository interface {
	// GetYTDAggregate sums months strictly before beforeMonth of the given year.
	GetYTDAggregate(ctx context.Context, employeeID string, year, beforeMonth int) (YearToDateAggregate, error)
	UpsertMonthlyDetail(ctx context.Context, detail MonthlyTaxDetail) (MonthlyTaxDetail, error)
}
