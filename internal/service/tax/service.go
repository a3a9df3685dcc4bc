package tax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	nsSettings  = "settings"
	nsYTD       = "ytd"
	settingsKey = nsSettings + ":current"
)

// knownStatuses are warmed by WarmCache in addition to the configured table.
var knownStatuses = []string{"TK0", "TK1", "TK2", "TK3", "K0", "K1", "K2", "K3", "HB0", "HB1", "HB2", "HB3"}

type loadedSettings struct {
	Settings  tax.Settings
	Defaulted bool
}

type TaxServiceImpl struct {
	settingsRepo tax.SettingsRepository
	profileRepo  tax.TaxpayerProfileRepository
	ytdRepo      tax.YTDRepository
	cache        *cache.Store
	cfg          config.TaxConfig
	logger       *slog.Logger

	mapper      *CategoryMapper
	selector    *MethodSelector
	ter         *TERCalculator
	progressive *ProgressiveCalculator
	reconciler  *AnnualReconciler
	bpjs        *BPJSCalculator
}

func NewTaxService(
	settingsRepo tax.SettingsRepository,
	profileRepo tax.TaxpayerProfileRepository,
	ytdRepo tax.YTDRepository,
	store *cache.Store,
	cfg config.TaxConfig,
	logger *slog.Logger,
) tax.TaxService {
	if logger == nil {
		logger = slog.Default()
	}
	mapper := NewCategoryMapper(store, cfg.CategoryCacheTTL, cfg.PTKPCacheTTL)
	return &TaxServiceImpl{
		settingsRepo: settingsRepo,
		profileRepo:  profileRepo,
		ytdRepo:      ytdRepo,
		cache:        store,
		cfg:          cfg,
		logger:       logger,
		mapper:       mapper,
		selector:     NewMethodSelector(store, cfg.MethodCacheTTL),
		ter:          NewTERCalculator(store, cfg.TERRateCacheTTL, mapper, DetectionThresholdsFromConfig(cfg)),
		progressive:  NewProgressiveCalculator(mapper),
		reconciler:   NewAnnualReconciler(mapper),
		bpjs:         NewBPJSCalculator(),
	}
}

// NewCacheStore builds the cache used by the service with per-namespace
// sweep lifetimes and Prometheus hit/miss reporting.
func NewCacheStore(cfg config.TaxConfig, opts ...cache.Option) *cache.Store {
	base := []cache.Option{
		cache.WithObserver(metrics.CacheObserver{}),
		cache.WithNamespaceTTL(nsSettings, cfg.SettingsCacheTTL),
		cache.WithNamespaceTTL(nsTERRate, cfg.TERRateCacheTTL),
		cache.WithNamespaceTTL(nsPTKP, cfg.PTKPCacheTTL),
		cache.WithNamespaceTTL(nsYTD, cfg.YTDCacheTTL),
	}
	return cache.New(append(base, opts...)...)
}

// ========== SETTINGS ==========

func (s *TaxServiceImpl) loadSettings(ctx context.Context) (loadedSettings, error) {
	if v, ok := s.cache.Get(settingsKey); ok {
		if loaded, ok := v.(loadedSettings); ok {
			return loaded, nil
		}
	}

	var loaded loadedSettings
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, tax.ErrSettingsNotFound) {
			return loadedSettings{}, tax.NewDependencyError("load_settings", "", fmt.Errorf("%w: %w", tax.ErrSettingsUnavailable, err))
		}
		s.logger.Warn("Tax settings not found, using defaults")
		loaded = loadedSettings{Settings: fixtures.GetDefaultSettings(), Defaulted: true}
	} else {
		loaded = loadedSettings{Settings: fixtures.WithDefaults(settings)}
	}

	// lookups resolved against a previous document are stale now
	for _, ns := range []string{nsCategory, nsPTKP, nsTERRate, nsMethod} {
		s.cache.Clear(ns)
	}
	s.cache.Set(settingsKey, loaded, s.cfg.SettingsCacheTTL)
	return loaded, nil
}

func (s *TaxServiceImpl) newCalculation(ctx context.Context, employeeID string) (*calculation, error) {
	loaded, err := s.loadSettings(ctx)
	if err != nil {
		return nil, err
	}
	calc := newCalculation(employeeID, loaded.Settings, s.logger)
	if loaded.Defaulted {
		calc.warn(WarnSettingsDefault, "tax settings not found, using built-in defaults")
	}
	return calc, nil
}

// ========== CORE CALCULATIONS ==========

func (s *TaxServiceImpl) ComputePeriodTax(ctx context.Context, period *tax.PayPeriod, profile tax.TaxpayerProfile) (tax.TaxResult, error) {
	const op = "compute_period_tax"
	if err := validatePeriod(op, period); err != nil {
		return tax.TaxResult{}, err
	}
	// the final period is reconciled against the year, never withheld as a plain month
	if period.Month == 12 {
		return tax.TaxResult{}, tax.NewValidationError(op, "month", period.EmployeeID,
			fmt.Errorf("%w: month 12 requires the year-end correction", tax.ErrInvalidInput))
	}
	calc, err := s.newCalculation(ctx, period.EmployeeID)
	if err != nil {
		return tax.TaxResult{}, err
	}

	return s.run(op, calc, period, profile, func(profile tax.TaxpayerProfile) tax.TaxResult {
		if s.selector.ShouldUseTER(profile, period.Month, calc.settings) {
			return s.ter.CalculateMonthlyTaxTER(calc, period, profile)
		}
		return s.progressive.CalculateMonthlyTaxProgressive(calc, period, profile)
	})
}

func (s *TaxServiceImpl) ComputeYearEndCorrection(ctx context.Context, period *tax.PayPeriod, profile tax.TaxpayerProfile, ytd tax.YearToDateAggregate) (tax.TaxResult, error) {
	const op = "compute_year_end_correction"
	if err := validatePeriod(op, period); err != nil {
		return tax.TaxResult{}, err
	}
	if ytd.Year != 0 && ytd.Year != period.Year {
		return tax.TaxResult{}, tax.NewValidationError(op, "ytd.year", period.EmployeeID,
			fmt.Errorf("%w: aggregate year %d does not match period year %d", tax.ErrInvalidInput, ytd.Year, period.Year))
	}
	calc, err := s.newCalculation(ctx, period.EmployeeID)
	if err != nil {
		return tax.TaxResult{}, err
	}

	return s.run(op, calc, period, profile, func(profile tax.TaxpayerProfile) tax.TaxResult {
		return s.reconciler.CalculateYearEndCorrection(calc, period, profile, ytd)
	})
}

// run executes one calculation. On panic the period is restored and a
// calculation error is returned.
func (s *TaxServiceImpl) run(op string, calc *calculation, period *tax.PayPeriod, profile tax.TaxpayerProfile, compute func(tax.TaxpayerProfile) tax.TaxResult) (result tax.TaxResult, err error) {
	snapshot := *period
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			*period = snapshot
			s.logger.Error("Tax calculation failed", "op", op, "employee_id", period.EmployeeID, "panic", p)
			metrics.ObserveCalculation("unknown", "failed", time.Since(start))
			result = tax.TaxResult{}
			err = tax.NewCalculationError(op, period.EmployeeID, fmt.Errorf("%w: %v", tax.ErrCalculationFailed, p))
		}
	}()

	profile = s.prepareProfile(calc, profile)
	if profile.IsFemaleJointFiler {
		result = s.jointFilerResult(period)
	} else {
		result = compute(profile)
	}

	result.CalculationID = uuid.Must(uuid.NewV7()).String()
	result.EmployeeID = period.EmployeeID
	result.Year = period.Year
	result.Month = period.Month
	result.Warnings = calc.warnings
	result.NoteText = ComposeTaxNote(result, profile)
	period.CalculationNote = EmbedTaxNote(period.CalculationNote, result.NoteText)

	metrics.ObserveCalculation(methodLabel(result), "success", time.Since(start))
	s.logger.Debug("Tax calculated",
		"op", op,
		"employee_id", period.EmployeeID,
		"method", result.Method,
		"monthly_tax", result.MonthlyTax.String(),
		"correction", result.CorrectionAmount.String(),
		"warnings", len(result.Warnings),
	)
	return result, nil
}

// prepareProfile defaults a missing status to TK0 and flags a missing NPWP.
func (s *TaxServiceImpl) prepareProfile(calc *calculation, profile tax.TaxpayerProfile) tax.TaxpayerProfile {
	profile.TaxStatus = NormalizeTaxStatus(profile.TaxStatus)
	if profile.TaxStatus == "" {
		calc.warn(WarnMissingTaxStatus, "tax status not set, using TK0")
		profile.TaxStatus = "TK0"
	}
	if !profile.HasTaxID && !profile.IsFemaleJointFiler {
		calc.warn(WarnMissingTaxID, "employee has no NPWP registered")
	}
	return profile
}

// jointFilerResult withholds nothing: the tax is settled under the husband's NPWP.
func (s *TaxServiceImpl) jointFilerResult(period *tax.PayPeriod) tax.TaxResult {
	period.OccupationalExpense = decimal.Zero
	period.NetIncome = decimal.Zero
	period.IsUsingTER = false
	period.TERRate = decimal.Zero
	period.TERCategory = ""
	period.MonthlyGrossForTER = decimal.Zero
	period.AnnualTaxableIncome = decimal.Zero
	period.MonthlyTax = decimal.Zero
	period.CorrectionAmount = decimal.Zero
	period.TaxDeduction = decimal.Zero

	s.logger.Info(jointFilerNote, "employee_id", period.EmployeeID)
	return tax.TaxResult{
		GrossPay:        period.GrossPay,
		IsJointFiler:    true,
		AnnualDetection: tax.AnnualDetection{OriginalGross: period.GrossPay, MonthlyValue: period.GrossPay},
	}
}

func (s *TaxServiceImpl) ComputeBPJS(ctx context.Context, profile tax.TaxpayerProfile, baseSalary decimal.Decimal) (tax.ContributionResult, error) {
	loaded, err := s.loadSettings(ctx)
	if err != nil {
		return tax.ContributionResult{}, err
	}
	if baseSalary.IsNegative() {
		s.logger.Warn("BPJS base salary is negative, treated as zero", "employee_id", profile.EmployeeID, "value", baseSalary.String())
	}
	return s.bpjs.Compute(profile, baseSalary, loaded.Settings.BPJSRates, loaded.Settings.SalaryCaps), nil
}

func (s *TaxServiceImpl) RefreshCategoryMapping(ctx context.Context, status string) (tax.TERCategory, error) {
	loaded, err := s.loadSettings(ctx)
	if err != nil {
		return "", err
	}
	return s.mapper.RefreshCategoryMapping(status, loaded.Settings), nil
}

// ========== PAYSLIP FLOW ==========

func (s *TaxServiceImpl) CalculatePayslip(ctx context.Context, req tax.CalculatePayslipRequest) (tax.PayslipCalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return tax.PayslipCalculationResponse{}, err
	}

	profile, err := s.profileRepo.GetTaxpayerProfile(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, tax.ErrProfileNotFound) {
			return tax.PayslipCalculationResponse{}, err
		}
		return tax.PayslipCalculationResponse{}, tax.NewDependencyError("get_taxpayer_profile", req.EmployeeID, err)
	}

	base := req.BasicSalary
	if req.BPJSBase != nil {
		base = *req.BPJSBase
	}
	contributions, err := s.ComputeBPJS(ctx, profile, base)
	if err != nil {
		return tax.PayslipCalculationResponse{}, err
	}

	period := tax.PayPeriod{
		EmployeeID:            req.EmployeeID,
		Year:                  req.Year,
		Month:                 req.Month,
		GrossPay:              req.GrossPay,
		BasicSalary:           req.BasicSalary,
		TotalEarnings:         req.TotalEarnings,
		BPJSEmployeeTotal:     contributions.TotalEmployee,
		BypassAnnualDetection: req.BypassAnnualDetection,
		CalculationNote:       req.CalculationNote,
	}

	var result tax.TaxResult
	if req.Month == 12 {
		ytd, ytdErr := s.yearToDate(ctx, req.EmployeeID, req.Year, req.Month)
		if ytdErr != nil {
			return tax.PayslipCalculationResponse{}, ytdErr
		}
		result, err = s.ComputeYearEndCorrection(ctx, &period, profile, ytd)
	} else {
		result, err = s.ComputePeriodTax(ctx, &period, profile)
	}
	if err != nil {
		return tax.PayslipCalculationResponse{}, err
	}

	return tax.PayslipCalculationResponse{
		Period: tax.NewPayPeriodResponse(period),
		Tax:    result,
		BPJS:   contributions,
	}, nil
}

func (s *TaxServiceImpl) SubmitPeriod(ctx context.Context, req tax.SubmitPeriodRequest) (tax.MonthlyTaxDetail, error) {
	if err := req.Validate(); err != nil {
		return tax.MonthlyTaxDetail{}, err
	}

	saved, err := s.ytdRepo.UpsertMonthlyDetail(ctx, req.ToDetail())
	if err != nil {
		return tax.MonthlyTaxDetail{}, tax.NewDependencyError("upsert_monthly_detail", req.EmployeeID, err)
	}

	s.invalidateYTD(req.EmployeeID, req.Year)
	s.logger.Info("Monthly tax detail recorded", "employee_id", req.EmployeeID, "year", req.Year, "month", req.Month)
	return saved, nil
}

// RefreshYTD drops cached aggregates of the employee's year and reads them again.
func (s *TaxServiceImpl) RefreshYTD(ctx context.Context, employeeID string, year, beforeMonth int) (tax.YearToDateAggregate, error) {
	var errs validator.ValidationErrors
	if validator.IsEmpty(employeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidTaxYear(year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid tax year"})
	}
	// 13 aggregates the whole year
	if beforeMonth < 1 || beforeMonth > 13 {
		errs = append(errs, validator.ValidationError{Field: "before_month", Message: "must be between 1 and 13"})
	}
	if len(errs) > 0 {
		return tax.YearToDateAggregate{}, errs
	}

	s.invalidateYTD(employeeID, year)
	return s.yearToDate(ctx, employeeID, year, beforeMonth)
}

func (s *TaxServiceImpl) yearToDate(ctx context.Context, employeeID string, year, beforeMonth int) (tax.YearToDateAggregate, error) {
	key := fmt.Sprintf("%s:%s:%d:%d", nsYTD, employeeID, year, beforeMonth)
	return cache.GetOrLoad(s.cache, key, s.cfg.YTDCacheTTL, func() (tax.YearToDateAggregate, error) {
		ytd, err := s.ytdRepo.GetYTDAggregate(ctx, employeeID, year, beforeMonth)
		if err != nil {
			return tax.YearToDateAggregate{}, tax.NewDependencyError("get_ytd_aggregate", employeeID, err)
		}
		return ytd, nil
	})
}

func (s *TaxServiceImpl) invalidateYTD(employeeID string, year int) {
	s.cache.DeletePrefix(fmt.Sprintf("%s:%s:%d:", nsYTD, employeeID, year))
}

// ========== CACHE ==========

func (s *TaxServiceImpl) ClearCache(ctx context.Context, namespace string) {
	s.cache.Clear(namespace)
	s.logger.Info("Tax cache cleared", "namespace", namespace)
}

// WarmCache reloads settings and resolves category and PTKP for every known status.
func (s *TaxServiceImpl) WarmCache(ctx context.Context) error {
	s.cache.Clear(nsSettings)
	loaded, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}

	statuses := make(map[string]struct{}, len(knownStatuses))
	for _, status := range knownStatuses {
		statuses[status] = struct{}{}
	}
	for status := range loaded.Settings.PTKPTable {
		statuses[NormalizeTaxStatus(status)] = struct{}{}
	}
	for status := range statuses {
		s.mapper.RefreshCategoryMapping(status, loaded.Settings)
		s.mapper.GetPTKPAmount(status, loaded.Settings)
	}

	s.logger.Info("Tax cache warmed", "statuses", len(statuses), "defaulted", loaded.Defaulted)
	return nil
}

func validatePeriod(op string, period *tax.PayPeriod) error {
	if period == nil {
		return tax.NewValidationError(op, "period", "", fmt.Errorf("%w: period is required", tax.ErrInvalidInput))
	}
	if !validator.IsValidMonth(period.Month) {
		return tax.NewValidationError(op, "month", period.EmployeeID, fmt.Errorf("%w: month %d out of range", tax.ErrInvalidInput, period.Month))
	}
	if !validator.IsValidTaxYear(period.Year) {
		return tax.NewValidationError(op, "year", period.EmployeeID, fmt.Errorf("%w: year %d out of range", tax.ErrInvalidInput, period.Year))
	}
	return nil
}

func methodLabel(result tax.TaxResult) string {
	switch {
	case result.IsJointFiler:
		return "joint_filer"
	case result.IsYearEnd:
		return "year_end"
	default:
		return string(result.Method)
	}
}
