package tax

import (
	"strings"

	"github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== PROFILE / PERIOD DTOs ==========

type TaxpayerProfileRequest struct {
	EmployeeID                  string `json:"employee_id"`
	TaxStatus                   string `json:"tax_status"`
	HasTaxID                    bool   `json:"has_tax_id"`
	NPWP                        string `json:"npwp,omitempty"`
	OverrideMethod              string `json:"override_method,omitempty"`
	IsFemaleJointFiler          bool   `json:"is_female_joint_filer"`
	EmploymentCategory          string `json:"employment_category,omitempty"`
	HealthInsuranceEnrolled     bool   `json:"health_insurance_enrolled"`
	EmploymentInsuranceEnrolled bool   `json:"employment_insurance_enrolled"`
}

func (r *TaxpayerProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.TaxStatus != "" && !validator.IsValidTaxStatus(r.TaxStatus) {
		errs = append(errs, validator.ValidationError{Field: "tax_status", Message: "must be one of TK0-TK3, K0-K3, HB0-HB3"})
	}
	if r.NPWP != "" && !validator.IsValidNPWP(r.NPWP) {
		errs = append(errs, validator.ValidationError{Field: "npwp", Message: "must be 15 or 16 digits"})
	}
	if r.OverrideMethod != "" && !validator.IsInSlice(r.OverrideMethod, []string{string(MethodTER), string(MethodProgressive)}) {
		errs = append(errs, validator.ValidationError{Field: "override_method", Message: "must be 'TER' or 'Progressive'"})
	}
	if r.EmploymentCategory != "" && !validator.IsInSlice(r.EmploymentCategory, []string{string(EmploymentRegular), string(EmploymentFreelance)}) {
		errs = append(errs, validator.ValidationError{Field: "employment_category", Message: "must be 'regular' or 'freelance'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r TaxpayerProfileRequest) ToProfile() TaxpayerProfile {
	return TaxpayerProfile{
		EmployeeID:                  r.EmployeeID,
		TaxStatus:                   strings.ToUpper(strings.TrimSpace(r.TaxStatus)),
		HasTaxID:                    r.HasTaxID || r.NPWP != "",
		OverrideMethod:              CalculationMethod(r.OverrideMethod),
		IsFemaleJointFiler:          r.IsFemaleJointFiler,
		EmploymentCategory:          EmploymentCategory(r.EmploymentCategory),
		HealthInsuranceEnrolled:     r.HealthInsuranceEnrolled,
		EmploymentInsuranceEnrolled: r.EmploymentInsuranceEnrolled,
	}
}

type PayPeriodRequest struct {
	EmployeeID            string          `json:"employee_id"`
	Year                  int             `json:"year"`
	Month                 int             `json:"month"`
	GrossPay              decimal.Decimal `json:"gross_pay"`
	BasicSalary           decimal.Decimal `json:"basic_salary"`
	TotalEarnings         decimal.Decimal `json:"total_earnings"`
	BPJSEmployeeTotal     decimal.Decimal `json:"bpjs_employee_total"`
	BypassAnnualDetection bool            `json:"bypass_annual_detection"`
	CalculationNote       string          `json:"calculation_note,omitempty"`
}

func (r *PayPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidTaxYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid tax year"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r PayPeriodRequest) ToPeriod() PayPeriod {
	return PayPeriod{
		EmployeeID:            r.EmployeeID,
		Year:                  r.Year,
		Month:                 r.Month,
		GrossPay:              r.GrossPay,
		BasicSalary:           r.BasicSalary,
		TotalEarnings:         r.TotalEarnings,
		BPJSEmployeeTotal:     r.BPJSEmployeeTotal,
		BypassAnnualDetection: r.BypassAnnualDetection,
		CalculationNote:       r.CalculationNote,
	}
}

type PayPeriodResponse struct {
	EmployeeID          string          `json:"employee_id"`
	Year                int             `json:"year"`
	Month               int             `json:"month"`
	GrossPay            decimal.Decimal `json:"gross_pay"`
	BPJSEmployeeTotal   decimal.Decimal `json:"bpjs_employee_total"`
	OccupationalExpense decimal.Decimal `json:"occupational_expense"`
	NetIncome           decimal.Decimal `json:"net_income"`
	IsUsingTER          bool            `json:"is_using_ter"`
	TERRate             decimal.Decimal `json:"ter_rate"`
	TERCategory         TERCategory     `json:"ter_category,omitempty"`
	MonthlyGrossForTER  decimal.Decimal `json:"monthly_gross_for_ter"`
	AnnualTaxableIncome decimal.Decimal `json:"annual_taxable_income"`
	MonthlyTax          decimal.Decimal `json:"monthly_tax"`
	CorrectionAmount    decimal.Decimal `json:"correction_amount"`
	TaxDeduction        decimal.Decimal `json:"tax_deduction"`
	CalculationNote     string          `json:"calculation_note"`
}

func NewPayPeriodResponse(p PayPeriod) PayPeriodResponse {
	return PayPeriodResponse{
		EmployeeID:          p.EmployeeID,
		Year:                p.Year,
		Month:               p.Month,
		GrossPay:            p.GrossPay,
		BPJSEmployeeTotal:   p.BPJSEmployeeTotal,
		OccupationalExpense: p.OccupationalExpense,
		NetIncome:           p.NetIncome,
		IsUsingTER:          p.IsUsingTER,
		TERRate:             p.TERRate,
		TERCategory:         p.TERCategory,
		MonthlyGrossForTER:  p.MonthlyGrossForTER,
		AnnualTaxableIncome: p.AnnualTaxableIncome,
		MonthlyTax:          p.MonthlyTax,
		CorrectionAmount:    p.CorrectionAmount,
		TaxDeduction:        p.TaxDeduction,
		CalculationNote:     p.CalculationNote,
	}
}

type YTDRequest struct {
	Gross   decimal.Decimal `json:"gross"`
	BPJS    decimal.Decimal `json:"bpjs"`
	TaxPaid decimal.Decimal `json:"tax_paid"`
}

// ========== COMPUTE DTOs ==========

// ComputePeriodRequest carries a fully specified profile and period.
type ComputePeriodRequest struct {
	Profile TaxpayerProfileRequest `json:"profile"`
	Period  PayPeriodRequest       `json:"period"`
	YTD     *YTDRequest            `json:"ytd,omitempty"`
}

func (r *ComputePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if err := r.Profile.Validate(); err != nil {
		errs = append(errs, prefixErrors("profile", err)...)
	}
	if err := r.Period.Validate(); err != nil {
		errs = append(errs, prefixErrors("period", err)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// YearToDate returns the supplied aggregate, or a zero one.
func (r ComputePeriodRequest) YearToDate() YearToDateAggregate {
	ytd := YearToDateAggregate{
		EmployeeID:  r.Period.EmployeeID,
		Year:        r.Period.Year,
		BeforeMonth: r.Period.Month,
	}
	if r.YTD != nil {
		ytd.Gross = r.YTD.Gross
		ytd.BPJS = r.YTD.BPJS
		ytd.TaxPaid = r.YTD.TaxPaid
	}
	return ytd
}

type ComputePeriodResponse struct {
	Period PayPeriodResponse `json:"period"`
	Tax    TaxResult         `json:"tax"`
}

type ComputeBPJSRequest struct {
	Profile    TaxpayerProfileRequest `json:"profile"`
	BaseSalary decimal.Decimal        `json:"base_salary"`
}

func (r *ComputeBPJSRequest) Validate() error {
	return r.Profile.Validate()
}

// ========== PAYSLIP DTOs ==========

// CalculatePayslipRequest runs the full flow for a stored employee profile.
type CalculatePayslipRequest struct {
	EmployeeID            string           `json:"employee_id"`
	Year                  int              `json:"year"`
	Month                 int              `json:"month"`
	GrossPay              decimal.Decimal  `json:"gross_pay"`
	BasicSalary           decimal.Decimal  `json:"basic_salary"`
	TotalEarnings         decimal.Decimal  `json:"total_earnings"`
	BPJSBase              *decimal.Decimal `json:"bpjs_base,omitempty"`
	BypassAnnualDetection bool             `json:"bypass_annual_detection"`
	CalculationNote       string           `json:"calculation_note,omitempty"`
}

func (r *CalculatePayslipRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidTaxYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid tax year"})
	}
	if r.BPJSBase != nil && r.BPJSBase.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bpjs_base", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipCalculationResponse struct {
	Period PayPeriodResponse  `json:"period"`
	Tax    TaxResult          `json:"tax"`
	BPJS   ContributionResult `json:"bpjs"`
}

// SubmitPeriodRequest records the withholding of a finished period.
type SubmitPeriodRequest struct {
	EmployeeID     string          `json:"employee_id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	GrossPay       decimal.Decimal `json:"gross_pay"`
	BPJSDeductions decimal.Decimal `json:"bpjs_deductions"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	IsUsingTER     bool            `json:"is_using_ter"`
	TERRate        decimal.Decimal `json:"ter_rate"`
	TERCategory    string          `json:"ter_category,omitempty"`
}

func (r *SubmitPeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "must be between 1 and 12"})
	}
	if !validator.IsValidTaxYear(r.Year) {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "must be a valid tax year"})
	}
	if !validator.IsNonNegative(r.GrossPay) {
		errs = append(errs, validator.ValidationError{Field: "gross_pay", Message: "must be non-negative"})
	}
	if !validator.IsNonNegative(r.BPJSDeductions) {
		errs = append(errs, validator.ValidationError{Field: "bpjs_deductions", Message: "must be non-negative"})
	}
	if r.TERCategory != "" && !TERCategory(r.TERCategory).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "ter_category", Message: "must be A, B or C"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r SubmitPeriodRequest) ToDetail() MonthlyTaxDetail {
	return MonthlyTaxDetail{
		EmployeeID:     r.EmployeeID,
		Year:           r.Year,
		Month:          r.Month,
		GrossPay:       r.GrossPay,
		BPJSDeductions: r.BPJSDeductions,
		TaxAmount:      r.TaxAmount,
		IsUsingTER:     r.IsUsingTER,
		TERRate:        r.TERRate,
		TERCategory:    TERCategory(r.TERCategory),
	}
}

func prefixErrors(prefix string, err error) validator.ValidationErrors {
	var out validator.ValidationErrors
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, e := range ve {
			out = append(out, validator.ValidationError{Field: prefix + "." + e.Field, Message: e.Message})
		}
		return out
	}
	return validator.ValidationErrors{{Field: prefix, Message: err.Error()}}
}
