package tax

import (
	"time"

	"github.com/shopspring/decimal"
)

// TERCategory - Effective rate category (Tarif Efektif Rata-rata)
type TERCategory string

const (
	TERCategoryA TERCategory = "A"
	TERCategoryB TERCategory = "B"
	TERCategoryC TERCategory = "C"
)

// IsValid reports whether c is one of A, B or C.
func (c TERCategory) IsValid() bool {
	switch c {
	case TERCategoryA, TERCategoryB, TERCategoryC:
		return true
	}
	return false
}

// CalculationMethod enum
type CalculationMethod string

const (
	MethodTER         CalculationMethod = "TER"
	MethodProgressive CalculationMethod = "Progressive"
)

// EmploymentCategory enum
type EmploymentCategory string

const (
	EmploymentRegular   EmploymentCategory = "regular"
	EmploymentFreelance EmploymentCategory = "freelance"
)

// TaxpayerProfile - Tax-relevant attributes of an employee
type TaxpayerProfile struct {
	EmployeeID                  string
	TaxStatus                   string // TK0-3, K0-3, HB0-3
	HasTaxID                    bool   // NPWP registered
	OverrideMethod              CalculationMethod
	IsFemaleJointFiler          bool // NPWP joined with husband
	EmploymentCategory          EmploymentCategory
	HealthInsuranceEnrolled     bool // BPJS Kesehatan
	EmploymentInsuranceEnrolled bool // BPJS Ketenagakerjaan
}

// PayPeriod - One employee's pay document for a single month.
// Only the engine writes the calculated fields.
type PayPeriod struct {
	EmployeeID            string
	Year                  int
	Month                 int
	GrossPay              decimal.Decimal
	BasicSalary           decimal.Decimal
	TotalEarnings         decimal.Decimal
	BPJSEmployeeTotal     decimal.Decimal
	BypassAnnualDetection bool

	// Calculated
	OccupationalExpense decimal.Decimal // biaya jabatan
	NetIncome           decimal.Decimal
	IsUsingTER          bool
	TERRate             decimal.Decimal // percentage
	TERCategory         TERCategory
	MonthlyGrossForTER  decimal.Decimal
	AnnualTaxableIncome decimal.Decimal
	MonthlyTax          decimal.Decimal
	CorrectionAmount    decimal.Decimal
	TaxDeduction        decimal.Decimal // PPh 21 deduction line
	CalculationNote     string
}

// TaxBracket - Progressive bracket; IncomeTo zero means open-ended
type TaxBracket struct {
	IncomeFrom decimal.Decimal `json:"income_from"`
	IncomeTo   decimal.Decimal `json:"income_to"`
	Rate       decimal.Decimal `json:"rate"`
}

// IsOpenEnded reports whether the bracket has no upper bound.
func (b TaxBracket) IsOpenEnded() bool {
	return b.IncomeTo.IsZero()
}

// TERBracket - One row of a TER table
type TERBracket struct {
	Category         TERCategory     `json:"category"`
	IncomeFrom       decimal.Decimal `json:"income_from"`
	IncomeTo         decimal.Decimal `json:"income_to"`
	Rate             decimal.Decimal `json:"rate"`
	IsHighestBracket bool            `json:"is_highest_bracket"`
}

// Contains reports whether a monthly gross falls inside the row.
func (b TERBracket) Contains(gross decimal.Decimal) bool {
	if gross.LessThan(b.IncomeFrom) {
		return false
	}
	if b.IsHighestBracket || b.IncomeTo.IsZero() {
		return true
	}
	return gross.LessThan(b.IncomeTo)
}

// BPJSRates - Contribution rates in percent
type BPJSRates struct {
	HealthEmployee decimal.Decimal `json:"health_employee"`
	HealthEmployer decimal.Decimal `json:"health_employer"`
	JHTEmployee    decimal.Decimal `json:"jht_employee"`
	JHTEmployer    decimal.Decimal `json:"jht_employer"`
	JPEmployee     decimal.Decimal `json:"jp_employee"`
	JPEmployer     decimal.Decimal `json:"jp_employer"`
	JKKEmployer    decimal.Decimal `json:"jkk_employer"`
	JKMEmployer    decimal.Decimal `json:"jkm_employer"`
}

// IsZero reports whether no rate has been configured.
func (r BPJSRates) IsZero() bool {
	for _, d := range []decimal.Decimal{
		r.HealthEmployee, r.HealthEmployer, r.JHTEmployee, r.JHTEmployer,
		r.JPEmployee, r.JPEmployer, r.JKKEmployer, r.JKMEmployer,
	} {
		if !d.IsZero() {
			return false
		}
	}
	return true
}

// SalaryCaps - Maximum salary bases for capped contributions
type SalaryCaps struct {
	Health  decimal.Decimal `json:"health"`
	Pension decimal.Decimal `json:"pension"`
}

// Settings - Tax configuration document
type Settings struct {
	UseTER         bool                       `json:"use_ter"`
	Method         CalculationMethod          `json:"calculation_method"`
	PTKPTable      map[string]decimal.Decimal `json:"ptkp_table"`
	PTKPTERMapping map[string]TERCategory     `json:"ptkp_ter_mapping"`
	TERBrackets    []TERBracket               `json:"ter_brackets"`
	TaxBrackets    []TaxBracket               `json:"tax_brackets"`
	BPJSRates      BPJSRates                  `json:"bpjs_rates"`
	SalaryCaps     SalaryCaps                 `json:"salary_caps"`
	UpdatedAt      time.Time                  `json:"updated_at"`
}

// TERBracketsFor returns the rows belonging to one category.
func (s Settings) TERBracketsFor(category TERCategory) []TERBracket {
	var rows []TERBracket
	for _, b := range s.TERBrackets {
		if b.Category == category {
			rows = append(rows, b)
		}
	}
	return rows
}

// YearToDateAggregate - Sums over months strictly before BeforeMonth
type YearToDateAggregate struct {
	EmployeeID  string          `json:"employee_id"`
	Year        int             `json:"year"`
	BeforeMonth int             `json:"before_month"`
	Gross       decimal.Decimal `json:"gross"`
	BPJS        decimal.Decimal `json:"bpjs"`
	TaxPaid     decimal.Decimal `json:"tax_paid"`
}

// MonthlyTaxDetail - Per-month withholding record that feeds the YTD aggregate
type MonthlyTaxDetail struct {
	ID             string
	EmployeeID     string
	Year           int
	Month          int
	GrossPay       decimal.Decimal
	BPJSDeductions decimal.Decimal
	TaxAmount      decimal.Decimal
	IsUsingTER     bool
	TERRate        decimal.Decimal
	TERCategory    TERCategory
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Warning - Non-fatal notice attached to a result
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BracketTax - Tax charged within one progressive bracket
type BracketTax struct {
	Rate    decimal.Decimal `json:"rate"`
	Taxable decimal.Decimal `json:"taxable"`
	Tax     decimal.Decimal `json:"tax"`
}

// AnnualDetection - Outcome of the annual-value misdetection heuristic
type AnnualDetection struct {
	IsAnnual      bool            `json:"is_annual"`
	Reason        string          `json:"reason,omitempty"`
	OriginalGross decimal.Decimal `json:"original_gross"`
	MonthlyValue  decimal.Decimal `json:"monthly_value"`
}

// TaxResult - Structured outcome of one calculation
type TaxResult struct {
	CalculationID       string            `json:"calculation_id"`
	EmployeeID          string            `json:"employee_id"`
	Year                int               `json:"year"`
	Month               int               `json:"month"`
	Method              CalculationMethod `json:"method"`
	IsUsingTER          bool              `json:"is_using_ter"`
	TERRate             decimal.Decimal   `json:"ter_rate"`
	TERCategory         TERCategory       `json:"ter_category,omitempty"`
	GrossPay            decimal.Decimal   `json:"gross_pay"`
	MonthlyGrossForTER  decimal.Decimal   `json:"monthly_gross_for_ter"`
	OccupationalExpense decimal.Decimal   `json:"occupational_expense"`
	BPJSEmployeeTotal   decimal.Decimal   `json:"bpjs_employee_total"`
	NetIncome           decimal.Decimal   `json:"net_income"`
	AnnualTaxableIncome decimal.Decimal   `json:"annual_taxable_income"`
	PTKP                decimal.Decimal   `json:"ptkp"`
	PKP                 decimal.Decimal   `json:"pkp"`
	AnnualTax           decimal.Decimal   `json:"annual_tax"`
	MonthlyTax          decimal.Decimal   `json:"monthly_tax"`
	YTDTaxPaid          decimal.Decimal   `json:"ytd_tax_paid"`
	CorrectionAmount    decimal.Decimal   `json:"correction_amount"`
	Breakdown           []BracketTax      `json:"breakdown,omitempty"`
	AnnualDetection     AnnualDetection   `json:"annual_detection"`
	IsJointFiler        bool              `json:"is_joint_filer"`
	IsYearEnd           bool              `json:"is_year_end"`
	NoteText            string            `json:"note"`
	Warnings            []Warning         `json:"warnings,omitempty"`
}

// ContributionResult - BPJS contributions for one base salary
type ContributionResult struct {
	HealthEmployee decimal.Decimal `json:"health_employee"`
	JHTEmployee    decimal.Decimal `json:"jht_employee"`
	JPEmployee     decimal.Decimal `json:"jp_employee"`
	HealthEmployer decimal.Decimal `json:"health_employer"`
	JHTEmployer    decimal.Decimal `json:"jht_employer"`
	JPEmployer     decimal.Decimal `json:"jp_employer"`
	JKKEmployer    decimal.Decimal `json:"jkk_employer"`
	JKMEmployer    decimal.Decimal `json:"jkm_employer"`
	TotalEmployee  decimal.Decimal `json:"total_employee"`
	TotalEmployer  decimal.Decimal `json:"total_employer"`
}
