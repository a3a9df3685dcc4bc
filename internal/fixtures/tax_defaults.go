package fixtures

import (
	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func idr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pct(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// ==========================================
// STATUTORY CONSTANTS
// ==========================================

var (
	// OccupationalExpenseRate is biaya jabatan, 5% of gross
	OccupationalExpenseRate = pct("5")
	// OccupationalExpenseCap is the 500,000 biaya jabatan ceiling
	OccupationalExpenseCap = idr(500_000)

	// DefaultPTKPAmount applies when a status cannot be resolved (TK0)
	DefaultPTKPAmount = idr(54_000_000)

	HealthSalaryCap  = idr(12_000_000)
	PensionSalaryCap = idr(9_077_600)
)

// ==========================================
// DEFAULT PTKP
// ==========================================

// GetDefaultPTKPTable returns annual PTKP amounts per PMK 101/2016.
func GetDefaultPTKPTable() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"TK0": idr(54_000_000), "TK1": idr(58_500_000), "TK2": idr(63_000_000), "TK3": idr(67_500_000),
		"K0": idr(58_500_000), "K1": idr(63_000_000), "K2": idr(67_500_000), "K3": idr(72_000_000),
		"HB0": idr(112_500_000), "HB1": idr(117_000_000), "HB2": idr(121_500_000), "HB3": idr(126_000_000),
	}
}

// GetPTKPPrefixDefaults returns the base amount per status family.
func GetPTKPPrefixDefaults() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"TK": idr(54_000_000),
		"K":  idr(58_500_000),
		"HB": idr(112_500_000),
	}
}

// ==========================================
// DEFAULT TER CATEGORY MAPPING
// ==========================================

// GetDefaultPTKPTERMapping returns the regulatory status to category mapping.
// Statuses not listed fall into category C.
func GetDefaultPTKPTERMapping() map[string]tax.TERCategory {
	return map[string]tax.TERCategory{
		"TK0": tax.TERCategoryA,
		"K0":  tax.TERCategoryB,
		"TK1": tax.TERCategoryB,
	}
}

// GetFallbackTERRates returns the rates used when no TER row matches.
func GetFallbackTERRates() map[tax.TERCategory]decimal.Decimal {
	return map[tax.TERCategory]decimal.Decimal{
		tax.TERCategoryA: pct("5"),
		tax.TERCategoryB: pct("15"),
		tax.TERCategoryC: pct("25"),
	}
}

// ==========================================
// DEFAULT PROGRESSIVE BRACKETS
// ==========================================

// GetDefaultTaxBrackets returns the UU HPP progressive brackets.
func GetDefaultTaxBrackets() []tax.TaxBracket {
	return []tax.TaxBracket{
		{IncomeFrom: idr(0), IncomeTo: idr(60_000_000), Rate: pct("5")},
		{IncomeFrom: idr(60_000_000), IncomeTo: idr(250_000_000), Rate: pct("15")},
		{IncomeFrom: idr(250_000_000), IncomeTo: idr(500_000_000), Rate: pct("25")},
		{IncomeFrom: idr(500_000_000), IncomeTo: idr(5_000_000_000), Rate: pct("30")},
		{IncomeFrom: idr(5_000_000_000), IncomeTo: idr(0), Rate: pct("35")},
	}
}

// ==========================================
// DEFAULT TER TABLES (PMK 168/2023)
// ==========================================

type terRow struct {
	upTo int64 // exclusive upper bound, 0 for the highest row
	rate string
}

var terTableA = []terRow{
	{5_400_000, "0"}, {5_650_000, "0.25"}, {5_950_000, "0.5"}, {6_300_000, "0.75"},
	{6_750_000, "1"}, {7_500_000, "1.25"}, {8_550_000, "1.5"}, {9_650_000, "1.75"},
	{10_050_000, "2"}, {10_350_000, "2.25"}, {10_700_000, "2.5"}, {11_050_000, "3"},
	{11_600_000, "3.5"}, {12_500_000, "4"}, {13_750_000, "5"}, {15_100_000, "6"},
	{16_950_000, "7"}, {19_750_000, "8"}, {24_150_000, "9"}, {26_450_000, "10"},
	{28_000_000, "11"}, {30_050_000, "12"}, {32_400_000, "13"}, {35_400_000, "14"},
	{39_100_000, "15"}, {43_850_000, "16"}, {47_800_000, "17"}, {51_400_000, "18"},
	{56_300_000, "19"}, {62_200_000, "20"}, {68_600_000, "21"}, {77_500_000, "22"},
	{89_000_000, "23"}, {103_000_000, "24"}, {125_000_000, "25"}, {157_000_000, "26"},
	{206_000_000, "27"}, {337_000_000, "28"}, {454_000_000, "29"}, {550_000_000, "30"},
	{695_000_000, "31"}, {910_000_000, "32"}, {1_400_000_000, "33"}, {0, "34"},
}

var terTableB = []terRow{
	{6_200_000, "0"}, {6_500_000, "0.25"}, {6_850_000, "0.5"}, {7_300_000, "0.75"},
	{9_200_000, "1"}, {10_750_000, "1.5"}, {11_250_000, "2"}, {11_600_000, "2.5"},
	{12_600_000, "3"}, {13_600_000, "4"}, {14_950_000, "5"}, {16_400_000, "6"},
	{18_450_000, "7"}, {21_850_000, "8"}, {26_000_000, "9"}, {27_700_000, "10"},
	{29_350_000, "11"}, {31_450_000, "12"}, {33_950_000, "13"}, {37_100_000, "14"},
	{41_100_000, "15"}, {45_800_000, "16"}, {49_500_000, "17"}, {53_800_000, "18"},
	{58_500_000, "19"}, {64_000_000, "20"}, {71_000_000, "21"}, {80_000_000, "22"},
	{93_000_000, "23"}, {109_000_000, "24"}, {129_000_000, "25"}, {163_000_000, "26"},
	{211_000_000, "27"}, {374_000_000, "28"}, {459_000_000, "29"}, {555_000_000, "30"},
	{704_000_000, "31"}, {957_000_000, "32"}, {1_405_000_000, "33"}, {0, "34"},
}

var terTableC = []terRow{
	{6_600_000, "0"}, {6_950_000, "0.25"}, {7_350_000, "0.5"}, {7_800_000, "0.75"},
	{8_850_000, "1"}, {9_800_000, "1.25"}, {10_950_000, "1.5"}, {11_200_000, "1.75"},
	{12_050_000, "2"}, {12_950_000, "3"}, {14_150_000, "4"}, {15_550_000, "5"},
	{17_050_000, "6"}, {19_500_000, "7"}, {22_700_000, "8"}, {26_600_000, "9"},
	{28_100_000, "10"}, {30_100_000, "11"}, {32_600_000, "12"}, {35_400_000, "13"},
	{38_900_000, "14"}, {43_000_000, "15"}, {47_400_000, "16"}, {51_200_000, "17"},
	{55_800_000, "18"}, {60_400_000, "19"}, {66_700_000, "20"}, {74_500_000, "21"},
	{83_200_000, "22"}, {95_600_000, "23"}, {110_000_000, "24"}, {134_000_000, "25"},
	{169_000_000, "26"}, {221_000_000, "27"}, {390_000_000, "28"}, {463_000_000, "29"},
	{561_000_000, "30"}, {709_000_000, "31"}, {965_000_000, "32"}, {1_419_000_000, "33"},
	{0, "34"},
}

func buildTERRows(category tax.TERCategory, rows []terRow) []tax.TERBracket {
	out := make([]tax.TERBracket, 0, len(rows))
	from := int64(0)
	for _, row := range rows {
		out = append(out, tax.TERBracket{
			Category:         category,
			IncomeFrom:       idr(from),
			IncomeTo:         idr(row.upTo),
			Rate:             pct(row.rate),
			IsHighestBracket: row.upTo == 0,
		})
		from = row.upTo
	}
	return out
}

// GetDefaultTERBrackets returns the monthly TER tables for categories A, B and C.
func GetDefaultTERBrackets() []tax.TERBracket {
	var out []tax.TERBracket
	out = append(out, buildTERRows(tax.TERCategoryA, terTableA)...)
	out = append(out, buildTERRows(tax.TERCategoryB, terTableB)...)
	out = append(out, buildTERRows(tax.TERCategoryC, terTableC)...)
	return out
}

// ==========================================
// DEFAULT BPJS
// ==========================================

// GetDefaultBPJSRates returns contribution rates in percent.
func GetDefaultBPJSRates() tax.BPJSRates {
	return tax.BPJSRates{
		HealthEmployee: pct("1"),
		HealthEmployer: pct("4"),
		JHTEmployee:    pct("2"),
		JHTEmployer:    pct("3.7"),
		JPEmployee:     pct("1"),
		JPEmployer:     pct("2"),
		JKKEmployer:    pct("0.24"),
		JKMEmployer:    pct("0.3"),
	}
}

func GetDefaultSalaryCaps() tax.SalaryCaps {
	return tax.SalaryCaps{Health: HealthSalaryCap, Pension: PensionSalaryCap}
}

// ==========================================
// DEFAULT SETTINGS
// ==========================================

// GetDefaultSettings returns the settings used when no document is stored.
func GetDefaultSettings() tax.Settings {
	return tax.Settings{
		UseTER:         true,
		Method:         tax.MethodTER,
		PTKPTable:      GetDefaultPTKPTable(),
		PTKPTERMapping: GetDefaultPTKPTERMapping(),
		TERBrackets:    GetDefaultTERBrackets(),
		TaxBrackets:    GetDefaultTaxBrackets(),
		BPJSRates:      GetDefaultBPJSRates(),
		SalaryCaps:     GetDefaultSalaryCaps(),
	}
}

// WithDefaults fills zero-valued BPJS rates and salary caps of s.
func WithDefaults(s tax.Settings) tax.Settings {
	if s.BPJSRates.IsZero() {
		s.BPJSRates = GetDefaultBPJSRates()
	}
	if s.SalaryCaps.Health.IsZero() {
		s.SalaryCaps.Health = HealthSalaryCap
	}
	if s.SalaryCaps.Pension.IsZero() {
		s.SalaryCaps.Pension = PensionSalaryCap
	}
	if s.Method == "" {
		s.Method = tax.MethodTER
	}
	return s
}
