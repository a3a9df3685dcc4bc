package tax

import (
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
	"github.com/shopspring/decimal"
)

const (
	nsCategory = "ter_category"
	nsPTKP     = "ptkp"
)

// PTKPSource tells where a PTKP amount was resolved from.
type PTKPSource string

const (
	PTKPFromTable    PTKPSource = "table"
	PTKPFromPrefix   PTKPSource = "table_prefix"
	PTKPFromDefaults PTKPSource = "prefix_default"
	PTKPFromFallback PTKPSource = "tk0_fallback"
)

// PTKPLookup is a resolved PTKP amount.
type PTKPLookup struct {
	Status string
	Amount decimal.Decimal
	Source PTKPSource
}

// IsFallback reports whether the amount did not come from an exact table entry.
func (l PTKPLookup) IsFallback() bool {
	return l.Source != PTKPFromTable
}

type CategoryMapper struct {
	cache       *cache.Store
	categoryTTL time.Duration
	ptkpTTL     time.Duration
}

func NewCategoryMapper(c *cache.Store, categoryTTL, ptkpTTL time.Duration) *CategoryMapper {
	return &CategoryMapper{cache: c, categoryTTL: categoryTTL, ptkpTTL: ptkpTTL}
}

// MapTaxStatusToTERCategory resolves the TER category of a tax status. Never fails.
func (m *CategoryMapper) MapTaxStatusToTERCategory(status string, settings tax.Settings) tax.TERCategory {
	status = NormalizeTaxStatus(status)
	key := nsCategory + ":" + status
	if v, ok := m.cache.Get(key); ok {
		if category, ok := v.(tax.TERCategory); ok {
			return category
		}
	}
	category := ResolveTERCategory(status, settings.PTKPTERMapping)
	m.cache.Set(key, category, m.categoryTTL)
	return category
}

// RefreshCategoryMapping drops the cached category of status and resolves it again.
func (m *CategoryMapper) RefreshCategoryMapping(status string, settings tax.Settings) tax.TERCategory {
	m.cache.Delete(nsCategory + ":" + NormalizeTaxStatus(status))
	return m.MapTaxStatusToTERCategory(status, settings)
}

// GetPTKPAmount resolves the annual PTKP for status. Never fails, never negative.
func (m *CategoryMapper) GetPTKPAmount(status string, settings tax.Settings) PTKPLookup {
	status = NormalizeTaxStatus(status)
	key := nsPTKP + ":" + status
	if v, ok := m.cache.Get(key); ok {
		if lookup, ok := v.(PTKPLookup); ok {
			return lookup
		}
	}
	lookup := ResolvePTKP(status, settings.PTKPTable)
	m.cache.Set(key, lookup, m.ptkpTTL)
	return lookup
}

// NormalizeTaxStatus trims and upper-cases a status.
func NormalizeTaxStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// ResolveTERCategory checks the configured mapping first, then the
// regulatory default. Empty or unknown statuses land in category C.
func ResolveTERCategory(status string, mapping map[string]tax.TERCategory) tax.TERCategory {
	status = NormalizeTaxStatus(status)
	if status == "" {
		return tax.TERCategoryC
	}
	if category, ok := mapping[status]; ok && category.IsValid() {
		return category
	}
	if category, ok := fixtures.GetDefaultPTKPTERMapping()[status]; ok {
		return category
	}
	return tax.TERCategoryC
}

// ResolvePTKP looks status up in table, then by status family (TK, K, HB)
// in table, then in the family defaults, then falls back to TK0.
func ResolvePTKP(status string, table map[string]decimal.Decimal) PTKPLookup {
	status = NormalizeTaxStatus(status)

	if amount, ok := table[status]; ok && !amount.IsNegative() {
		return PTKPLookup{Status: status, Amount: amount, Source: PTKPFromTable}
	}

	prefix := statusPrefix(status)
	if prefix != "" {
		keys := make([]string, 0, len(table))
		for key := range table {
			if statusPrefix(key) == prefix {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			if amount := table[key]; !amount.IsNegative() {
				return PTKPLookup{Status: status, Amount: amount, Source: PTKPFromPrefix}
			}
		}
		if amount, ok := fixtures.GetPTKPPrefixDefaults()[prefix]; ok {
			return PTKPLookup{Status: status, Amount: amount, Source: PTKPFromDefaults}
		}
	}

	return PTKPLookup{Status: status, Amount: fixtures.DefaultPTKPAmount, Source: PTKPFromFallback}
}

// statusPrefix returns the leading letters of a status ("TK" for "TK2").
func statusPrefix(status string) string {
	i := 0
	for i < len(status) && status[i] >= 'A' && status[i] <= 'Z' {
		i++
	}
	return status[:i]
}
