package tax

import (
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/fixtures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolveTERCategory(t *testing.T) {
	t.Parallel()

	configured := map[string]tax.TERCategory{"K1": tax.TERCategoryB, "K2": "X"}

	tests := []struct {
		name    string
		status  string
		mapping map[string]tax.TERCategory
		want    tax.TERCategory
	}{
		{"default TK0", "TK0", nil, tax.TERCategoryA},
		{"default lower case", " tk0 ", nil, tax.TERCategoryA},
		{"default K0", "K0", nil, tax.TERCategoryB},
		{"default TK1", "TK1", nil, tax.TERCategoryB},
		{"unmapped K3", "K3", nil, tax.TERCategoryC},
		{"configured wins", "K1", configured, tax.TERCategoryB},
		{"invalid configured value ignored", "K2", configured, tax.TERCategoryC},
		{"unknown status", "ZZ", nil, tax.TERCategoryC},
		{"empty status", "", nil, tax.TERCategoryC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTERCategory(tt.status, tt.mapping))
		})
	}
}

func TestResolvePTKP(t *testing.T) {
	t.Parallel()

	partial := map[string]decimal.Decimal{
		"K1": idr(63_000_000),
		"K0": idr(58_500_000),
	}

	tests := []struct {
		name       string
		status     string
		table      map[string]decimal.Decimal
		wantAmount decimal.Decimal
		wantSource PTKPSource
	}{
		{"exact", "K2", fixtures.GetDefaultPTKPTable(), idr(67_500_000), PTKPFromTable},
		{"prefix in table uses lowest key", "K3", partial, idr(58_500_000), PTKPFromPrefix},
		{"prefix default", "HB1", map[string]decimal.Decimal{}, idr(112_500_000), PTKPFromDefaults},
		{"unknown falls back to TK0", "ZZ", partial, idr(54_000_000), PTKPFromFallback},
		{"empty falls back to TK0", "", nil, idr(54_000_000), PTKPFromFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePTKP(tt.status, tt.table)
			assert.True(t, got.Amount.Equal(tt.wantAmount), "amount = %s", got.Amount)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantSource != PTKPFromTable, got.IsFallback())
		})
	}
}

func TestCategoryMapper_CachesUntilRefresh(t *testing.T) {
	t.Parallel()

	m := testMapper()
	settings := fixtures.GetDefaultSettings()

	assert.Equal(t, tax.TERCategoryC, m.MapTaxStatusToTERCategory("K2", settings))

	settings.PTKPTERMapping = map[string]tax.TERCategory{"K2": tax.TERCategoryB}
	assert.Equal(t, tax.TERCategoryC, m.MapTaxStatusToTERCategory("K2", settings), "cached value")
	assert.Equal(t, tax.TERCategoryB, m.RefreshCategoryMapping("k2", settings))
	assert.Equal(t, tax.TERCategoryB, m.MapTaxStatusToTERCategory("K2", settings))
}

func TestCategoryMapper_GetPTKPAmount(t *testing.T) {
	t.Parallel()

	m := testMapper()
	settings := fixtures.GetDefaultSettings()

	lookup := m.GetPTKPAmount("tk3", settings)
	assert.Equal(t, "TK3", lookup.Status)
	assert.True(t, lookup.Amount.Equal(idr(67_500_000)))
	assert.False(t, lookup.IsFallback())
}
