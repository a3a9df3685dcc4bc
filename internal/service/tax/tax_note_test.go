package tax

import (
	"strings"
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.Zero, "Rp 0"},
		{idr(999), "Rp 999"},
		{idr(1_234_567), "Rp 1.234.567"},
		{decimal.RequireFromString("500000.4"), "Rp 500.000"},
		{idr(-1_500_000), "-Rp 1.500.000"},
	}

	for _, tt := range tests {
		if got := formatRupiah(tt.in); got != tt.want {
			t.Errorf("formatRupiah(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestComposeTaxNote(t *testing.T) {
	t.Run("ter", func(t *testing.T) {
		note := ComposeTaxNote(tax.TaxResult{
			IsUsingTER:         true,
			TERCategory:        tax.TERCategoryA,
			TERRate:            decimal.NewFromInt(5),
			MonthlyGrossForTER: idr(10_000_000),
			MonthlyTax:         idr(500_000),
		}, tax.TaxpayerProfile{TaxStatus: "TK0"})

		assert.True(t, strings.HasPrefix(note, NoteStartMarker))
		assert.True(t, strings.HasSuffix(note, NoteEndMarker))
		assert.Contains(t, note, "Status Pajak: TK0")
		assert.Contains(t, note, "Tarif TER: 5.00%")
		assert.Contains(t, note, "PPh 21 Bulan Ini: Rp 500.000")
	})

	t.Run("year end", func(t *testing.T) {
		note := ComposeTaxNote(tax.TaxResult{
			IsYearEnd:        true,
			AnnualTax:        idr(9_500_000),
			YTDTaxPaid:       idr(10_000_000),
			CorrectionAmount: idr(-500_000),
			Breakdown:        []tax.BracketTax{{Rate: decimal.NewFromInt(10), Taxable: idr(95_000_000), Tax: idr(9_500_000)}},
		}, tax.TaxpayerProfile{TaxStatus: "TK0"})

		assert.Contains(t, note, "Perhitungan Per Lapisan Pajak:")
		assert.Contains(t, note, "- Lapisan 10%: Rp 95.000.000 x 10% = Rp 9.500.000")
		assert.Contains(t, note, "Koreksi Desember: -Rp 500.000 (Lebih Bayar)")
	})

	t.Run("joint filer", func(t *testing.T) {
		note := ComposeTaxNote(tax.TaxResult{IsJointFiler: true}, tax.TaxpayerProfile{})
		assert.Contains(t, note, "Pajak final digabung dengan NPWP suami")
		assert.Contains(t, note, "Status Pajak: -")
	})

	t.Run("drift warnings", func(t *testing.T) {
		note := ComposeTaxNote(tax.TaxResult{
			IsUsingTER: true,
			Warnings:   []tax.Warning{{Code: WarnIntegrityDrift, Message: "ter_rate corrected from 4 to 5"}, {Code: WarnMissingTaxID, Message: "x"}},
		}, tax.TaxpayerProfile{TaxStatus: "TK0"})
		assert.Contains(t, note, "Koreksi data: ter_rate corrected from 4 to 5")
		assert.NotContains(t, note, "x\n")
	})
}

func TestEmbedTaxNote(t *testing.T) {
	block := NoteStartMarker + "\nPPh 21 Bulan Ini: Rp 1\n" + NoteEndMarker
	updated := NoteStartMarker + "\nPPh 21 Bulan Ini: Rp 2\n" + NoteEndMarker

	assert.Equal(t, block, EmbedTaxNote("", block))
	assert.Equal(t, "Bonus Q1\n\n"+block, EmbedTaxNote("Bonus Q1\n", block))

	once := EmbedTaxNote("Bonus Q1", block)
	twice := EmbedTaxNote(once, block)
	assert.Equal(t, once, twice)

	replaced := EmbedTaxNote(once+"\ntrailer", updated)
	assert.Equal(t, 1, strings.Count(replaced, NoteStartMarker))
	assert.Contains(t, replaced, "Rp 2")
	assert.NotContains(t, replaced, "Rp 1\n")
	assert.True(t, strings.HasPrefix(replaced, "Bonus Q1"))
	assert.True(t, strings.HasSuffix(replaced, "\ntrailer"))
}
