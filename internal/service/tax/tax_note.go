package tax

import (
	"fmt"
	"strings"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
)

const (
	NoteStartMarker = "=== PPh 21 BEGIN ==="
	NoteEndMarker   = "=== PPh 21 END ==="

	jointFilerNote = "Pajak final digabung dengan NPWP suami"
)

// ComposeTaxNote renders the explanatory block for a result.
func ComposeTaxNote(result tax.TaxResult, profile tax.TaxpayerProfile) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line(NoteStartMarker)
	line("Status Pajak: %s", displayStatus(profile.TaxStatus))

	switch {
	case result.IsJointFiler:
		line(jointFilerNote)

	case result.IsUsingTER:
		line("Metode: TER")
		line("Kategori TER: %s", result.TERCategory)
		line("Tarif TER: %s%%", result.TERRate.StringFixed(2))
		if result.AnnualDetection.IsAnnual {
			line("Penyesuaian nilai tahunan: %s", result.AnnualDetection.Reason)
			line("Penghasilan Bruto (input): %s", formatRupiah(result.AnnualDetection.OriginalGross))
		}
		line("Penghasilan Bruto Bulanan: %s", formatRupiah(result.MonthlyGrossForTER))
		line("Biaya Jabatan: %s", formatRupiah(result.OccupationalExpense))
		line("Iuran BPJS: %s", formatRupiah(result.BPJSEmployeeTotal))
		line("Penghasilan Neto: %s", formatRupiah(result.NetIncome))
		line("PPh 21 Bulan Ini: %s", formatRupiah(result.MonthlyTax))

	default:
		if result.IsYearEnd {
			line("Metode: Progresif (Perhitungan Tahunan)")
			line("Penghasilan Bruto Setahun: %s", formatRupiah(result.GrossPay))
		} else {
			line("Metode: Progresif")
			line("Penghasilan Bruto: %s", formatRupiah(result.GrossPay))
		}
		line("Biaya Jabatan: %s", formatRupiah(result.OccupationalExpense))
		line("Iuran BPJS: %s", formatRupiah(result.BPJSEmployeeTotal))
		line("Penghasilan Neto: %s", formatRupiah(result.NetIncome))
		line("PTKP: %s", formatRupiah(result.PTKP))
		line("PKP: %s", formatRupiah(result.PKP))
		if len(result.Breakdown) > 0 {
			line("Perhitungan Per Lapisan Pajak:")
			for _, d := range result.Breakdown {
				line("- Lapisan %s%%: %s x %s%% = %s", d.Rate.String(), formatRupiah(d.Taxable), d.Rate.String(), formatRupiah(d.Tax))
			}
		}
		line("PPh 21 Setahun: %s", formatRupiah(result.AnnualTax))
		if result.IsYearEnd {
			line("PPh 21 Sudah Dipotong: %s", formatRupiah(result.YTDTaxPaid))
			status := "Kurang Bayar"
			if result.CorrectionAmount.IsNegative() {
				status = "Lebih Bayar"
			}
			line("Koreksi Desember: %s (%s)", formatRupiah(result.CorrectionAmount), status)
		} else {
			line("PPh 21 Bulan Ini: %s", formatRupiah(result.MonthlyTax))
		}
	}

	for _, w := range result.Warnings {
		if w.Code == WarnIntegrityDrift {
			line("Koreksi data: %s", w.Message)
		}
	}

	b.WriteString(NoteEndMarker)
	return b.String()
}

// EmbedTaxNote replaces the marked block inside existing, or appends it.
func EmbedTaxNote(existing, block string) string {
	start := strings.Index(existing, NoteStartMarker)
	if start >= 0 {
		if end := strings.Index(existing[start:], NoteEndMarker); end >= 0 {
			end += start + len(NoteEndMarker)
			return existing[:start] + block + existing[end:]
		}
	}
	existing = strings.TrimRight(existing, "\n")
	if existing == "" {
		return block
	}
	return existing + "\n\n" + block
}

func displayStatus(status string) string {
	if status = NormalizeTaxStatus(status); status == "" {
		return "-"
	}
	return status
}

// formatRupiah formats an amount as "Rp 1.234.567" with negatives as "-Rp ...".
func formatRupiah(d decimal.Decimal) string {
	digits := d.Abs().Round(0).StringFixed(0)
	var grouped strings.Builder
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(ch)
	}
	if d.Round(0).IsNegative() {
		return "-Rp " + grouped.String()
	}
	return "Rp " + grouped.String()
}
