package tax

import (
	"testing"

	"github.com/cmlabs-hris/pph21-engine/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDetectAnnualIncome(t *testing.T) {
	t.Parallel()

	th := DetectionThresholdsFromConfig(config.DefaultTaxConfig())

	tests := []struct {
		name        string
		gross       decimal.Decimal
		earnings    decimal.Decimal
		basic       decimal.Decimal
		bypass      bool
		wantAnnual  bool
		wantMonthly decimal.Decimal
	}{
		{"ordinary monthly", idr(10_000_000), decimal.Zero, decimal.Zero, false, false, idr(10_000_000)},
		{"exceeds total earnings", idr(180_000_000), idr(15_000_000), idr(15_000_000), false, true, idr(15_000_000)},
		{"exceeds absolute threshold", idr(120_000_000), decimal.Zero, decimal.Zero, false, true, idr(10_000_000)},
		{"basic ratio within range", idr(60_000_000), decimal.Zero, idr(5_000_000), false, true, idr(5_000_000)},
		{"basic ratio outside range", idr(80_000_000), decimal.Zero, idr(5_000_000), false, true, decimal.RequireFromString("6666666.67")},
		{"bypass", idr(180_000_000), idr(15_000_000), decimal.Zero, true, false, idr(180_000_000)},
		{"zero gross", decimal.Zero, idr(15_000_000), decimal.Zero, false, false, decimal.Zero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAnnualIncome(tt.gross, tt.earnings, tt.basic, tt.bypass, th)

			assert.Equal(t, tt.wantAnnual, got.IsAnnual)
			assert.True(t, got.MonthlyValue.Equal(tt.wantMonthly), "monthly = %s", got.MonthlyValue)
			assert.True(t, got.OriginalGross.Equal(tt.gross))
			if tt.wantAnnual {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestDetectAnnualIncome_ConfiguredThresholds(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultTaxConfig()
	cfg.AnnualAbsoluteThreshold = idr(200_000_000)
	th := DetectionThresholdsFromConfig(cfg)

	got := DetectAnnualIncome(idr(120_000_000), decimal.Zero, decimal.Zero, false, th)
	assert.False(t, got.IsAnnual)
}
