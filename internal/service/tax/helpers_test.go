package tax

import (
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
	"github.com/shopspring/decimal"
)

func idr(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCalculation(settings tax.Settings) *calculation {
	return newCalculation("emp-1", settings, discardLogger())
}

func testMapper() *CategoryMapper {
	return NewCategoryMapper(cache.New(), time.Hour, time.Hour)
}

func warningCodes(warnings []tax.Warning) []string {
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	return codes
}
