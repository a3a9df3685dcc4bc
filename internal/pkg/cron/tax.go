package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
)

// TaxJobs contains tax cache maintenance jobs
type TaxJobs struct {
	taxService tax.TaxService
}

func NewTaxJobs(taxService tax.TaxService) *TaxJobs {
	return &TaxJobs{
		taxService: taxService,
	}
}

// RegisterJobs registers the cache warm-up on the given interval
func (j *TaxJobs) RegisterJobs(scheduler *Scheduler, warmInterval time.Duration) {
	scheduler.AddJob(
		"warm_tax_cache",
		warmInterval,
		j.WarmTaxCache,
	)
}

// WarmTaxCache reloads settings and re-resolves categories and PTKP for every status
func (j *TaxJobs) WarmTaxCache(ctx context.Context) error {
	return j.taxService.WarmCache(ctx)
}
