package tax

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/cache"
)

const nsMethod = "method"

// MethodSelector decides between TER and progressive withholding.
type MethodSelector struct {
	cache *cache.Store
	ttl   time.Duration
}

func NewMethodSelector(c *cache.Store, ttl time.Duration) *MethodSelector {
	return &MethodSelector{cache: c, ttl: ttl}
}

// ShouldUseTER applies the settings and December gates on every call and
// caches the profile-dependent decision per employee. The key carries every
// profile field the decision reads, so a changed profile never hits a stale entry.
func (s *MethodSelector) ShouldUseTER(profile tax.TaxpayerProfile, month int, settings tax.Settings) bool {
	if !terAllowedFor(month, settings) {
		return false
	}
	if profile.EmployeeID == "" {
		return profileAllowsTER(profile)
	}

	key := methodKey(profile)
	if v, ok := s.cache.Get(key); ok {
		if allowed, ok := v.(bool); ok {
			return allowed
		}
	}
	allowed := profileAllowsTER(profile)
	s.cache.Set(key, allowed, s.ttl)
	return allowed
}

func methodKey(profile tax.TaxpayerProfile) string {
	return fmt.Sprintf("%s:%s:%s:%s", nsMethod, profile.EmployeeID, profile.EmploymentCategory, profile.OverrideMethod)
}

// ShouldUseTER is the uncached decision, first matching rule wins.
func ShouldUseTER(profile tax.TaxpayerProfile, month int, settings tax.Settings) bool {
	return terAllowedFor(month, settings) && profileAllowsTER(profile)
}

func terAllowedFor(month int, settings tax.Settings) bool {
	if !settings.UseTER || settings.Method != tax.MethodTER {
		return false
	}
	// December always reconciles progressively
	return month != 12
}

func profileAllowsTER(profile tax.TaxpayerProfile) bool {
	if profile.EmploymentCategory == tax.EmploymentFreelance {
		return false
	}
	switch profile.OverrideMethod {
	case tax.MethodProgressive:
		return false
	case tax.MethodTER:
		return true
	}
	return true
}
