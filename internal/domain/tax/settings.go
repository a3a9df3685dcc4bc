package tax

import (
	"fmt"
	"sort"

	"github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// RequiredPTKPStatuses must be present in any stored PTKP table.
var RequiredPTKPStatuses = []string{"TK0", "K0", "K1", "K2", "K3"}

// Validate checks bracket continuity and PTKP completeness of a stored settings document.
// A failed validation is only logged on read: the engine falls back per field.
func (s Settings) Validate() error {
	var errs validator.ValidationErrors

	if s.Method != "" && s.Method != MethodTER && s.Method != MethodProgressive {
		errs = append(errs, validator.ValidationError{Field: "calculation_method", Message: "must be 'TER' or 'Progressive'"})
	}

	if len(s.TaxBrackets) == 0 {
		errs = append(errs, validator.ValidationError{Field: "tax_brackets", Message: "at least one tax bracket must be defined"})
	} else if msg := checkContinuity(taxBracketBounds(s.TaxBrackets)); msg != "" {
		errs = append(errs, validator.ValidationError{Field: "tax_brackets", Message: msg})
	}

	for _, category := range []TERCategory{TERCategoryA, TERCategoryB, TERCategoryC} {
		rows := s.TERBracketsFor(category)
		if len(rows) == 0 {
			continue
		}
		if msg := checkContinuity(terBracketBounds(rows)); msg != "" {
			errs = append(errs, validator.ValidationError{Field: "ter_brackets." + string(category), Message: msg})
		}
	}
	for _, b := range s.TERBrackets {
		if !b.Category.IsValid() {
			errs = append(errs, validator.ValidationError{Field: "ter_brackets", Message: fmt.Sprintf("unknown category %q", b.Category)})
			break
		}
	}

	if len(s.PTKPTable) == 0 {
		errs = append(errs, validator.ValidationError{Field: "ptkp_table", Message: "PTKP values must be defined"})
	} else {
		for _, status := range RequiredPTKPStatuses {
			if _, ok := s.PTKPTable[status]; !ok {
				errs = append(errs, validator.ValidationError{Field: "ptkp_table", Message: "missing PTKP definition for status " + status})
				break
			}
		}
	}

	for status, category := range s.PTKPTERMapping {
		if !category.IsValid() {
			errs = append(errs, validator.ValidationError{Field: "ptkp_ter_mapping." + status, Message: "must be A, B or C"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type bound struct {
	from, to decimal.Decimal
	open     bool
}

func taxBracketBounds(brackets []TaxBracket) []bound {
	out := make([]bound, 0, len(brackets))
	for _, b := range brackets {
		out = append(out, bound{from: b.IncomeFrom, to: b.IncomeTo, open: b.IsOpenEnded()})
	}
	return out
}

func terBracketBounds(brackets []TERBracket) []bound {
	out := make([]bound, 0, len(brackets))
	for _, b := range brackets {
		out = append(out, bound{from: b.IncomeFrom, to: b.IncomeTo, open: b.IsHighestBracket || b.IncomeTo.IsZero()})
	}
	return out
}

// checkContinuity returns an empty string when the bounds are contiguous
// from zero with exactly one open-ended bound at the top.
func checkContinuity(bounds []bound) string {
	sort.SliceStable(bounds, func(i, j int) bool { return bounds[i].from.LessThan(bounds[j].from) })

	if !bounds[0].from.IsZero() {
		return "brackets must start at zero"
	}
	open := 0
	for i, b := range bounds {
		if b.open {
			open++
			if i != len(bounds)-1 {
				return "only the highest bracket may be open-ended"
			}
			continue
		}
		if !b.to.GreaterThan(b.from) {
			return fmt.Sprintf("bracket starting at %s has no width", b.from)
		}
		if i+1 < len(bounds) && !bounds[i+1].from.Equal(b.to) {
			return fmt.Sprintf("brackets must be continuous, gap found between %s and %s", b.to, bounds[i+1].from)
		}
	}
	if open != 1 {
		return "exactly one open-ended bracket is required"
	}
	return ""
}
