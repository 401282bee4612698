// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
)

// WaterValidator inspects a water request for targets that look unreachable
// before any solve is attempted. Its findings are warnings, not errors: the
// solver reports the actual infeasibility.
type WaterValidator struct {
	Catalog         *salts.Catalog
	Base            ions.Profile
	Target          ions.Profile
	Allowed         []salts.ID
	MaxSaltPerLiter float64
}

// ValidateReachability compares one ion's target against the starting water
// and the most the allowed salts could add.
func ValidateReachability(ion ions.Ion, base, target, reachable float64, supplied bool) string {
	switch {
	case target < base:
		return fmt.Sprintf("Target %s (%.2f ppm) is below the starting water (%.2f ppm); salts can only raise it, consider dilution",
			ion, target, base)
	case target > base && !supplied:
		return fmt.Sprintf("Target %s (%.2f ppm) exceeds the starting water (%.2f ppm) but no allowed salt adds %s",
			ion, target, base, ion)
	case supplied && target > reachable:
		return fmt.Sprintf("Target %s (%.2f ppm) exceeds the %.2f ppm the allowed salts can reach",
			ion, target, reachable)
	}
	return ""
}

// ValidateAll returns every warning for the request.
func (wv *WaterValidator) ValidateAll() []string {
	var warnings []string

	catalog := wv.Catalog
	if catalog == nil {
		catalog = salts.DefaultCatalog()
	}

	if len(wv.Allowed) == 0 {
		warnings = append(warnings, "No salts are allowed; only the starting water will be evaluated")
	}

	for _, ion := range ions.All {
		reachable := wv.Base.Get(ion)
		supplied := false
		for _, id := range wv.Allowed {
			coef := catalog.Coefficient(id, ion)
			if coef > 0 {
				supplied = true
				reachable += coef * wv.MaxSaltPerLiter
			}
		}
		if w := ValidateReachability(ion, wv.Base.Get(ion), wv.Target.Get(ion), reachable, supplied); w != "" {
			warnings = append(warnings, w)
		}
	}

	return warnings
}
