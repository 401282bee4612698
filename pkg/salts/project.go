package salts

import (
	"fmt"

	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/mathutil"
)

// Project adds the given salt masses (grams) dissolved into volumeLiters of
// water to start and returns the resulting profile. Salts are applied in
// catalog order so the floating point sum is reproducible.
func (c *Catalog) Project(start ions.Profile, volumeLiters float64, grams map[ID]float64) (ions.Profile, error) {
	if volumeLiters <= 0 {
		return ions.Profile{}, fmt.Errorf("volume must be positive, got %v", volumeLiters)
	}
	perLiter := make(map[ID]float64, len(grams))
	for id, g := range grams {
		perLiter[id] = g / volumeLiters
	}
	return c.ProjectConcentration(start, perLiter)
}

// ProjectConcentration is Project with quantities already expressed in g/L.
// Unknown salts and non-finite quantities are rejected.
func (c *Catalog) ProjectConcentration(start ions.Profile, perLiter map[ID]float64) (ions.Profile, error) {
	for id, q := range perLiter {
		if !c.Has(id) {
			return ions.Profile{}, fmt.Errorf("unknown salt %q", id)
		}
		if !mathutil.IsFinite(q) {
			return ions.Profile{}, fmt.Errorf("quantity for %s is not finite: %v", id, q)
		}
	}

	out := start
	for _, e := range c.entries {
		q := perLiter[e.ID]
		if q == 0 {
			continue
		}
		for _, ion := range ions.All {
			coef := e.Coefficients.Get(ion)
			if coef == 0 {
				continue
			}
			out = out.With(ion, out.Get(ion)+q*coef)
		}
	}
	return out, nil
}

// Grams converts g/L quantities into grams for volumeLiters.
func Grams(perLiter map[ID]float64, volumeLiters float64) map[ID]float64 {
	out := make(map[ID]float64, len(perLiter))
	for id, q := range perLiter {
		out[id] = q * volumeLiters
	}
	return out
}
