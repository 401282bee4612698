package builder

import (
	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
)

// Result is the outcome of one solve. When Feasible is false Quantities is
// nil and Reason explains why; no partial answer is ever returned.
type Result struct {
	Feasible bool
	Reason   string

	// Quantities holds g/L for every catalog salt. Salts that were not
	// allowed are present with exactly 0.
	Quantities map[salts.ID]float64

	Base         ions.Profile
	Profile      ions.Profile
	Target       ions.Profile
	TargetVolume float64

	// Score is the mean squared ion error of Profile against Target.
	Score     float64
	TotalMass float64
	Objective float64

	Goal        constraints.Goal
	Constraints constraints.Set

	// Violations is only populated by the least-squares goal, which does
	// not enforce the constraints.
	Violations []constraints.Violation

	Iterations int
	Converged  bool
}

// Grams returns the salt masses for the target volume.
func (r Result) Grams() map[salts.ID]float64 {
	if !r.Feasible {
		return nil
	}
	return salts.Grams(r.Quantities, r.TargetVolume)
}

// Delta returns the per-ion difference between the result and the target.
func (r Result) Delta() ions.Profile {
	return r.Profile.Sub(r.Target)
}

func infeasible(in Input, base ions.Profile, reason string) Result {
	return Result{
		Feasible:     false,
		Reason:       reason,
		Base:         base,
		Target:       in.Target,
		TargetVolume: in.TargetVolume,
		Goal:         in.Goal,
		Constraints:  in.Constraints.Clone(),
	}
}
