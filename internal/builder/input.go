package builder

import (
	"fmt"
	"sort"

	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/mathutil"
	"github.com/iwvelando/water-builder/pkg/salts"
)

// Input describes one solve request. Source and Dilution are blended by
// volume before salts are added; salt quantities are dosed into
// TargetVolume liters.
type Input struct {
	Source         ions.Profile
	SourceVolume   float64
	Dilution       ions.Profile
	DilutionVolume float64
	Target         ions.Profile
	TargetVolume   float64
	Allowed        map[salts.ID]bool
	Constraints    constraints.Set
	Goal           constraints.Goal
}

// Base returns the starting water after dilution. Without dilution volume
// the source profile is used as is, whatever its volume.
func (in Input) Base() ions.Profile {
	if in.DilutionVolume <= 0 {
		return in.Source
	}
	return ions.Blend(in.Source, in.SourceVolume, in.Dilution, in.DilutionVolume)
}

// AllowedSalts returns the allowed salts in catalog order.
func (in Input) AllowedSalts(catalog *salts.Catalog) []salts.ID {
	var out []salts.ID
	for _, id := range catalog.IDs() {
		if in.Allowed[id] {
			out = append(out, id)
		}
	}
	return out
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validate rejects malformed requests. Conditions that merely make the
// request unsatisfiable, such as negative source volumes, are left to
// infeasibility.
func (s *Solver) validate(in Input) error {
	if !mathutil.IsFinite(in.TargetVolume) || in.TargetVolume <= 0 {
		return invalid("target volume must be positive, got %v", in.TargetVolume)
	}
	if !mathutil.IsFinite(in.SourceVolume) || !mathutil.IsFinite(in.DilutionVolume) {
		return invalid("source and dilution volumes must be finite")
	}
	if err := in.Source.Validate(); err != nil {
		return invalid("source profile: %v", err)
	}
	if err := in.Dilution.Validate(); err != nil {
		return invalid("dilution profile: %v", err)
	}
	if err := in.Target.Validate(); err != nil {
		return invalid("target profile: %v", err)
	}
	if err := in.Constraints.Validate(); err != nil {
		return invalid("%v", err)
	}
	if err := in.Goal.Validate(); err != nil {
		return invalid("%v", err)
	}

	var unknown []string
	for id := range in.Allowed {
		if !s.catalog.Has(id) {
			unknown = append(unknown, string(id))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return invalid("unknown salts %v", unknown)
	}

	if in.Goal.Kind.NeedsSalt() {
		if !s.catalog.Has(in.Goal.Salt) {
			return invalid("goal %s names unknown salt", in.Goal)
		}
		if !in.Allowed[in.Goal.Salt] {
			return invalid("goal %s names a salt that is not allowed", in.Goal)
		}
	}
	return nil
}
