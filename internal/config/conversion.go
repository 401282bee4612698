package config

import (
	"fmt"
	"sort"

	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
)

// Base returns the source water after dilution.
func (w WaterConfig) Base() ions.Profile {
	in := builder.Input{
		Source:         w.Source.Profile,
		SourceVolume:   w.Source.Volume,
		Dilution:       w.Dilution.Profile,
		DilutionVolume: w.Dilution.Volume,
	}
	return in.Base()
}

// AllowedSalts resolves the configured salt names against catalog (the
// default catalog when nil). Every catalog salt appears in the returned map;
// names the catalog does not know are returned separately, sorted.
func (w WaterConfig) AllowedSalts(catalog *salts.Catalog) (map[salts.ID]bool, []string) {
	if catalog == nil {
		catalog = salts.DefaultCatalog()
	}

	allowed := make(map[salts.ID]bool, catalog.Len())
	for _, id := range catalog.IDs() {
		allowed[id] = false
	}

	var unknown []string
	for name, ok := range w.Salts {
		id, err := catalog.Resolve(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		allowed[id] = allowed[id] || ok
	}
	sort.Strings(unknown)
	return allowed, unknown
}

// ConstraintSet parses the configured constraints.
func (w WaterConfig) ConstraintSet() (constraints.Set, error) {
	set, err := constraints.ParseSet(w.Constraints)
	if err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("constraints: %w", err)
	}
	return set, nil
}

// ToInput converts the water section into a solver request.
func (c *Configuration) ToInput(catalog *salts.Catalog) (builder.Input, error) {
	set, err := c.Water.ConstraintSet()
	if err != nil {
		return builder.Input{}, err
	}
	goal, err := constraints.ParseGoal(c.Water.Goal)
	if err != nil {
		return builder.Input{}, fmt.Errorf("goal: %w", err)
	}
	if catalog == nil {
		catalog = salts.DefaultCatalog()
	}
	if goal.Kind.NeedsSalt() {
		// Unresolvable names pass through for the solver to reject.
		if id, err := catalog.Resolve(string(goal.Salt)); err == nil {
			goal.Salt = id
		}
	}
	allowed, _ := c.Water.AllowedSalts(catalog)

	return builder.Input{
		Source:         c.Water.Source.Profile,
		SourceVolume:   c.Water.Source.Volume,
		Dilution:       c.Water.Dilution.Profile,
		DilutionVolume: c.Water.Dilution.Volume,
		Target:         c.Water.Target,
		TargetVolume:   c.Water.TargetVolume,
		Allowed:        allowed,
		Constraints:    set,
		Goal:           goal,
	}, nil
}

// ToBestFitInput converts the water section into a best fit request. The
// configured constraints and goal are ignored.
func (c *Configuration) ToBestFitInput(catalog *salts.Catalog) builder.BestFitInput {
	allowed, _ := c.Water.AllowedSalts(catalog)
	return builder.BestFitInput{
		Source:         c.Water.Source.Profile,
		SourceVolume:   c.Water.Source.Volume,
		Dilution:       c.Water.Dilution.Profile,
		DilutionVolume: c.Water.Dilution.Volume,
		Target:         c.Water.Target,
		TargetVolume:   c.Water.TargetVolume,
		Allowed:        allowed,
	}
}

// ToOptions converts the solver section into normalized solver options.
func (c *Configuration) ToOptions() builder.Options {
	opts := builder.Options{
		MaxSaltPerLiter:      c.Solver.MaxSaltPerLiter,
		EqualityTolerance:    c.Solver.EqualityTolerance,
		FeasibilityTolerance: c.Solver.FeasibilityTolerance,
		SimplexTolerance:     c.Solver.SimplexTolerance,
		MaxIterations:        c.Solver.MaxIterations,
		Convergence:          c.Solver.Convergence,
		Workers:              c.Solver.Workers,
	}
	opts.Normalize()
	return opts
}

func sortedIDs(allowed map[salts.ID]bool) []salts.ID {
	var ids []salts.ID
	for _, id := range salts.DefaultCatalog().IDs() {
		if allowed[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
