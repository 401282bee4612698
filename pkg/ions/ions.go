// Package ions models the mineral profile of a water sample: the
// concentration, in ppm (mg/L), of the six ions that matter for brewing.
package ions

import (
	"fmt"
	"strings"

	"github.com/iwvelando/water-builder/pkg/mathutil"
)

// Ion identifies one of the six tracked brewing ions.
type Ion int

const (
	Calcium Ion = iota
	Magnesium
	Sodium
	Sulfate
	Chloride
	Bicarbonate
)

// Count is the number of tracked ions.
const Count = 6

// All lists every ion in canonical order. Every deterministic iteration in
// the module walks ions in this order.
var All = [Count]Ion{Calcium, Magnesium, Sodium, Sulfate, Chloride, Bicarbonate}

var ionNames = [Count]string{"calcium", "magnesium", "sodium", "sulfate", "chloride", "bicarbonate"}

var ionSymbols = [Count]string{"Ca", "Mg", "Na", "SO4", "Cl", "HCO3"}

// String returns the lower-case ion name used in configuration files.
func (i Ion) String() string {
	if i < 0 || int(i) >= Count {
		return fmt.Sprintf("ion(%d)", int(i))
	}
	return ionNames[i]
}

// Symbol returns the chemical symbol of the ion.
func (i Ion) Symbol() string {
	if i < 0 || int(i) >= Count {
		return "?"
	}
	return ionSymbols[i]
}

// Valid reports whether i is one of the tracked ions.
func (i Ion) Valid() bool {
	return i >= 0 && int(i) < Count
}

// ParseIon resolves an ion from its name or chemical symbol, ignoring case.
func ParseIon(value string) (Ion, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, ion := range All {
		if trimmed == ionNames[ion] || trimmed == strings.ToLower(ionSymbols[ion]) {
			return ion, nil
		}
	}
	return 0, fmt.Errorf("unknown ion %q", value)
}

// Profile holds the concentration of each ion in ppm. Profiles are plain
// values; every operation returns a new Profile.
type Profile struct {
	Calcium     float64 `json:"calcium" yaml:"calcium" mapstructure:"calcium"`
	Magnesium   float64 `json:"magnesium" yaml:"magnesium" mapstructure:"magnesium"`
	Sodium      float64 `json:"sodium" yaml:"sodium" mapstructure:"sodium"`
	Sulfate     float64 `json:"sulfate" yaml:"sulfate" mapstructure:"sulfate"`
	Chloride    float64 `json:"chloride" yaml:"chloride" mapstructure:"chloride"`
	Bicarbonate float64 `json:"bicarbonate" yaml:"bicarbonate" mapstructure:"bicarbonate"`
}

// FromSlice builds a profile from values ordered like All.
func FromSlice(values []float64) (Profile, error) {
	if len(values) != Count {
		return Profile{}, fmt.Errorf("expected %d ion values, got %d", Count, len(values))
	}
	var p Profile
	for _, ion := range All {
		p = p.With(ion, values[ion])
	}
	return p, nil
}

// Slice returns the concentrations ordered like All.
func (p Profile) Slice() []float64 {
	out := make([]float64, Count)
	for _, ion := range All {
		out[ion] = p.Get(ion)
	}
	return out
}

// Get returns the concentration of one ion.
func (p Profile) Get(ion Ion) float64 {
	switch ion {
	case Calcium:
		return p.Calcium
	case Magnesium:
		return p.Magnesium
	case Sodium:
		return p.Sodium
	case Sulfate:
		return p.Sulfate
	case Chloride:
		return p.Chloride
	case Bicarbonate:
		return p.Bicarbonate
	}
	return 0
}

// With returns a copy of p with one ion replaced.
func (p Profile) With(ion Ion, value float64) Profile {
	switch ion {
	case Calcium:
		p.Calcium = value
	case Magnesium:
		p.Magnesium = value
	case Sodium:
		p.Sodium = value
	case Sulfate:
		p.Sulfate = value
	case Chloride:
		p.Chloride = value
	case Bicarbonate:
		p.Bicarbonate = value
	}
	return p
}

// Add returns the per-ion sum of p and other.
func (p Profile) Add(other Profile) Profile {
	var out Profile
	for _, ion := range All {
		out = out.With(ion, p.Get(ion)+other.Get(ion))
	}
	return out
}

// Sub returns the per-ion difference p - other. The result may be negative
// and is therefore a delta, not a valid profile.
func (p Profile) Sub(other Profile) Profile {
	var out Profile
	for _, ion := range All {
		out = out.With(ion, p.Get(ion)-other.Get(ion))
	}
	return out
}

// Scale multiplies every ion by factor.
func (p Profile) Scale(factor float64) Profile {
	var out Profile
	for _, ion := range All {
		out = out.With(ion, p.Get(ion)*factor)
	}
	return out
}

// Equal reports whether every ion of p is within tolerance of other.
func (p Profile) Equal(other Profile, tolerance float64) bool {
	for _, ion := range All {
		if !mathutil.WithinTolerance(p.Get(ion), other.Get(ion), tolerance) {
			return false
		}
	}
	return true
}

// Validate returns an error when any concentration is negative or not finite.
func (p Profile) Validate() error {
	for _, ion := range All {
		v := p.Get(ion)
		if !mathutil.IsFinite(v) {
			return fmt.Errorf("%s concentration must be finite, got %v", ion, v)
		}
		if v < 0 {
			return fmt.Errorf("%s concentration must not be negative, got %v", ion, v)
		}
	}
	return nil
}

// String renders the profile with chemical symbols.
func (p Profile) String() string {
	parts := make([]string, 0, Count)
	for _, ion := range All {
		parts = append(parts, fmt.Sprintf("%s=%.2f", ion.Symbol(), p.Get(ion)))
	}
	return strings.Join(parts, " ")
}
