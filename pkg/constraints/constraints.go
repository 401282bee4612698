// Package constraints defines how a solved water profile must relate to its
// target, per ion, and which goal picks among the profiles that qualify.
package constraints

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/water-builder/pkg/ions"
)

// Relation is the required relation between a resulting ion concentration
// and its target.
type Relation int

const (
	// LEQ requires result <= target.
	LEQ Relation = iota
	// GEQ requires result >= target.
	GEQ
	// EQ requires result == target.
	EQ
)

func (r Relation) String() string {
	switch r {
	case LEQ:
		return "leq"
	case GEQ:
		return "geq"
	case EQ:
		return "eq"
	}
	return fmt.Sprintf("relation(%d)", int(r))
}

// Symbol renders the relation as a comparison operator.
func (r Relation) Symbol() string {
	switch r {
	case LEQ:
		return "<="
	case GEQ:
		return ">="
	case EQ:
		return "="
	}
	return "?"
}

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	return r == LEQ || r == GEQ || r == EQ
}

// ParseRelation reads a relation from its name or operator.
func ParseRelation(value string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "leq", "le", "<=", "max":
		return LEQ, nil
	case "geq", "ge", ">=", "min":
		return GEQ, nil
	case "eq", "=", "==", "exact":
		return EQ, nil
	}
	return 0, fmt.Errorf("unknown constraint relation %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (r Relation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid relation %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Relation) UnmarshalText(text []byte) error {
	parsed, err := ParseRelation(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Set holds one relation per ion. A Set is only usable once every ion has
// an entry; see Validate.
type Set map[ions.Ion]Relation

// Uniform applies the same relation to every ion.
func Uniform(rel Relation) Set {
	s := make(Set, ions.Count)
	for _, ion := range ions.All {
		s[ion] = rel
	}
	return s
}

// Pinned requires ion to hit its target exactly and applies rest to every
// other ion.
func Pinned(ion ions.Ion, rest Relation) Set {
	s := Uniform(rest)
	s[ion] = EQ
	return s
}

// Anchored floors every ion the starting water already meets or exceeds and
// caps the rest, so adding nothing always satisfies it.
func Anchored(base, target ions.Profile) Set {
	s := make(Set, ions.Count)
	for _, ion := range ions.All {
		if base.Get(ion) >= target.Get(ion) {
			s[ion] = GEQ
		} else {
			s[ion] = LEQ
		}
	}
	return s
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for ion, rel := range s {
		out[ion] = rel
	}
	return out
}

// Validate fails when an ion is missing or a relation is unknown.
func (s Set) Validate() error {
	var missing []string
	for _, ion := range ions.All {
		rel, ok := s[ion]
		if !ok {
			missing = append(missing, ion.String())
			continue
		}
		if !rel.Valid() {
			return fmt.Errorf("constraint for %s has invalid relation %d", ion, int(rel))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing constraint for %s", strings.Join(missing, ", "))
	}
	for ion := range s {
		if !ion.Valid() {
			return fmt.Errorf("constraint given for unknown ion %d", int(ion))
		}
	}
	return nil
}

// Violation describes by how much a result misses one constraint.
type Violation struct {
	Ion      ions.Ion `json:"ion"`
	Relation Relation `json:"relation"`
	Result   float64  `json:"result"`
	Target   float64  `json:"target"`
	Amount   float64  `json:"amount"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %.4f %s %.4f violated by %.6f ppm", v.Ion, v.Result, v.Relation.Symbol(), v.Target, v.Amount)
}

// Violations lists every constraint result misses by more than tolerance,
// in canonical ion order.
func (s Set) Violations(result, target ions.Profile, tolerance float64) []Violation {
	var out []Violation
	for _, ion := range ions.All {
		rel, ok := s[ion]
		if !ok {
			continue
		}
		r, t := result.Get(ion), target.Get(ion)
		var miss float64
		switch rel {
		case LEQ:
			miss = r - t
		case GEQ:
			miss = t - r
		case EQ:
			miss = math.Abs(r - t)
		}
		if miss > tolerance {
			out = append(out, Violation{Ion: ion, Relation: rel, Result: r, Target: t, Amount: miss})
		}
	}
	return out
}

// Satisfied reports whether result meets every constraint within tolerance.
func (s Set) Satisfied(result, target ions.Profile, tolerance float64) bool {
	return len(s.Violations(result, target, tolerance)) == 0
}

// String renders the set in canonical ion order, e.g. "Ca=,Mg<=,...".
func (s Set) String() string {
	parts := make([]string, 0, ions.Count)
	for _, ion := range ions.All {
		rel, ok := s[ion]
		if !ok {
			parts = append(parts, ion.Symbol()+"?")
			continue
		}
		parts = append(parts, ion.Symbol()+rel.Symbol())
	}
	return strings.Join(parts, ",")
}

// Named returns the set keyed by ion and relation names.
func (s Set) Named() map[string]string {
	out := make(map[string]string, len(s))
	for ion, rel := range s {
		out[ion.String()] = rel.String()
	}
	return out
}

// ParseSet builds a Set from ion-name keys and relation values.
func ParseSet(raw map[string]string) (Set, error) {
	s := make(Set, len(raw))
	for key, value := range raw {
		ion, err := ions.ParseIon(key)
		if err != nil {
			return nil, err
		}
		rel, err := ParseRelation(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ion, err)
		}
		if _, dup := s[ion]; dup {
			return nil, fmt.Errorf("duplicate constraint for %s", ion)
		}
		s[ion] = rel
	}
	return s, nil
}
