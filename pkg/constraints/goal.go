package constraints

import (
	"fmt"
	"strings"

	"github.com/iwvelando/water-builder/pkg/salts"
)

// GoalKind selects among the salt combinations that satisfy a Set.
type GoalKind int

const (
	// MinimizeMass minimizes the total salt added (sum of g/L).
	MinimizeMass GoalKind = iota
	// MinimizeDeviation minimizes the summed absolute distance from the
	// target across all ions while still honoring the hard constraints.
	MinimizeDeviation
	// MinimizeSalt uses as little of Goal.Salt as possible.
	MinimizeSalt
	// MaximizeSalt uses as much of Goal.Salt as the constraints allow.
	MaximizeSalt
	// LeastSquares drops the hard constraints and minimizes the mean squared
	// ion error against the target. This is the explicit best fit mode.
	LeastSquares
)

var goalKindNames = map[GoalKind]string{
	MinimizeMass:      "minimize-mass",
	MinimizeDeviation: "minimize-deviation",
	MinimizeSalt:      "minimize-salt",
	MaximizeSalt:      "maximize-salt",
	LeastSquares:      "least-squares",
}

func (k GoalKind) String() string {
	if name, ok := goalKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("goal(%d)", int(k))
}

// NeedsSalt reports whether the kind targets a specific salt.
func (k GoalKind) NeedsSalt() bool {
	return k == MinimizeSalt || k == MaximizeSalt
}

// Linear reports whether the kind is solved as a linear program.
func (k GoalKind) Linear() bool {
	return k != LeastSquares
}

// Goal is an optimization directive.
type Goal struct {
	Kind GoalKind
	Salt salts.ID
}

// Validate checks that per-salt goals name a salt and others do not.
func (g Goal) Validate() error {
	if _, ok := goalKindNames[g.Kind]; !ok {
		return fmt.Errorf("unknown goal kind %d", int(g.Kind))
	}
	if g.Kind.NeedsSalt() && strings.TrimSpace(string(g.Salt)) == "" {
		return fmt.Errorf("goal %s requires a salt", g.Kind)
	}
	if !g.Kind.NeedsSalt() && g.Salt != "" {
		return fmt.Errorf("goal %s does not take a salt", g.Kind)
	}
	return nil
}

// String renders the goal as ParseGoal reads it.
func (g Goal) String() string {
	if g.Kind.NeedsSalt() {
		return g.Kind.String() + ":" + string(g.Salt)
	}
	return g.Kind.String()
}

// MarshalText implements encoding.TextMarshaler.
func (g Goal) MarshalText() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Goal) UnmarshalText(text []byte) error {
	parsed, err := ParseGoal(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGoal reads "minimize-mass", "best-fit", "maximize-salt:calcium-chloride"
// and similar forms. The salt is taken verbatim; resolve aliases against a
// catalog before solving.
func ParseGoal(value string) (Goal, error) {
	trimmed := strings.TrimSpace(value)
	name, salt, hasSalt := strings.Cut(trimmed, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	salt = strings.TrimSpace(salt)

	var kind GoalKind
	switch name {
	case "", "minimize-mass", "min-mass", "minimize":
		kind = MinimizeMass
	case "minimize-deviation", "min-deviation", "closest":
		kind = MinimizeDeviation
	case "minimize-salt", "min-salt":
		kind = MinimizeSalt
	case "maximize-salt", "max-salt":
		kind = MaximizeSalt
	case "least-squares", "best-fit", "bestfit":
		kind = LeastSquares
	default:
		return Goal{}, fmt.Errorf("unknown goal %q", value)
	}

	goal := Goal{Kind: kind}
	if hasSalt {
		goal.Salt = salts.ID(salt)
	}
	if err := goal.Validate(); err != nil {
		return Goal{}, err
	}
	return goal, nil
}
