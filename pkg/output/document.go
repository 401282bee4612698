package output

import (
	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
)

// SaltAmount is one salt line of a result document.
type SaltAmount struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Formula       string  `json:"formula"`
	GramsPerLiter float64 `json:"gramsPerLiter"`
	Grams         float64 `json:"grams"`
}

// IonRow compares one ion across the starting water, the result and the target.
type IonRow struct {
	Ion        string  `json:"ion"`
	Symbol     string  `json:"symbol"`
	Start      float64 `json:"start"`
	Result     float64 `json:"result"`
	Target     float64 `json:"target"`
	Delta      float64 `json:"delta"`
	Constraint string  `json:"constraint"`
}

// ResultDocument is the serializable form of a builder.Result, shared by
// the CLI's json output and the HTTP API.
type ResultDocument struct {
	Feasible     bool              `json:"feasible"`
	Reason       string            `json:"reason,omitempty"`
	Goal         string            `json:"goal"`
	Constraints  map[string]string `json:"constraints"`
	TargetVolume float64           `json:"targetVolume"`
	Salts        []SaltAmount      `json:"salts,omitempty"`
	Ions         []IonRow          `json:"ions,omitempty"`
	Score        float64           `json:"score"`
	TotalMass    float64           `json:"totalMass"`
	TotalGrams   float64           `json:"totalGrams"`
	Violations   []string          `json:"violations,omitempty"`
	Iterations   int               `json:"iterations,omitempty"`
	Converged    bool              `json:"converged"`
}

// BestFitDocument is the serializable form of a builder.BestFitResult.
type BestFitDocument struct {
	Found       bool              `json:"found"`
	Reason      string            `json:"reason,omitempty"`
	Evaluated   int               `json:"evaluated"`
	Feasible    int               `json:"feasible"`
	Goal        string            `json:"goal,omitempty"`
	Constraints map[string]string `json:"constraints,omitempty"`
	Result      *ResultDocument   `json:"result,omitempty"`
}

// NewResultDocument converts result, listing salts in catalog order. A nil
// catalog means the default catalog.
func NewResultDocument(result builder.Result, catalog *salts.Catalog) ResultDocument {
	if catalog == nil {
		catalog = salts.DefaultCatalog()
	}

	doc := ResultDocument{
		Feasible:     result.Feasible,
		Reason:       result.Reason,
		Goal:         result.Goal.String(),
		Constraints:  result.Constraints.Named(),
		TargetVolume: result.TargetVolume,
	}
	if !result.Feasible {
		return doc
	}

	grams := result.Grams()
	for _, entry := range catalog.Entries() {
		doc.Salts = append(doc.Salts, SaltAmount{
			ID:            string(entry.ID),
			Name:          entry.Name,
			Formula:       entry.Formula,
			GramsPerLiter: result.Quantities[entry.ID],
			Grams:         grams[entry.ID],
		})
		doc.TotalGrams += grams[entry.ID]
	}

	delta := result.Delta()
	for _, ion := range ions.All {
		constraint := ""
		if rel, ok := result.Constraints[ion]; ok {
			constraint = rel.Symbol()
		}
		doc.Ions = append(doc.Ions, IonRow{
			Ion:        ion.String(),
			Symbol:     ion.Symbol(),
			Start:      result.Base.Get(ion),
			Result:     result.Profile.Get(ion),
			Target:     result.Target.Get(ion),
			Delta:      delta.Get(ion),
			Constraint: constraint,
		})
	}

	doc.Score = result.Score
	doc.TotalMass = result.TotalMass
	doc.Iterations = result.Iterations
	doc.Converged = result.Converged
	for _, v := range result.Violations {
		doc.Violations = append(doc.Violations, v.String())
	}
	return doc
}

// NewBestFitDocument converts a best fit outcome.
func NewBestFitDocument(out builder.BestFitResult, catalog *salts.Catalog) BestFitDocument {
	doc := BestFitDocument{
		Found:     out.Found,
		Reason:    out.Reason,
		Evaluated: out.Evaluated,
		Feasible:  out.Feasible,
	}
	if !out.Found {
		return doc
	}
	result := NewResultDocument(out.Result, catalog)
	doc.Goal = out.Goal.String()
	doc.Constraints = out.Constraints.Named()
	doc.Result = &result
	return doc
}
