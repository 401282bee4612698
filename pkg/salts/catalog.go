// Package salts holds the catalog of mineral salts a brewer can dissolve
// into water, and the forward simulation of what those additions do to an
// ion profile.
package salts

import (
	"fmt"
	"strings"

	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/mathutil"
)

// ID identifies a salt in a catalog.
type ID string

const (
	CalciumSulfate              ID = "calcium-sulfate"
	CalciumChloride             ID = "calcium-chloride"
	MagnesiumSulfate            ID = "magnesium-sulfate"
	SodiumBicarbonate           ID = "sodium-bicarbonate"
	SodiumChloride              ID = "sodium-chloride"
	CalciumCarbonate            ID = "calcium-carbonate"
	CalciumCarbonateUndissolved ID = "calcium-carbonate-undissolved"
	CalciumBicarbonate          ID = "calcium-bicarbonate"
	MagnesiumChloride           ID = "magnesium-chloride"
)

// Entry is one salt with its ion contributions. Coefficients holds the ppm
// each ion gains when one gram of the salt is dissolved per liter.
type Entry struct {
	ID           ID          `json:"id" yaml:"id"`
	Name         string      `json:"name" yaml:"name"`
	Formula      string      `json:"formula" yaml:"formula"`
	Aliases      []string    `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Coefficients ions.Profile `json:"coefficients" yaml:"coefficients"`
}

// Contributes reports whether the salt adds any amount of ion.
func (e Entry) Contributes(ion ions.Ion) bool {
	return e.Coefficients.Get(ion) > 0
}

func (e Entry) validate() error {
	if strings.TrimSpace(string(e.ID)) == "" {
		return fmt.Errorf("salt id cannot be empty")
	}
	if err := e.Coefficients.Validate(); err != nil {
		return fmt.Errorf("salt %s: %w", e.ID, err)
	}
	for _, ion := range ions.All {
		if e.Contributes(ion) {
			return nil
		}
	}
	return fmt.Errorf("salt %s contributes no ions", e.ID)
}

// FromPercentages builds an entry from declared ion mass percentages, the
// form ingredient records carry them in (e.g. gypsum: 23.3% Ca, 55.8% SO4).
func FromPercentages(id ID, name, formula string, percentages map[ions.Ion]float64) (Entry, error) {
	var coef ions.Profile
	for _, ion := range ions.All {
		pct, ok := percentages[ion]
		if !ok {
			continue
		}
		if pct < 0 || pct > 100 || !mathutil.IsFinite(pct) {
			return Entry{}, fmt.Errorf("salt %s: %s percentage %v out of range", id, ion, pct)
		}
		coef = coef.With(ion, pct/100*constants.MilligramsPerGram)
	}
	for ion := range percentages {
		if !ion.Valid() {
			return Entry{}, fmt.Errorf("salt %s: unknown ion %v", id, ion)
		}
	}
	entry := Entry{ID: id, Name: name, Formula: formula, Coefficients: coef}
	if err := entry.validate(); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Catalog is an immutable, ordered set of salts.
type Catalog struct {
	entries []Entry
	index   map[ID]int
	aliases map[string]ID
}

// NewCatalog validates the entries and builds a catalog that keeps their
// order.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog requires at least one salt")
	}

	c := &Catalog{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[ID]int, len(entries)),
		aliases: make(map[string]ID),
	}
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[e.ID]; dup {
			return nil, fmt.Errorf("duplicate salt id %s", e.ID)
		}
		e.Aliases = append([]string(nil), e.Aliases...)
		c.index[e.ID] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	for _, e := range c.entries {
		for _, alias := range e.Aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if _, clash := c.index[ID(key)]; clash && ID(key) != e.ID {
				return nil, fmt.Errorf("alias %q of %s shadows salt id %s", alias, e.ID, key)
			}
			if owner, clash := c.aliases[key]; clash && owner != e.ID {
				return nil, fmt.Errorf("alias %q used by both %s and %s", alias, owner, e.ID)
			}
			c.aliases[key] = e.ID
		}
	}
	return c, nil
}

var defaultCatalog = mustDefaultCatalog()

func mustDefaultCatalog() *Catalog {
	entries := make([]Entry, 0, len(standardCompounds))
	for _, c := range standardCompounds {
		entries = append(entries, c.entry())
	}
	catalog, err := NewCatalog(entries...)
	if err != nil {
		panic(fmt.Sprintf("invalid standard salt catalog: %v", err))
	}
	return catalog
}

// DefaultCatalog returns the standard brewing salt catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Len returns the number of salts.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// IDs returns salt ids in catalog order.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, len(c.entries))
	for i, e := range c.entries {
		ids[i] = e.ID
	}
	return ids
}

// Entries returns a copy of the catalog entries in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id ID) (Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Has reports whether the catalog contains id.
func (c *Catalog) Has(id ID) bool {
	_, ok := c.index[id]
	return ok
}

// Resolve maps a salt id or alias (case-insensitive) to its catalog id.
func (c *Catalog) Resolve(name string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.index[ID(key)]; ok {
		return ID(key), nil
	}
	if id, ok := c.aliases[key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("unknown salt %q", name)
}

// Coefficient returns the ppm of ion contributed per g/L of salt id, or 0
// for unknown salts.
func (c *Catalog) Coefficient(id ID, ion ions.Ion) float64 {
	e, ok := c.Lookup(id)
	if !ok {
		return 0
	}
	return e.Coefficients.Get(ion)
}
