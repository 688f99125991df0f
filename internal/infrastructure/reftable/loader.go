// Package reftable loads the ingredient reference table from YAML.
package reftable

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recipelens/backend/internal/domain"
)

//go:embed data/reference_table.yaml
var defaultTable []byte

// entry is one record as written in the table file.
// calories and salt are accepted as older spellings of energy and sodium.
type entry struct {
	Energy   *float64 `yaml:"energy"`
	Calories *float64 `yaml:"calories"`
	Protein  float64  `yaml:"protein"`
	Carbs    float64  `yaml:"carbs"`
	Fat      float64  `yaml:"fat"`
	Sodium   *float64 `yaml:"sodium"`
	Salt     *float64 `yaml:"salt"`
	Unit     string   `yaml:"unit"`
	Aliases  []string `yaml:"aliases"`
	Keywords []string `yaml:"keywords"`
}

func (e entry) record() domain.NutrientRecord {
	rec := domain.NutrientRecord{
		ProteinG: e.Protein,
		CarbsG:   e.Carbs,
		FatG:     e.Fat,
	}
	switch {
	case e.Energy != nil:
		rec.EnergyKcal = *e.Energy
	case e.Calories != nil:
		rec.EnergyKcal = *e.Calories
	}
	switch {
	case e.Sodium != nil:
		rec.SodiumMg = *e.Sodium
	case e.Salt != nil:
		rec.SodiumMg = *e.Salt
	}
	return rec
}

// Load reads the table at path, or the built-in table when path is empty
func Load(path string) (*domain.ReferenceTable, error) {
	if path == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference table %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("reference table %s: %w", path, err)
	}
	return table, nil
}

// LoadDefault parses the built-in table
func LoadDefault() (*domain.ReferenceTable, error) {
	return Parse(defaultTable)
}

// Parse builds a reference table from a YAML document, keeping declaration order.
func Parse(data []byte) (*domain.ReferenceTable, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidReferenceTable, err)
	}
	if len(root.Content) == 0 {
		return nil, domain.ErrEmptyReferenceTable
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping (line %d)", domain.ErrInvalidReferenceTable, doc.Line)
	}

	b := domain.NewReferenceTableBuilder()
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]

		if unit, err := domain.ParseUnit(key.Value); err == nil && unit.IsInformal() {
			if err := addInformalBlock(b, unit.Label, value); err != nil {
				return nil, err
			}
			continue
		}

		if err := addPrimary(b, key, value); err != nil {
			return nil, err
		}
	}

	return b.Build()
}

func addPrimary(b *domain.ReferenceTableBuilder, key, value *yaml.Node) error {
	e, err := decodeEntry(key, value)
	if err != nil {
		return err
	}

	if len(e.Keywords) > 0 {
		return fmt.Errorf("%w: %q has keywords, which are only allowed under a unit block (line %d)",
			domain.ErrInvalidReferenceTable, key.Value, value.Line)
	}

	rec := e.record()
	unit, err := domain.ParseUnit(e.Unit)
	if err != nil || unit.IsInformal() || unit.Multiplier != 1 {
		return fmt.Errorf("%w: %q has unit %q, want g or ml (line %d)",
			domain.ErrInvalidReferenceTable, key.Value, e.Unit, value.Line)
	}
	rec.Basis = unit.Basis
	rec.UnitLabel = unit.Label

	for _, name := range append([]string{key.Value}, e.Aliases...) {
		if err := b.Add(name, rec); err != nil {
			return fmt.Errorf("%w (line %d)", err, key.Line)
		}
	}
	return nil
}

func addInformalBlock(b *domain.ReferenceTableBuilder, unitLabel string, block *yaml.Node) error {
	if block.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: unit block %q must be a mapping (line %d)",
			domain.ErrInvalidReferenceTable, unitLabel, block.Line)
	}
	for i := 0; i+1 < len(block.Content); i += 2 {
		key, value := block.Content[i], block.Content[i+1]
		e, err := decodeEntry(key, value)
		if err != nil {
			return err
		}
		rec := e.record()
		for _, name := range append([]string{key.Value}, e.Aliases...) {
			if err := b.AddInformal(unitLabel, name, rec); err != nil {
				return fmt.Errorf("%w (line %d)", err, key.Line)
			}
		}
		if len(e.Keywords) > 0 {
			if err := b.AddInformalKeywords(unitLabel, key.Value, e.Keywords...); err != nil {
				return fmt.Errorf("%w (line %d)", err, key.Line)
			}
		}
	}
	return nil
}

func decodeEntry(key, value *yaml.Node) (entry, error) {
	var e entry
	if value.Kind != yaml.MappingNode {
		return e, fmt.Errorf("%w: entry %q must be a mapping (line %d)",
			domain.ErrInvalidReferenceTable, key.Value, value.Line)
	}
	if err := value.Decode(&e); err != nil {
		return e, fmt.Errorf("%w: entry %q: %v", domain.ErrInvalidReferenceTable, key.Value, err)
	}
	return e, nil
}
