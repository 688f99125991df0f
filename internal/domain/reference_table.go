package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ReferenceEntry pairs a canonical ingredient name with its nutrient record.
// Keywords are only set on informal entries: extra words that select this
// record when they appear inside an ingredient name.
type ReferenceEntry struct {
	Name     string
	Record   NutrientRecord
	Keywords []string
}

// ReferenceTable maps canonical ingredient names to nutrient records.
// It has two namespaces: the primary per-100-unit table and, for each informal unit
// label, a table of records already expressed per one unit. Declaration order is kept
// in both namespaces. A built table is never mutated and is safe for concurrent reads.
type ReferenceTable struct {
	primary     []ReferenceEntry
	primaryIdx  map[string]int
	informal    map[string][]ReferenceEntry
	informalIdx map[string]map[string]int
	fingerprint string
}

// NormalizeName trims and case-folds an ingredient name
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup finds name in the informal namespace of unitLabel when one exists,
// otherwise in the primary namespace.
func (t *ReferenceTable) Lookup(name, unitLabel string) (NutrientRecord, bool) {
	if _, ok := t.informal[unitLabel]; ok {
		return t.Informal(unitLabel, name)
	}
	return t.Primary(name)
}

// Primary returns the per-100-unit record for name
func (t *ReferenceTable) Primary(name string) (NutrientRecord, bool) {
	i, ok := t.primaryIdx[NormalizeName(name)]
	if !ok {
		return NutrientRecord{}, false
	}
	return t.primary[i].Record, true
}

// Informal returns the per-unit record for name under the given informal unit label
func (t *ReferenceTable) Informal(unitLabel, name string) (NutrientRecord, bool) {
	idx, ok := t.informalIdx[unitLabel]
	if !ok {
		return NutrientRecord{}, false
	}
	i, ok := idx[NormalizeName(name)]
	if !ok {
		return NutrientRecord{}, false
	}
	return t.informal[unitLabel][i].Record, true
}

// Entries returns the primary entries in declaration order
func (t *ReferenceTable) Entries() []ReferenceEntry {
	out := make([]ReferenceEntry, len(t.primary))
	copy(out, t.primary)
	return out
}

// InformalEntries returns the entries declared under an informal unit label, in declaration order
func (t *ReferenceTable) InformalEntries(unitLabel string) []ReferenceEntry {
	entries := t.informal[unitLabel]
	out := make([]ReferenceEntry, len(entries))
	copy(out, entries)
	return out
}

// InformalUnits returns the informal unit labels that have at least one entry
func (t *ReferenceTable) InformalUnits() []string {
	units := make([]string, 0, len(t.informal))
	for u := range t.informal {
		units = append(units, u)
	}
	return units
}

// Fingerprint is a digest of every entry, keyword and declaration position.
// Two tables with the same fingerprint resolve every ingredient identically.
func (t *ReferenceTable) Fingerprint() string {
	return t.fingerprint
}

// Len returns the number of primary entries
func (t *ReferenceTable) Len() int {
	return len(t.primary)
}

// InformalLen returns the number of entries across all informal namespaces
func (t *ReferenceTable) InformalLen() int {
	n := 0
	for _, entries := range t.informal {
		n += len(entries)
	}
	return n
}

// ReferenceTableBuilder accumulates entries and produces an immutable ReferenceTable
type ReferenceTableBuilder struct {
	table *ReferenceTable
	built bool
}

// NewReferenceTableBuilder creates an empty builder
func NewReferenceTableBuilder() *ReferenceTableBuilder {
	return &ReferenceTableBuilder{
		table: &ReferenceTable{
			primaryIdx:  make(map[string]int),
			informal:    make(map[string][]ReferenceEntry),
			informalIdx: make(map[string]map[string]int),
		},
	}
}

// Add appends a primary per-100-unit entry
func (b *ReferenceTableBuilder) Add(name string, record NutrientRecord) error {
	if b.built {
		return fmt.Errorf("%w: builder already used", ErrInvalidReferenceTable)
	}
	key := NormalizeName(name)
	if err := checkEntry(key, record); err != nil {
		return err
	}
	if _, dup := b.table.primaryIdx[key]; dup {
		return fmt.Errorf("%w: duplicate ingredient %q", ErrInvalidReferenceTable, key)
	}
	if record.UnitLabel == "" {
		record.UnitLabel = "g"
	}

	b.table.primaryIdx[key] = len(b.table.primary)
	b.table.primary = append(b.table.primary, ReferenceEntry{Name: key, Record: record})
	return nil
}

// AddInformal appends a per-unit entry under an informal unit label
func (b *ReferenceTableBuilder) AddInformal(unitLabel, name string, record NutrientRecord) error {
	if b.built {
		return fmt.Errorf("%w: builder already used", ErrInvalidReferenceTable)
	}
	if unitLabel == "" {
		return fmt.Errorf("%w: empty unit label for %q", ErrInvalidReferenceTable, name)
	}
	key := NormalizeName(name)
	if err := checkEntry(key, record); err != nil {
		return err
	}

	idx, ok := b.table.informalIdx[unitLabel]
	if !ok {
		idx = make(map[string]int)
		b.table.informalIdx[unitLabel] = idx
	}
	if _, dup := idx[key]; dup {
		return fmt.Errorf("%w: duplicate ingredient %q under unit %q", ErrInvalidReferenceTable, key, unitLabel)
	}

	record.Basis = BasisCount
	record.UnitLabel = unitLabel
	idx[key] = len(b.table.informal[unitLabel])
	b.table.informal[unitLabel] = append(b.table.informal[unitLabel], ReferenceEntry{Name: key, Record: record})
	return nil
}

// AddInformalKeywords attaches override keywords to an informal entry already added under unitLabel
func (b *ReferenceTableBuilder) AddInformalKeywords(unitLabel, name string, keywords ...string) error {
	if b.built {
		return fmt.Errorf("%w: builder already used", ErrInvalidReferenceTable)
	}
	key := NormalizeName(name)
	i, ok := b.table.informalIdx[unitLabel][key]
	if !ok {
		return fmt.Errorf("%w: keywords for unknown ingredient %q under unit %q", ErrInvalidReferenceTable, key, unitLabel)
	}
	entry := &b.table.informal[unitLabel][i]
	for _, kw := range keywords {
		if kw = NormalizeName(kw); kw == "" {
			return fmt.Errorf("%w: empty keyword for %q under unit %q", ErrInvalidReferenceTable, key, unitLabel)
		}
		entry.Keywords = append(entry.Keywords, kw)
	}
	return nil
}

// Build returns the finished table. A table without primary entries is rejected.
func (b *ReferenceTableBuilder) Build() (*ReferenceTable, error) {
	if b.built {
		return nil, fmt.Errorf("%w: builder already used", ErrInvalidReferenceTable)
	}
	if len(b.table.primary) == 0 {
		return nil, ErrEmptyReferenceTable
	}
	b.built = true
	b.table.fingerprint = b.table.digest()
	return b.table, nil
}

func (t *ReferenceTable) digest() string {
	h := sha256.New()
	writeEntries := func(entries []ReferenceEntry) {
		for _, e := range entries {
			r := e.Record
			fields := []string{
				e.Name,
				r.Basis.String(),
				r.UnitLabel,
				strconv.FormatFloat(r.EnergyKcal, 'g', -1, 64),
				strconv.FormatFloat(r.ProteinG, 'g', -1, 64),
				strconv.FormatFloat(r.CarbsG, 'g', -1, 64),
				strconv.FormatFloat(r.FatG, 'g', -1, 64),
				strconv.FormatFloat(r.SodiumMg, 'g', -1, 64),
				strings.Join(e.Keywords, ","),
			}
			h.Write([]byte(strings.Join(fields, "\x00")))
			h.Write([]byte{'\n'})
		}
	}

	writeEntries(t.primary)
	units := t.InformalUnits()
	sort.Strings(units)
	for _, u := range units {
		h.Write([]byte("[" + u + "]\n"))
		writeEntries(t.informal[u])
	}
	return hex.EncodeToString(h.Sum(nil))
}

func checkEntry(key string, r NutrientRecord) error {
	if key == "" {
		return fmt.Errorf("%w: empty ingredient name", ErrInvalidReferenceTable)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"energy", r.EnergyKcal},
		{"protein", r.ProteinG},
		{"carbs", r.CarbsG},
		{"fat", r.FatG},
		{"sodium", r.SodiumMg},
	} {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s of %q must be a non-negative number, got %v", ErrInvalidReferenceTable, f.name, key, f.v)
		}
	}
	return nil
}
