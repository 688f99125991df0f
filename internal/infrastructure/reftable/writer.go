package reftable

import (
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/recipelens/backend/internal/domain"
)

// Encode renders primary entries in the table file format, in the given order.
// Each record is written in flow style on one line so drafts can be pasted into the table.
func Encode(entries []domain.ReferenceEntry) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name},
			recordNode(e.Record),
		)
	}
	return yaml.Marshal(doc)
}

func recordNode(r domain.NutrientRecord) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	add := func(k string, v float64) {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(domain.Round(v, 3), 'f', -1, 64)},
		)
	}
	add("energy", r.EnergyKcal)
	add("protein", r.ProteinG)
	add("carbs", r.CarbsG)
	add("fat", r.FatG)
	if r.SodiumMg != 0 {
		add("sodium", r.SodiumMg)
	}
	if r.UnitLabel != "" && r.UnitLabel != "g" {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "unit"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: r.UnitLabel},
		)
	}
	return n
}
