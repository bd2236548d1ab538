package criteria

import "fmt"

// InputSchema describes the scoring form: the ANA entry gate followed by one
// boolean field per criterion, grouped by domain in catalog order.
type InputSchema struct {
	EntryGate EntryField     `json:"entry_gate"`
	Domains   []SchemaDomain `json:"domains"`
}

// EntryField is the ANA radio control.
type EntryField struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	Choices []EntryChoice `json:"choices"`
	Default string        `json:"default"`
}

type EntryChoice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type SchemaDomain struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Aggregation Aggregation   `json:"aggregation"`
	MaxPoints   int           `json:"max_points"`
	Note        string        `json:"note,omitempty"`
	Fields      []SchemaField `json:"fields"`
}

type SchemaField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Points   int    `json:"points"`
	DomainID string `json:"domain_id"`
}

var schema = buildSchema(catalog)

func buildSchema(domains []Domain) InputSchema {
	s := InputSchema{
		EntryGate: EntryField{
			Name:  "ana_positive",
			Label: "Antinuclear antibodies (ANA) - entry criterion",
			Choices: []EntryChoice{
				{Value: "true", Label: "Positive (ANA +)"},
				{Value: "false", Label: "Negative (ANA -)"},
			},
			Default: "true",
		},
		Domains: make([]SchemaDomain, 0, len(domains)),
	}
	for _, d := range domains {
		sd := SchemaDomain{
			ID:          d.ID,
			Label:       d.Label,
			Aggregation: d.Aggregation,
			MaxPoints:   MaxPoints(d),
			Note:        d.Note,
			Fields:      make([]SchemaField, 0, len(d.Criteria)),
		}
		for _, c := range d.Criteria {
			sd.Fields = append(sd.Fields, SchemaField{
				Name:     c.ID,
				Label:    fmt.Sprintf("%s (%d points)", c.Label, c.Points),
				Points:   c.Points,
				DomainID: d.ID,
			})
		}
		s.Domains = append(s.Domains, sd)
	}
	return s
}

// Schema returns the input schema derived from the catalog.
func Schema() InputSchema {
	out := schema
	out.EntryGate.Choices = append([]EntryChoice(nil), schema.EntryGate.Choices...)
	out.Domains = make([]SchemaDomain, len(schema.Domains))
	for i, d := range schema.Domains {
		d.Fields = append([]SchemaField(nil), d.Fields...)
		out.Domains[i] = d
	}
	return out
}
