// Package criteria holds the EULAR/ACR 2019 SLE classification table: ten
// clinical and immunological domains, their weighted criteria and the rule used
// to aggregate selections inside each domain.
//
// The table is built once at package initialisation and is read-only for the
// life of the process. Every accessor hands out copies.
package criteria

// Aggregation decides how selected criteria inside one domain become points.
type Aggregation string

const (
	// AggregationMaxOfSelected awards the single highest weighted selection.
	// Selections inside a domain are never summed.
	AggregationMaxOfSelected Aggregation = "max_of_selected"
	// AggregationSingleValue domains hold one criterion scored as pass/fail.
	AggregationSingleValue Aggregation = "single_value"
)

// Criterion is a single clinical or laboratory finding with a fixed weight.
type Criterion struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Domain groups related criteria.
type Domain struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Criteria    []Criterion `json:"criteria"`
	Aggregation Aggregation `json:"aggregation"`
	Note        string      `json:"note,omitempty"`
}

var (
	catalog = buildCatalog()
	index   = buildIndex(catalog)
)

func buildCatalog() []Domain {
	return []Domain{
		{
			ID:    "constitutional",
			Label: "Constitutional",
			Criteria: []Criterion{
				{"fever", "Fever (>38.3°C)", 2},
			},
			Aggregation: AggregationSingleValue,
		},
		{
			ID:    "hematologic",
			Label: "Hematologic",
			Criteria: []Criterion{
				{"leukopenia", "Leukopenia", 3},
				{"thrombocytopenia", "Thrombocytopenia", 4},
				{"autoimmune_hemolysis", "Autoimmune hemolysis", 4},
			},
			Aggregation: AggregationMaxOfSelected,
		},
		{
			ID:    "neuropsychiatric",
			Label: "Neuropsychiatric",
			Criteria: []Criterion{
				{"delirium", "Delirium", 2},
				{"psychosis", "Psychosis", 3},
				{"seizure", "Seizure", 5},
			},
			Aggregation: AggregationMaxOfSelected,
		},
		{
			ID:    "mucocutaneous",
			Label: "Mucocutaneous",
			Criteria: []Criterion{
				{"nonscarring_alopecia", "Non-scarring alopecia", 2},
				{"oral_ulcers", "Oral ulcers", 2},
				{"subacute_cutaneous_or_discoid", "Subacute cutaneous or discoid lupus", 4},
				{"acute_cutaneous", "Acute cutaneous lupus", 6},
			},
			Aggregation: AggregationMaxOfSelected,
		},
		{
			ID:    "serosal",
			Label: "Serosal",
			Criteria: []Criterion{
				{"pleural_or_pericardial_effusion", "Pleural or pericardial effusion", 5},
				{"acute_pericarditis", "Acute pericarditis", 6},
			},
			Aggregation: AggregationMaxOfSelected,
		},
		{
			ID:    "musculoskeletal",
			Label: "Musculoskeletal",
			Criteria: []Criterion{
				{"joint_involvement", "Joint involvement", 6},
			},
			Aggregation: AggregationSingleValue,
		},
		{
			ID:    "renal",
			Label: "Renal",
			Criteria: []Criterion{
				{"proteinuria", "Proteinuria >0.5 g/24h", 4},
				{"renal_biopsy_class_ii_or_v", "Renal biopsy class II or V lupus nephritis", 8},
				{"renal_biopsy_class_iii_or_iv", "Renal biopsy class III or IV lupus nephritis", 10},
			},
			Aggregation: AggregationMaxOfSelected,
			Note:        "Biopsy class III/IV carries 10 points and alone meets classification when ANA is positive.",
		},
		{
			ID:    "antiphospholipid",
			Label: "Antiphospholipid antibodies",
			Criteria: []Criterion{
				{"antiphospholipid_any", "Anti-cardiolipin, anti-β2GP1 or lupus anticoagulant (any positive)", 2},
			},
			Aggregation: AggregationSingleValue,
		},
		{
			ID:    "complement",
			Label: "Complement proteins",
			Criteria: []Criterion{
				{"low_c3_or_c4", "Low C3 or low C4", 3},
				{"low_c3_and_c4", "Low C3 and low C4", 4},
			},
			Aggregation: AggregationMaxOfSelected,
		},
		{
			ID:    "sle_specific_abs",
			Label: "SLE-specific antibodies",
			Criteria: []Criterion{
				{"anti_dsdna_or_anti_sm", "Anti-dsDNA or anti-Smith antibody", 6},
			},
			Aggregation: AggregationSingleValue,
		},
	}
}

type entry struct {
	criterion Criterion
	domain    int
}

func buildIndex(domains []Domain) map[string]entry {
	idx := make(map[string]entry)
	for i, d := range domains {
		for _, c := range d.Criteria {
			if _, dup := idx[c.ID]; dup {
				panic("criteria: duplicate criterion id " + c.ID)
			}
			idx[c.ID] = entry{criterion: c, domain: i}
		}
	}
	return idx
}

// Domains returns the catalog in its fixed order.
func Domains() []Domain {
	out := make([]Domain, len(catalog))
	for i, d := range catalog {
		out[i] = d.clone()
	}
	return out
}

// DomainByID looks up a domain by id.
func DomainByID(id string) (Domain, bool) {
	for _, d := range catalog {
		if d.ID == id {
			return d.clone(), true
		}
	}
	return Domain{}, false
}

// IsKnown reports whether id names a catalog criterion.
func IsKnown(id string) bool {
	_, ok := index[id]
	return ok
}

// Lookup returns a criterion and the domain that owns it.
func Lookup(id string) (Criterion, Domain, bool) {
	e, ok := index[id]
	if !ok {
		return Criterion{}, Domain{}, false
	}
	return e.criterion, catalog[e.domain].clone(), true
}

// KnownIDs lists every criterion id in catalog order.
func KnownIDs() []string {
	ids := make([]string, 0, len(index))
	for _, d := range catalog {
		for _, c := range d.Criteria {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Filter drops ids that are not in the catalog. Callers run every externally
// supplied selection set through Filter before scoring.
func Filter(selections map[string]bool) map[string]bool {
	out := make(map[string]bool, len(selections))
	for id, v := range selections {
		if IsKnown(id) {
			out[id] = v
		}
	}
	return out
}

// MaxPoints is the most a domain can contribute to the total.
func MaxPoints(d Domain) int {
	if len(d.Criteria) == 0 {
		return 0
	}
	if d.Aggregation == AggregationSingleValue {
		return d.Criteria[0].Points
	}
	best := 0
	for _, c := range d.Criteria {
		if c.Points > best {
			best = c.Points
		}
	}
	return best
}

func (d Domain) clone() Domain {
	d.Criteria = append([]Criterion(nil), d.Criteria...)
	return d
}
