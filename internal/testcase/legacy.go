package testcase

import "strings"

// keywordRule flags a criterion when any normalised input string contains one
// of its keywords.
type keywordRule struct {
	criterion string
	keywords  []string
}

// legacyRules is the keyword table for the free-text fixture format. Matching
// is plain substring containment, so "class iii" also flags class II/V.
var legacyRules = []keywordRule{
	// renal
	{"proteinuria", []string{"proteinuria"}},
	{"renal_biopsy_class_iii_or_iv", []string{"class iii", "class iv"}},
	{"renal_biopsy_class_ii_or_v", []string{"class ii", "class v"}},
	// serosal
	{"acute_pericarditis", []string{"acute pericarditis"}},
	{"pleural_or_pericardial_effusion", []string{"effusion"}},
	// hematologic
	{"leukopenia", []string{"leukopenia"}},
	{"thrombocytopenia", []string{"thrombocytopenia"}},
	{"autoimmune_hemolysis", []string{"hemolysis"}},
	// neuropsychiatric
	{"delirium", []string{"delirium"}},
	{"psychosis", []string{"psychosis"}},
	{"seizure", []string{"seizure"}},
	// musculoskeletal
	{"joint_involvement", []string{"arthritis", "joint"}},
	// mucocutaneous
	{"acute_cutaneous", []string{"acute cutaneous"}},
	{"subacute_cutaneous_or_discoid", []string{"discoid", "subacute cutaneous"}},
	{"oral_ulcers", []string{"oral ulcer", "mouth ulcer"}},
	{"nonscarring_alopecia", []string{"alopecia"}},
	// antiphospholipid
	{"antiphospholipid_any", []string{"anti-cardiolipin", "lupus anticoagulant", "β2", "b2gp1"}},
}

const (
	lowC3Keyword = "low c3"
	lowC4Keyword = "low c4"
)

const warnUnmapped = "could not map selected_criteria to criterion ids (the suite needs normalising)"

// MapSelectedCriteria translates free-text findings from the legacy fixture
// format into criterion ids. Each string may flag zero or more criteria.
// Low C3 and low C4 reported anywhere in the list collapse into the combined
// complement criterion. A non-empty list that maps to nothing yields a warning.
func MapSelectedCriteria(selected []string) (map[string]bool, []string) {
	tokens := make([]string, len(selected))
	for i, s := range selected {
		tokens[i] = normText(s)
	}

	selections := map[string]bool{}
	for _, rule := range legacyRules {
		if anyContains(tokens, rule.keywords...) {
			selections[rule.criterion] = true
		}
	}

	lowC3 := anyContains(tokens, lowC3Keyword)
	lowC4 := anyContains(tokens, lowC4Keyword)
	switch {
	case lowC3 && lowC4:
		selections["low_c3_and_c4"] = true
	case lowC3 || lowC4:
		selections["low_c3_or_c4"] = true
	}

	warnings := []string{}
	if len(selections) == 0 && len(selected) > 0 {
		warnings = append(warnings, warnUnmapped)
	}
	return selections, warnings
}

// normText collapses whitespace runs, trims and lowercases.
func normText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func anyContains(tokens []string, keywords ...string) bool {
	for _, t := range tokens {
		for _, k := range keywords {
			if strings.Contains(t, k) {
				return true
			}
		}
	}
	return false
}
