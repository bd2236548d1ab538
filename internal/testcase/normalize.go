package testcase

import (
	"sort"
	"strings"

	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring"
	"slecriteria/pkg/jsonvalue"
)

const (
	warnInvalidV2          = "invalid v2 input (ana_positive must be a bool, selections a list)"
	warnInvalidInput       = "input is not an object"
	warnMissingANAStatus   = "missing input.ana_status (bool)"
	warnInvalidSelected    = "input.selected_criteria must be a list"
	warnDomainNotInferable = "expected_output.domain_score is set but no domain_id could be inferred"
)

// NormalizeCase classifies a raw case and converts it to engine input plus
// assertions. It never fails: malformed cases come back as KindManual with a
// warning describing the problem.
//
// Recognised shapes, checked in order:
//   - {"kind": "manual"}
//   - v2: {"input": {"ana_positive": bool, "selections": [id...]}, "expected": {...}}
//   - narrative: {"action": ...} without "input"
//   - legacy: {"input": {"ana_status": bool, "selected_criteria": [text...]}, "expected_output": {...}}
func NormalizeCase(tc Case) (*NormalizedInput, *NormalizedExpected, []string, Kind) {
	warnings := []string{}

	if kind, ok := jsonvalue.String(tc["kind"]); ok && kind == string(KindManual) {
		return nil, nil, warnings, KindManual
	}

	if inp, ok := jsonvalue.Object(tc["input"]); ok && hasKey(inp, "ana_positive") && hasKey(inp, "selections") {
		return normalizeV2(tc, inp)
	}

	if hasKey(tc, "action") && !hasKey(tc, "input") {
		return nil, nil, warnings, KindManual
	}

	inp := map[string]any{}
	if jsonvalue.Truthy(tc["input"]) {
		obj, ok := jsonvalue.Object(tc["input"])
		if !ok {
			return nil, nil, []string{warnInvalidInput}, KindManual
		}
		inp = obj
	}

	anaStatus, ok := jsonvalue.Bool(inp["ana_status"])
	if !ok {
		return nil, nil, []string{warnMissingANAStatus}, KindManual
	}

	var selected []any
	if jsonvalue.Truthy(inp["selected_criteria"]) {
		arr, ok := jsonvalue.Array(inp["selected_criteria"])
		if !ok {
			return nil, nil, []string{warnInvalidSelected}, KindManual
		}
		selected = arr
	}

	texts := make([]string, len(selected))
	for i, v := range selected {
		texts[i] = jsonvalue.Text(v)
	}
	selections, mapWarnings := MapSelectedCriteria(texts)
	warnings = append(warnings, mapWarnings...)

	input := &NormalizedInput{ANAPositive: anaStatus, Selections: selections}
	expected, expWarnings := mapLegacyExpected(tc, selections)
	warnings = append(warnings, expWarnings...)

	return input, expected, warnings, KindAuto
}

func normalizeV2(tc Case, inp map[string]any) (*NormalizedInput, *NormalizedExpected, []string, Kind) {
	anaPositive, okANA := jsonvalue.Bool(inp["ana_positive"])
	list, okSel := jsonvalue.Array(inp["selections"])
	if !okANA || !okSel {
		return nil, nil, []string{warnInvalidV2}, KindManual
	}

	selections := map[string]bool{}
	for _, v := range list {
		id := jsonvalue.Text(v)
		if criteria.IsKnown(id) {
			selections[id] = true
		}
	}
	input := &NormalizedInput{ANAPositive: anaPositive, Selections: selections}

	var expected *NormalizedExpected
	if exp, ok := jsonvalue.Object(tc["expected"]); ok && len(exp) > 0 {
		expected = &NormalizedExpected{
			TotalScore:          intField(exp, "total_score"),
			MeetsClassification: boolField(exp, "meets_classification"),
			RiskTier:            stringField(exp, "risk_tier"),
			DomainID:            stringField(exp, "domain_id"),
			DomainScore:         intField(exp, "domain_score"),
		}
	}
	return input, expected, []string{}, KindAuto
}

// mapLegacyExpected converts expected_output assertions. Free-text
// classification and risk labels map onto canonical values; a domain score
// needs its domain inferred from what was selected.
func mapLegacyExpected(tc Case, selections map[string]bool) (*NormalizedExpected, []string) {
	if !jsonvalue.Truthy(tc["expected_output"]) {
		return nil, nil
	}
	exp, ok := jsonvalue.Object(tc["expected_output"])
	if !ok {
		return nil, nil
	}

	var warnings []string
	expected := &NormalizedExpected{
		TotalScore:          intField(exp, "total_score"),
		MeetsClassification: legacyClassification(exp["classification"]),
		RiskTier:            legacyRiskTier(exp["risk_level"]),
		DomainScore:         intField(exp, "domain_score"),
	}

	if exp["domain_score"] != nil {
		expected.DomainID = inferDomain(selections)
		if expected.DomainID == nil {
			warnings = append(warnings, warnDomainNotInferable)
		}
	}
	return expected, warnings
}

func legacyClassification(v any) *bool {
	s, ok := jsonvalue.String(v)
	if !ok {
		return nil
	}
	c := normText(s)
	switch {
	case strings.Contains(c, "not classified"):
		return ptr(false)
	case strings.Contains(c, "classified"):
		return ptr(true)
	}
	return nil
}

func legacyRiskTier(v any) *string {
	s, ok := jsonvalue.String(v)
	if !ok {
		return nil
	}
	r := normText(s)
	switch {
	case r == "low":
		return ptr(string(scoring.TierInsufficient))
	case strings.Contains(r, "moderate"), strings.Contains(r, "standard"):
		return ptr(string(scoring.TierStandard))
	case strings.Contains(r, "high"), strings.Contains(r, "ominous"):
		return ptr(string(scoring.TierHighRisk))
	}
	return nil
}

// inferDomain guesses which domain a legacy domain_score refers to. Renal wins
// over complement, then antiphospholipid, then neuropsychiatric.
func inferDomain(selections map[string]bool) *string {
	has := func(pred func(id string) bool) bool {
		for id := range selections {
			if pred(id) {
				return true
			}
		}
		return false
	}

	switch {
	case has(func(id string) bool { return strings.HasPrefix(id, "renal_") || id == "proteinuria" }):
		return ptr("renal")
	case has(func(id string) bool { return strings.HasPrefix(id, "low_c3") }):
		return ptr("complement")
	case selections["antiphospholipid_any"]:
		return ptr("antiphospholipid")
	case selections["delirium"] || selections["psychosis"] || selections["seizure"]:
		return ptr("neuropsychiatric")
	}
	return nil
}

// NormalizeSuite re-expresses every case of a suite in canonical v2 form
// without executing anything. Non-object groups and cases are skipped.
func NormalizeSuite(suite Suite) NormalizedSuite {
	out := NormalizedSuite{
		SchemaVersion: SchemaVersion,
		TestSuite:     suite["test_suite"],
		Version:       suite["version"],
		TestCases:     []NormalizedGroup{},
	}

	groups, _ := jsonvalue.Array(suite["test_cases"])
	for _, g := range groups {
		group, ok := jsonvalue.Object(g)
		if !ok {
			continue
		}
		ng := NormalizedGroup{Category: group["category"], Cases: []NormalizedCase{}}
		cases, _ := jsonvalue.Array(group["cases"])
		for _, c := range cases {
			tc, ok := jsonvalue.Object(c)
			if !ok {
				continue
			}
			ng.Cases = append(ng.Cases, normalizeForStorage(Case(tc)))
		}
		out.TestCases = append(out.TestCases, ng)
	}
	return out
}

func normalizeForStorage(tc Case) NormalizedCase {
	input, expected, warnings, kind := NormalizeCase(tc)
	nc := NormalizedCase{
		ID:               tc["id"],
		Description:      tc["description"],
		Kind:             kind,
		MedicalRationale: tc["medical_rationale"],
		TechnicalLogic:   tc["technical_logic"],
		Action:           tc["action"],
		Expected:         expected,
	}
	if len(warnings) > 0 {
		nc.Warnings = warnings
	}
	if input != nil {
		nc.Input = &CanonicalInput{
			ANAPositive: input.ANAPositive,
			Selections:  selectedIDs(input.Selections),
		}
	}
	return nc
}

func selectedIDs(selections map[string]bool) []string {
	ids := make([]string, 0, len(selections))
	for id, on := range selections {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// eachCase walks the groups of a suite in order. Malformed groups and cases are skipped.
func eachCase(suite Suite, fn func(Case)) {
	groups, _ := jsonvalue.Array(suite["test_cases"])
	for _, g := range groups {
		group, ok := jsonvalue.Object(g)
		if !ok {
			continue
		}
		cases, _ := jsonvalue.Array(group["cases"])
		for _, c := range cases {
			if tc, ok := jsonvalue.Object(c); ok {
				fn(Case(tc))
			}
		}
	}
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func intField(m map[string]any, key string) *int {
	if n, ok := jsonvalue.Int(m[key]); ok {
		return &n
	}
	return nil
}

func boolField(m map[string]any, key string) *bool {
	if b, ok := jsonvalue.Bool(m[key]); ok {
		return &b
	}
	return nil
}

func stringField(m map[string]any, key string) *string {
	if s, ok := jsonvalue.String(m[key]); ok {
		return &s
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
