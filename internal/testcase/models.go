// Package testcase replays the JSON regression suite against the scoring
// engine. It normalises both the current (criterion id) case format and the
// older free-text format, executes runnable cases and diffs the outcome
// against whatever the case asserts.
package testcase

import (
	"time"

	"github.com/google/uuid"
)

// Case is one raw test case object exactly as decoded from the suite document.
type Case map[string]any

// Suite is a raw suite document: {test_suite, version, test_cases: [{category, cases: [...]}]}.
type Suite map[string]any

// SchemaVersion tags normalised suite documents.
const SchemaVersion = "internal_ids_v2"

// Kind says whether a case can be executed by the engine.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindManual Kind = "manual"
)

// Status is the per-case run outcome.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusSkip  Status = "SKIP"
	StatusError Status = "ERROR"
)

// NormalizedInput is a runnable engine input.
type NormalizedInput struct {
	ANAPositive bool            `json:"ana_positive"`
	Selections  map[string]bool `json:"selections"`
}

// NormalizedExpected holds the assertions of a case. A nil field is not checked.
type NormalizedExpected struct {
	TotalScore          *int    `json:"total_score,omitempty"`
	MeetsClassification *bool   `json:"meets_classification,omitempty"`
	RiskTier            *string `json:"risk_tier,omitempty"`
	DomainID            *string `json:"domain_id,omitempty"`
	DomainScore         *int    `json:"domain_score,omitempty"`
}

// Actual is what the engine produced for a case, restricted to asserted fields.
type Actual struct {
	TotalScore          int     `json:"total_score"`
	MeetsClassification bool    `json:"meets_classification"`
	RiskTier            string  `json:"risk_tier"`
	DomainID            *string `json:"domain_id,omitempty"`
	DomainScore         *int    `json:"domain_score,omitempty"`
}

// RunResult is the outcome of running one case.
type RunResult struct {
	ID              string              `json:"id"`
	Description     string              `json:"description"`
	Status          Status              `json:"status"`
	Reason          string              `json:"reason,omitempty"`
	NormalizedInput *NormalizedInput    `json:"normalized_input"`
	Expected        *NormalizedExpected `json:"expected"`
	Actual          *Actual             `json:"actual"`
	Diffs           []string            `json:"diffs"`
}

// Summary counts results per status.
type Summary struct {
	Pass  int `json:"PASS"`
	Fail  int `json:"FAIL"`
	Skip  int `json:"SKIP"`
	Error int `json:"ERROR"`
	Total int `json:"TOTAL"`
}

// Add counts one result.
func (s *Summary) Add(status Status) {
	switch status {
	case StatusPass:
		s.Pass++
	case StatusFail:
		s.Fail++
	case StatusSkip:
		s.Skip++
	case StatusError:
		s.Error++
	}
	s.Total++
}

// Failed reports whether any case failed or errored.
func (s Summary) Failed() bool {
	return s.Fail > 0 || s.Error > 0
}

// Report is the result of a suite run.
type Report struct {
	Summary Summary     `json:"summary"`
	Results []RunResult `json:"results"`
}

// RunRecord is a persisted suite run. Only regression reports are stored,
// never patient scoring requests.
type RunRecord struct {
	ID         uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// CaseFilter is the id a run-one request targeted; empty for run-all.
	CaseFilter string `json:"case_filter,omitempty"`
	Report
}

// Duration is the wall time of the run.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NormalizedSuite is the canonical, versioned re-expression of a suite.
type NormalizedSuite struct {
	SchemaVersion string            `json:"schema_version"`
	TestSuite     any               `json:"test_suite"`
	Version       any               `json:"version"`
	TestCases     []NormalizedGroup `json:"test_cases"`
}

type NormalizedGroup struct {
	Category any              `json:"category"`
	Cases    []NormalizedCase `json:"cases"`
}

// NormalizedCase is a case in canonical form. Narrative fields pass through.
type NormalizedCase struct {
	ID               any                 `json:"id"`
	Description      any                 `json:"description"`
	Kind             Kind                `json:"kind"`
	MedicalRationale any                 `json:"medical_rationale,omitempty"`
	TechnicalLogic   any                 `json:"technical_logic,omitempty"`
	Action           any                 `json:"action,omitempty"`
	Warnings         []string            `json:"warnings,omitempty"`
	Input            *CanonicalInput     `json:"input,omitempty"`
	Expected         *NormalizedExpected `json:"expected,omitempty"`
}

// CanonicalInput is the stored form of an input: selected ids, sorted.
type CanonicalInput struct {
	ANAPositive bool     `json:"ana_positive"`
	Selections  []string `json:"selections"`
}
