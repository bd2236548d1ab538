package testcase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"slecriteria/internal/scoring"
)

// =============================================================================
// Runner Test Suite
// =============================================================================

type RunnerSuite struct {
	suite.Suite
	fixture Suite
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}

func (s *RunnerSuite) SetupSuite() {
	raw, _, err := Load("testdata/test_cases.json")
	s.Require().NoError(err)
	s.fixture = raw
}

func (s *RunnerSuite) run(opts RunOptions) Report {
	report, err := RunSuite(context.Background(), s.fixture, opts)
	s.Require().NoError(err)
	return report
}

func (s *RunnerSuite) result(report Report, id string) RunResult {
	for _, r := range report.Results {
		if r.ID == id {
			return r
		}
	}
	s.FailNow("no result for " + id)
	return RunResult{}
}

// =============================================================================
// Run all
// =============================================================================

func (s *RunnerSuite) TestRunAllSummary() {
	report := s.run(RunOptions{})
	s.Equal(Summary{Pass: 7, Fail: 1, Skip: 4, Error: 0, Total: 12}, report.Summary)
	s.True(report.Summary.Failed())

	ids := make([]string, len(report.Results))
	for i, r := range report.Results {
		ids[i] = r.ID
	}
	s.Equal([]string{"TC-001", "TC-002", "TC-003", "TC-004", "TC-005", "TC-006", "TC-007",
		"TC-008", "TC-009", "TC-010", "TC-011", "TC-012"}, ids)
}

func (s *RunnerSuite) TestOrderStableUnderParallelism() {
	serial := s.run(RunOptions{Parallelism: 1})
	parallel := s.run(RunOptions{Parallelism: 8})
	s.Equal(serial, parallel)
}

func (s *RunnerSuite) TestPassingLegacyCase() {
	r := s.result(s.run(RunOptions{}), "TC-002")
	s.Equal(StatusPass, r.Status)
	s.Empty(r.Diffs)
	s.Require().NotNil(r.Actual)
	s.Equal(10, r.Actual.TotalScore)
	s.Equal("renal", *r.Actual.DomainID)
	s.Equal(10, *r.Actual.DomainScore)
}

func (s *RunnerSuite) TestFailingCaseDiffs() {
	r := s.result(s.run(RunOptions{}), "TC-006")
	s.Equal(StatusFail, r.Status)
	s.Equal([]string{
		"total_score: expected 12 != actual 7",
		"meets_classification: expected true != actual false",
	}, r.Diffs)
}

func (s *RunnerSuite) TestSkippedCases() {
	report := s.run(RunOptions{})
	for _, id := range []string{"TC-008", "TC-009"} {
		r := s.result(report, id)
		s.Equal(StatusSkip, r.Status, id)
		s.Equal(skipReasonManual, r.Reason)
		s.Nil(r.Actual)
		s.Empty(r.Diffs)
	}
	s.Equal([]string{warnInvalidInput}, s.result(report, "TC-011").Diffs)
}

func (s *RunnerSuite) TestWarningsDoNotFailCase() {
	r := s.result(s.run(RunOptions{}), "TC-010")
	s.Equal(StatusPass, r.Status)
	s.Equal([]string{warnUnmapped}, r.Diffs)
	s.Nil(r.Expected)
}

// =============================================================================
// Run one
// =============================================================================

func (s *RunnerSuite) TestRunOne() {
	report := s.run(RunOptions{CaseID: "TC-004"})
	s.Equal(Summary{Pass: 1, Total: 1}, report.Summary)
	s.Equal("TC-004", report.Results[0].ID)
	s.Equal(string(scoring.TierHighRisk), report.Results[0].Actual.RiskTier)
}

func (s *RunnerSuite) TestRunOneUnknownID() {
	report := s.run(RunOptions{CaseID: "TC-999"})
	s.Equal(Summary{}, report.Summary)
	s.NotNil(report.Results)
	s.Empty(report.Results)
}

// =============================================================================
// Failure containment
// =============================================================================

func (s *RunnerSuite) TestPanicBecomesError() {
	r := NewRunner(WithScoreFunc(func(bool, map[string]bool) scoring.ScoreResult {
		panic("boom")
	}))
	report, err := r.RunSuite(context.Background(), s.fixture, RunOptions{})
	s.Require().NoError(err)
	s.Equal(8, report.Summary.Error)
	s.Equal(4, report.Summary.Skip)

	res := s.result(report, "TC-001")
	s.Equal(StatusError, res.Status)
	s.Equal("string: boom", res.Reason)
	s.Nil(res.NormalizedInput)
	s.Nil(res.Actual)
	s.NotNil(res.Diffs)
	s.Empty(res.Diffs)
}

func (s *RunnerSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunSuite(ctx, s.fixture, RunOptions{})
	s.ErrorIs(err, context.Canceled)
}

func TestRunCaseExpectedAbsentPasses(t *testing.T) {
	r := RunCase(Case{"id": "x", "input": map[string]any{"ana_positive": true, "selections": []any{"seizure"}}})
	assert.Equal(t, StatusPass, r.Status)
	assert.Nil(t, r.Expected)
	assert.Equal(t, 5, r.Actual.TotalScore)
	assert.Nil(t, r.Actual.DomainID)
}

func TestRunCaseBooleanScoreIsNotAnAssertion(t *testing.T) {
	r := RunCase(Case{
		"id":       "bool",
		"input":    map[string]any{"ana_positive": true, "selections": []any{"seizure"}},
		"expected": map[string]any{"total_score": true},
	})
	assert.Equal(t, StatusPass, r.Status)
	assert.Empty(t, r.Diffs)
	require.NotNil(t, r.Expected)
	assert.Nil(t, r.Expected.TotalScore)
	assert.Equal(t, 5, r.Actual.TotalScore)
}

func TestRunCaseDomainMissingFromIneligibleResult(t *testing.T) {
	domain := "renal"
	score := 10
	r := RunCase(Case{
		"id":       "neg",
		"input":    map[string]any{"ana_positive": false, "selections": []any{"renal_biopsy_class_iii_or_iv"}},
		"expected": map[string]any{"domain_id": domain, "domain_score": score},
	})
	assert.Equal(t, StatusFail, r.Status)
	assert.Equal(t, []string{"renal.domain_score: expected 10 != actual null"}, r.Diffs)
	assert.Equal(t, &domain, r.Actual.DomainID)
	assert.Nil(t, r.Actual.DomainScore)
}

func TestRunSuiteHonorsParallelismLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	r := NewRunner(WithScoreFunc(func(ana bool, sel map[string]bool) scoring.ScoreResult {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return scoring.ComputeScore(ana, sel)
	}))

	cases := make([]any, 20)
	for i := range cases {
		cases[i] = map[string]any{"id": fmt.Sprintf("L-%02d", i), "input": map[string]any{"ana_positive": true, "selections": []any{}}}
	}
	doc := Suite{"test_cases": []any{map[string]any{"category": "load", "cases": cases}}}

	report, err := r.RunSuite(context.Background(), doc, RunOptions{Parallelism: 3})
	require.NoError(t, err)

	assert.Equal(t, 20, report.Summary.Pass)
	assert.Equal(t, "L-00", report.Results[0].ID)
	assert.Equal(t, "L-19", report.Results[19].ID)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
