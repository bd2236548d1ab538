package handler

import (
	"time"

	"slecriteria/internal/testcase"
)

// RunResponse is a full run: summary plus every case result.
type RunResponse struct {
	RunID      string               `json:"run_id"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	CaseFilter string               `json:"case_filter,omitempty"`
	Summary    testcase.Summary     `json:"summary"`
	Results    []testcase.RunResult `json:"results"`
}

// RunSummaryResponse is a run without its per-case results.
type RunSummaryResponse struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	DurationMS int64            `json:"duration_ms"`
	CaseFilter string           `json:"case_filter,omitempty"`
	Summary    testcase.Summary `json:"summary"`
}

type RunListResponse struct {
	Runs []RunSummaryResponse `json:"runs"`
}

func FromRun(run *testcase.RunRecord) *RunResponse {
	results := run.Results
	if results == nil {
		results = []testcase.RunResult{}
	}
	return &RunResponse{
		RunID:      run.ID.String(),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		CaseFilter: run.CaseFilter,
		Summary:    run.Summary,
		Results:    results,
	}
}

func FromRunList(runs []testcase.RunRecord) *RunListResponse {
	out := make([]RunSummaryResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, RunSummaryResponse{
			RunID:      run.ID.String(),
			StartedAt:  run.StartedAt,
			DurationMS: run.Duration().Milliseconds(),
			CaseFilter: run.CaseFilter,
			Summary:    run.Summary,
		})
	}
	return &RunListResponse{Runs: out}
}
