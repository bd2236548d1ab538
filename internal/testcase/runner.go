package testcase

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"slecriteria/internal/scoring"
	"slecriteria/pkg/jsonvalue"
)

const skipReasonManual = "case is manual/action only (not executable by the scoring engine)"

// ScoreFunc produces a scoring result for normalised input.
type ScoreFunc func(anaPositive bool, selections map[string]bool) scoring.ScoreResult

// RunOptions narrows and tunes a suite run.
type RunOptions struct {
	// CaseID restricts the run to cases whose id matches. Empty runs everything.
	CaseID string
	// Parallelism caps concurrently executing cases. Zero means GOMAXPROCS.
	Parallelism int
}

// Runner executes cases against a scoring function.
type Runner struct {
	score  ScoreFunc
	tracer trace.Tracer
}

type RunnerOption func(*Runner)

// WithScoreFunc replaces the scoring engine, mainly for tests.
func WithScoreFunc(fn ScoreFunc) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.score = fn
		}
	}
}

func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		score:  scoring.ComputeScore,
		tracer: otel.Tracer("slecriteria/internal/testcase"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRunner = NewRunner()

// RunCase executes a single case with the real scoring engine.
func RunCase(tc Case) RunResult {
	return defaultRunner.RunCase(tc)
}

// RunSuite executes a suite with the real scoring engine.
func RunSuite(ctx context.Context, suite Suite, opts RunOptions) (Report, error) {
	return defaultRunner.RunSuite(ctx, suite, opts)
}

// RunCase normalises and executes one case. It never panics: anything that
// goes wrong inside normalisation or scoring is reported as StatusError.
func (r *Runner) RunCase(tc Case) (res RunResult) {
	id := caseText(tc["id"])
	desc := caseText(tc["description"])

	defer func() {
		if rec := recover(); rec != nil {
			res = RunResult{
				ID:          id,
				Description: desc,
				Status:      StatusError,
				Reason:      fmt.Sprintf("%T: %v", rec, rec),
				Diffs:       []string{},
			}
		}
	}()

	input, expected, warnings, kind := NormalizeCase(tc)
	if kind != KindAuto || input == nil {
		return RunResult{
			ID:              id,
			Description:     desc,
			Status:          StatusSkip,
			Reason:          skipReasonManual,
			NormalizedInput: input,
			Expected:        expected,
			Diffs:           warnings,
		}
	}

	result := r.score(input.ANAPositive, input.Selections)
	actual := &Actual{
		TotalScore:          result.TotalScore,
		MeetsClassification: result.MeetsClassification,
		RiskTier:            string(result.RiskTier),
	}
	if expected != nil && expected.DomainID != nil && *expected.DomainID != "" {
		actual.DomainID = expected.DomainID
		if ds, ok := result.Domain(*expected.DomainID); ok {
			actual.DomainScore = ptr(ds.AwardedPoints)
		}
	}

	diffs := append([]string{}, warnings...)
	diffs = append(diffs, compare(expected, actual)...)

	status := StatusPass
	if len(diffs) > len(warnings) {
		status = StatusFail
	}
	return RunResult{
		ID:              id,
		Description:     desc,
		Status:          status,
		NormalizedInput: input,
		Expected:        expected,
		Actual:          actual,
		Diffs:           diffs,
	}
}

// compare lists every asserted field that disagrees with the actual outcome.
func compare(exp *NormalizedExpected, act *Actual) []string {
	if exp == nil {
		return nil
	}
	var diffs []string
	if exp.TotalScore != nil && *exp.TotalScore != act.TotalScore {
		diffs = append(diffs, fmt.Sprintf("total_score: expected %d != actual %d", *exp.TotalScore, act.TotalScore))
	}
	if exp.MeetsClassification != nil && *exp.MeetsClassification != act.MeetsClassification {
		diffs = append(diffs, fmt.Sprintf("meets_classification: expected %t != actual %t", *exp.MeetsClassification, act.MeetsClassification))
	}
	if exp.RiskTier != nil && *exp.RiskTier != act.RiskTier {
		diffs = append(diffs, fmt.Sprintf("risk_tier: expected %s != actual %s", *exp.RiskTier, act.RiskTier))
	}
	if exp.DomainScore != nil && exp.DomainID != nil && *exp.DomainID != "" {
		if act.DomainScore == nil || *act.DomainScore != *exp.DomainScore {
			diffs = append(diffs, fmt.Sprintf("%s.domain_score: expected %d != actual %s",
				*exp.DomainID, *exp.DomainScore, optionalInt(act.DomainScore)))
		}
	}
	return diffs
}

// RunSuite executes every case of the suite, honoring opts.CaseID, and
// returns results in document order. Cases run concurrently up to
// opts.Parallelism. The only error is ctx cancellation.
func (r *Runner) RunSuite(ctx context.Context, suite Suite, opts RunOptions) (Report, error) {
	ctx, span := r.tracer.Start(ctx, "testcase.RunSuite", trace.WithAttributes(
		attribute.String("case_filter", opts.CaseID),
	))
	defer span.End()

	var cases []Case
	eachCase(suite, func(tc Case) {
		if opts.CaseID != "" && jsonvalue.Text(tc["id"]) != opts.CaseID {
			return
		}
		cases = append(cases, tc)
	})

	limit := opts.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]RunResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, tc := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.RunCase(tc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	report := Report{Results: results}
	for _, res := range results {
		report.Summary.Add(res.Status)
	}
	span.SetAttributes(
		attribute.Int("cases.total", report.Summary.Total),
		attribute.Int("cases.pass", report.Summary.Pass),
		attribute.Int("cases.fail", report.Summary.Fail),
		attribute.Int("cases.skip", report.Summary.Skip),
		attribute.Int("cases.error", report.Summary.Error),
	)
	return report, nil
}

// caseText renders id and description; missing or falsy values become "".
func caseText(v any) string {
	if !jsonvalue.Truthy(v) {
		return ""
	}
	return jsonvalue.Text(v)
}

func optionalInt(p *int) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprint(*p)
}
