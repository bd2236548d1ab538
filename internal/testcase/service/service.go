package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"slecriteria/internal/testcase"
	"slecriteria/internal/testcase/metrics"
	dErrors "slecriteria/pkg/domain-errors"
	"slecriteria/pkg/platform/sentinel"
	"slecriteria/pkg/requestcontext"
)

// Store persists run records.
type Store interface {
	Save(ctx context.Context, run testcase.RunRecord) error
	Get(ctx context.Context, id uuid.UUID) (testcase.RunRecord, error)
	List(ctx context.Context, limit int) ([]testcase.RunRecord, error)
}

// Cache holds rendered normalized suites keyed by suite content hash.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	ModeAll = "all"
	ModeOne = "one"
)

// RunRequest selects which cases to run. Mode "one" with an empty ID runs
// everything.
type RunRequest struct {
	Mode string
	ID   string
}

// caseFilter returns the id to restrict to, or "" for a full run.
func (r RunRequest) caseFilter() string {
	if r.Mode == ModeOne {
		return r.ID
	}
	return ""
}

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Service serves the regression suite stored at a file path. The file is
// re-read on every call so edits show up without a restart.
type Service struct {
	path        string
	store       Store
	cache       Cache
	runner      *testcase.Runner
	parallelism int
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithRunner(r *testcase.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

func WithParallelism(n int) Option {
	return func(s *Service) {
		s.parallelism = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides run timestamps. Without it a run starts at the
// request-scoped time and finishes at the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(path string, store Store, opts ...Option) *Service {
	s := &Service{
		path:   path,
		store:  store,
		runner: testcase.NewRunner(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Suite returns the raw suite document.
func (s *Service) Suite(ctx context.Context) (testcase.Suite, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return s.parse(ctx, data)
}

// Normalized returns the normalized suite rendered as indented JSON.
func (s *Service) Normalized(ctx context.Context) ([]byte, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if cached, ok := s.cacheGet(ctx, key); ok {
		return cached, nil
	}

	suite, err := s.parse(ctx, data)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(testcase.NormalizeSuite(suite), "", "  ")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render normalized suite")
	}
	s.cacheSet(ctx, key, out)
	return out, nil
}

// Run executes the suite and persists the report.
func (s *Service) Run(ctx context.Context, req RunRequest) (*testcase.RunRecord, error) {
	suite, err := s.Suite(ctx)
	if err != nil {
		return nil, err
	}

	run := testcase.RunRecord{
		ID:         uuid.New(),
		StartedAt:  s.clock(ctx, requestcontext.Now).UTC(),
		CaseFilter: req.caseFilter(),
	}
	report, err := s.runner.RunSuite(ctx, suite, testcase.RunOptions{
		CaseID:      run.CaseFilter,
		Parallelism: s.parallelism,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "test run cancelled")
	}
	run.FinishedAt = s.clock(ctx, func(context.Context) time.Time { return time.Now() }).UTC()
	run.Report = report

	sum := report.Summary
	s.metrics.ObserveRun(sum.Pass, sum.Fail, sum.Skip, sum.Error, run.Duration())

	if err := s.store.Save(ctx, run); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist test run",
			"request_id", requestcontext.RequestID(ctx),
			"run_id", run.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist test run")
	}

	s.logger.InfoContext(ctx, "test run completed",
		"request_id", requestcontext.RequestID(ctx),
		"run_id", run.ID,
		"case_filter", run.CaseFilter,
		"pass", sum.Pass,
		"fail", sum.Fail,
		"skip", sum.Skip,
		"error", sum.Error,
		"duration", run.Duration(),
	)
	return &run, nil
}

// ListRuns returns recent runs, newest first. limit is clamped to a sane range.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]testcase.RunRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	runs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list test runs")
	}
	return runs, nil
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*testcase.RunRecord, error) {
	run, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "test run not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load test run")
	}
	return &run, nil
}

func (s *Service) read(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("test case file not found: %s", s.path))
		}
		s.logger.ErrorContext(ctx, "failed to read test case file",
			"request_id", requestcontext.RequestID(ctx),
			"path", s.path,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read test case file")
	}
	return data, nil
}

func (s *Service) parse(ctx context.Context, data []byte) (testcase.Suite, error) {
	suite, err := testcase.Parse(data, testcase.FormatFor(s.path))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to parse test case file",
			"request_id", requestcontext.RequestID(ctx),
			"path", s.path,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to parse test case file")
	}
	return suite, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	value, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncCacheLookup("error")
		s.logger.WarnContext(ctx, "normalized suite cache unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, false
	case !ok:
		s.metrics.IncCacheLookup("miss")
		return nil, false
	default:
		s.metrics.IncCacheLookup("hit")
		return value, true
	}
}

func (s *Service) cacheSet(ctx context.Context, key string, value []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "failed to cache normalized suite",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) clock(ctx context.Context, fallback func(context.Context) time.Time) time.Time {
	if s.now != nil {
		return s.now()
	}
	return fallback(ctx)
}
