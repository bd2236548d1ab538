package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"slecriteria/internal/scoring"
	"slecriteria/internal/testcase"
	"slecriteria/internal/testcase/cache"
	"slecriteria/internal/testcase/metrics"
	"slecriteria/internal/testcase/store"
	dErrors "slecriteria/pkg/domain-errors"
	"slecriteria/pkg/requestcontext"
)

const fixturePath = "../testdata/test_cases.json"

// =============================================================================
// Service Test Suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	cache   *cache.Memory
	metrics *metrics.Metrics
	service *Service
	clock   time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.cache = cache.NewMemory(time.Minute)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.clock = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.service = s.newService(fixturePath)
}

func (s *ServiceSuite) newService(path string, opts ...Option) *Service {
	base := []Option{
		WithCache(s.cache),
		WithMetrics(s.metrics),
		WithClock(func() time.Time {
			s.clock = s.clock.Add(10 * time.Millisecond)
			return s.clock
		}),
	}
	return NewService(path, s.store, append(base, opts...)...)
}

func (s *ServiceSuite) writeSuite(content string) string {
	path := filepath.Join(s.T().TempDir(), "suite.json")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

// =============================================================================
// Suite document
// =============================================================================

func (s *ServiceSuite) TestSuite() {
	doc, err := s.service.Suite(context.Background())
	s.Require().NoError(err)
	s.Equal("1.3", doc["version"])
}

func (s *ServiceSuite) TestSuiteMissingFile() {
	svc := s.newService(filepath.Join(s.T().TempDir(), "absent.json"))
	_, err := svc.Suite(context.Background())
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSuiteUnparseable() {
	svc := s.newService(s.writeSuite("{broken"))
	_, err := svc.Suite(context.Background())
	s.True(dErrors.Is(err, dErrors.CodeInternal))
}

// =============================================================================
// Normalized suite and caching
// =============================================================================

func (s *ServiceSuite) TestNormalizedCachesByContent() {
	ctx := context.Background()
	first, err := s.service.Normalized(ctx)
	s.Require().NoError(err)

	var doc testcase.NormalizedSuite
	s.Require().NoError(json.Unmarshal(first, &doc))
	s.Equal(testcase.SchemaVersion, doc.SchemaVersion)

	second, err := s.service.Normalized(ctx)
	s.Require().NoError(err)
	s.Equal(first, second)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("miss")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("hit")))
}

func (s *ServiceSuite) TestNormalizedSeesFileEdits() {
	ctx := context.Background()
	path := s.writeSuite(`{"version": "1", "test_cases": []}`)
	svc := s.newService(path)

	out, err := svc.Normalized(ctx)
	s.Require().NoError(err)
	s.Contains(string(out), `"version": "1"`)

	s.Require().NoError(os.WriteFile(path, []byte(`{"version": "2", "test_cases": []}`), 0o600))
	out, err = svc.Normalized(ctx)
	s.Require().NoError(err)
	s.Contains(string(out), `"version": "2"`)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func (s *ServiceSuite) TestNormalizedBypassesBrokenCache() {
	svc := s.newService(fixturePath, WithCache(brokenCache{}))
	out, err := svc.Normalized(context.Background())
	s.Require().NoError(err)
	s.NotEmpty(out)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("error")))
}

func (s *ServiceSuite) TestNormalizedWithoutCache() {
	svc := NewService(fixturePath, s.store)
	out, err := svc.Normalized(context.Background())
	s.Require().NoError(err)
	s.NotEmpty(out)
}

// =============================================================================
// Runs
// =============================================================================

func (s *ServiceSuite) TestRunAllPersists() {
	ctx := context.Background()
	run, err := s.service.Run(ctx, RunRequest{Mode: ModeAll})
	s.Require().NoError(err)

	s.NotEqual(uuid.Nil, run.ID)
	s.Empty(run.CaseFilter)
	s.Equal(12, run.Summary.Total)
	s.Equal(10*time.Millisecond, run.Duration())

	stored, err := s.service.GetRun(ctx, run.ID)
	s.Require().NoError(err)
	s.Equal(run, stored)

	s.Equal(7.0, testutil.ToFloat64(s.metrics.CaseResults.WithLabelValues("PASS")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CaseResults.WithLabelValues("FAIL")))
}

func (s *ServiceSuite) TestRunStartsAtRequestTime() {
	pinned := time.Date(2026, 5, 4, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))
	ctx := requestcontext.WithTime(context.Background(), pinned)

	svc := NewService(fixturePath, s.store)
	run, err := svc.Run(ctx, RunRequest{Mode: ModeOne, ID: "TC-001"})
	s.Require().NoError(err)
	s.True(run.StartedAt.Equal(pinned))
	s.Equal(time.UTC, run.StartedAt.Location())
	s.False(run.FinishedAt.Before(run.StartedAt))
}

func (s *ServiceSuite) TestRunOne() {
	run, err := s.service.Run(context.Background(), RunRequest{Mode: ModeOne, ID: "TC-006"})
	s.Require().NoError(err)
	s.Equal("TC-006", run.CaseFilter)
	s.Equal(testcase.Summary{Fail: 1, Total: 1}, run.Summary)
}

func (s *ServiceSuite) TestRunFilterNeedsModeOne() {
	tests := []RunRequest{
		{Mode: ModeAll, ID: "TC-006"},
		{Mode: ModeOne},
		{Mode: "", ID: "TC-006"},
		{Mode: "everything"},
	}
	for _, req := range tests {
		run, err := s.service.Run(context.Background(), req)
		s.Require().NoError(err)
		s.Equal(12, run.Summary.Total, "%+v", req)
	}
}

func (s *ServiceSuite) TestRunWithCustomRunner() {
	runner := testcase.NewRunner(testcase.WithScoreFunc(func(bool, map[string]bool) scoring.ScoreResult {
		panic("engine offline")
	}))
	svc := s.newService(fixturePath, WithRunner(runner))

	run, err := svc.Run(context.Background(), RunRequest{Mode: ModeAll})
	s.Require().NoError(err)
	s.Equal(testcase.Summary{Skip: 4, Error: 8, Total: 12}, run.Summary)
	s.Equal(8.0, testutil.ToFloat64(s.metrics.CaseResults.WithLabelValues("ERROR")))
}

func (s *ServiceSuite) TestRunMissingFile() {
	svc := s.newService(filepath.Join(s.T().TempDir(), "absent.json"))
	_, err := svc.Run(context.Background(), RunRequest{Mode: ModeAll})
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestListRuns() {
	ctx := context.Background()
	for range 3 {
		_, err := s.service.Run(ctx, RunRequest{Mode: ModeOne, ID: "TC-001"})
		s.Require().NoError(err)
	}

	runs, err := s.service.ListRuns(ctx, 2)
	s.Require().NoError(err)
	s.Len(runs, 2)
	s.True(runs[0].StartedAt.After(runs[1].StartedAt))

	runs, err = s.service.ListRuns(ctx, 0)
	s.Require().NoError(err)
	s.Len(runs, 3)
}

func (s *ServiceSuite) TestGetRunMissing() {
	_, err := s.service.GetRun(context.Background(), uuid.New())
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
