package scoring

import (
	"context"
	"log/slog"
	"time"

	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring/metrics"
	"slecriteria/pkg/requestcontext"
)

// Service wraps the pure engine with the trust-boundary filter, metrics and
// logging. It holds no mutable state and is safe for concurrent use.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics enables prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs a scoring service.
func NewService(opts ...Option) *Service {
	s := &Service{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score filters unknown criterion ids out of req and computes the result.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	start := time.Now()

	filtered := criteria.Filter(req.Selections)
	dropped := len(req.Selections) - len(filtered)
	s.metrics.AddUnknownSelections(dropped)

	result := ComputeScore(req.ANAPositive, filtered)

	s.metrics.ObserveScoreLatency(time.Since(start))
	s.metrics.ObserveOutcome(string(result.RiskTier), result.MeetsClassification, result.Eligible, result.TotalScore)

	s.logger.DebugContext(ctx, "score computed",
		"request_id", requestcontext.RequestID(ctx),
		"eligible", result.Eligible,
		"total_score", result.TotalScore,
		"risk_tier", result.RiskTier,
		"unknown_selections", dropped,
	)
	return &result, nil
}
