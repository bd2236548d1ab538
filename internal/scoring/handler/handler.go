package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring"
	"slecriteria/pkg/platform/httputil"
	"slecriteria/pkg/requestcontext"
)

// Service defines the interface for scoring operations.
type Service interface {
	Score(ctx context.Context, req scoring.ScoreRequest) (*scoring.ScoreResult, error)
}

// Handler wires scoring endpoints to the scoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a scoring handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/score", h.HandleScore)
	r.Get("/api/criteria", h.HandleCriteria)
}

// HandleScore handles POST /api/score requests.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ScoreRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Score(ctx, req.Parsed())
	if err != nil {
		h.logger.ErrorContext(ctx, "scoring failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "score evaluated",
		"request_id", requestID,
		"eligible", result.Eligible,
		"risk_tier", result.RiskTier,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleCriteria handles GET /api/criteria: the catalog-derived input schema.
func (h *Handler) HandleCriteria(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, criteria.Schema())
}
