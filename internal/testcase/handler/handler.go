package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"slecriteria/internal/testcase"
	"slecriteria/internal/testcase/service"
	dErrors "slecriteria/pkg/domain-errors"
	"slecriteria/pkg/platform/httputil"
	"slecriteria/pkg/requestcontext"
)

// Service defines the interface for regression suite operations.
type Service interface {
	Suite(ctx context.Context) (testcase.Suite, error)
	Normalized(ctx context.Context) ([]byte, error)
	Run(ctx context.Context, req service.RunRequest) (*testcase.RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]testcase.RunRecord, error)
	GetRun(ctx context.Context, id uuid.UUID) (*testcase.RunRecord, error)
}

// Handler wires the regression suite endpoints to the suite service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts test-case endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/test-cases", func(r chi.Router) {
		r.Get("/", h.HandleSuite)
		r.Get("/normalized.json", h.HandleNormalized)
		r.Post("/run", h.HandleRun)
		r.Get("/runs", h.HandleListRuns)
		r.Get("/runs/{id}", h.HandleGetRun)
	})
}

// HandleSuite handles GET /test-cases: the raw suite document.
func (h *Handler) HandleSuite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	suite, err := h.service.Suite(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load test suite", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, suite)
}

// HandleNormalized handles GET /test-cases/normalized.json.
func (h *Handler) HandleNormalized(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := h.service.Normalized(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to normalize test suite", err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// HandleRun handles POST /test-cases/run.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RunRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	run, err := h.service.Run(ctx, req.Parsed())
	if err != nil {
		h.fail(ctx, w, "test run failed", err)
		return
	}

	h.logger.InfoContext(ctx, "test run served",
		"request_id", requestID,
		"run_id", run.ID,
		"total", run.Summary.Total,
	)
	httputil.WriteJSON(w, http.StatusOK, FromRun(run))
}

// HandleListRuns handles GET /test-cases/runs?limit=N.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(ctx, limit)
	if err != nil {
		h.fail(ctx, w, "failed to list test runs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRunList(runs))
}

// HandleGetRun handles GET /test-cases/runs/{id}.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid run id"))
		return
	}

	run, err := h.service.GetRun(ctx, id)
	if err != nil {
		h.fail(ctx, w, "failed to load test run", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRun(run))
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	level := slog.LevelError
	if dErrors.Is(err, dErrors.CodeNotFound) {
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
