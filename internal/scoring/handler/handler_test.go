package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring"
	"slecriteria/pkg/testutil"
)

type ScoreHandlerSuite struct {
	suite.Suite
	router http.Handler
}

func TestScoreHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScoreHandlerSuite))
}

func (s *ScoreHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(scoring.NewService(scoring.WithLogger(logger)), logger)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *ScoreHandlerSuite) post(body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/api/score", body)
	return testutil.DoRequest(s.router, req)
}

func (s *ScoreHandlerSuite) TestScoreOK() {
	rec := s.post(map[string]any{
		"ana_positive": true,
		"selections":   map[string]bool{"renal_biopsy_class_iii_or_iv": true},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	resp := testutil.UnmarshalResponse[ScoreResponse](s.T(), rec)
	s.Equal(10, resp.TotalScore)
	s.True(resp.MeetsClassification)
	s.True(resp.Eligible)
	s.Nil(resp.IneligibleReason)
	s.Equal(string(scoring.TierStandard), resp.RiskTier)
	s.Len(resp.Domains, 10)
	s.Len(resp.Radar, 10)

	var renal DomainResponse
	for _, d := range resp.Domains {
		if d.DomainID == "renal" {
			renal = d
		}
	}
	s.Require().NotNil(renal.AwardedCriterion)
	s.Equal("renal_biopsy_class_iii_or_iv", renal.AwardedCriterion.ID)
	s.Require().NotNil(renal.Note)
	s.Len(renal.SelectedCriteria, 1)
}

func (s *ScoreHandlerSuite) TestEmptyDomainSerialisesNullCriterion() {
	rec := s.post(map[string]any{"ana_positive": true, "selections": map[string]bool{}})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"awarded_criterion":null`)
	s.Contains(rec.Body.String(), `"selected_criteria":[]`)
}

func (s *ScoreHandlerSuite) TestUnknownSelectionKeysFiltered() {
	rec := s.post(map[string]any{
		"ana_positive": true,
		"selections":   map[string]bool{"renal_biopsy_class_iii_or_iv": true, "__hacker__": true},
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[ScoreResponse](s.T(), rec)
	s.Equal(10, resp.TotalScore)
}

func (s *ScoreHandlerSuite) TestANANegative() {
	rec := s.post(map[string]any{
		"ana_positive": false,
		"selections":   map[string]bool{"fever": true},
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[ScoreResponse](s.T(), rec)
	s.False(resp.Eligible)
	s.Equal(0, resp.TotalScore)
	s.Empty(resp.Domains)
	s.Require().NotNil(resp.IneligibleReason)
}

func (s *ScoreHandlerSuite) TestTruthyValues() {
	rec := s.post(map[string]any{
		"ana_positive": 1,
		"selections":   map[string]any{"fever": "yes", "joint_involvement": 1, "seizure": 0},
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[ScoreResponse](s.T(), rec)
	s.Equal(8, resp.TotalScore)
}

func (s *ScoreHandlerSuite) TestMissingSelectionsMeansNone() {
	rec := s.post(map[string]any{"ana_positive": true})
	s.Require().Equal(http.StatusOK, rec.Code)
	resp := testutil.UnmarshalResponse[ScoreResponse](s.T(), rec)
	s.Equal(0, resp.TotalScore)
	s.Equal(string(scoring.TierInsufficient), resp.RiskTier)
}

func (s *ScoreHandlerSuite) TestRejectsNonObjectSelections() {
	rec := s.post(map[string]any{
		"ana_positive": true,
		"selections":   []string{"renal_biopsy_class_iii_or_iv"},
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	body := testutil.UnmarshalErrorResponse(s.T(), rec)
	s.Equal("validation_error", body["error"])
}

func (s *ScoreHandlerSuite) TestRejectsBadJSON() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/score", "{bad json")
	rec := testutil.DoRequest(s.router, req)
	s.Equal(http.StatusBadRequest, rec.Code)
	body := testutil.UnmarshalErrorResponse(s.T(), rec)
	s.Equal("bad_request", body["error"])
}

func (s *ScoreHandlerSuite) TestRejectsNonObjectBody() {
	for _, raw := range []string{"null", "[]", `"ana"`, "7"} {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/score", raw)
		rec := testutil.DoRequest(s.router, req)
		s.Equal(http.StatusBadRequest, rec.Code, raw)
		body := testutil.UnmarshalErrorResponse(s.T(), rec)
		s.Equal("bad_request", body["error"], raw)
	}
}

func TestCriteriaSchemaEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(scoring.NewService(), logger).Register(r)

	rec := testutil.DoRequest(r, httptest.NewRequest(http.MethodGet, "/api/criteria", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	schema := testutil.UnmarshalResponse[criteria.InputSchema](t, rec)
	assert.Len(t, schema.Domains, 10)
	assert.True(t, strings.HasPrefix(schema.Domains[6].Fields[2].Label, "Renal biopsy class III or IV"))
}
