package handler

import (
	"slecriteria/internal/criteria"
	"slecriteria/internal/scoring"
)

// ScoreResponse is the HTTP response for POST /api/score.
type ScoreResponse struct {
	ANAPositive         bool                `json:"ana_positive"`
	Eligible            bool                `json:"eligible"`
	IneligibleReason    *string             `json:"ineligible_reason"`
	TotalScore          int                 `json:"total_score"`
	MeetsClassification bool                `json:"meets_classification"`
	RiskTier            string              `json:"risk_tier"`
	RiskNote            string              `json:"risk_note"`
	Domains             []DomainResponse    `json:"domains"`
	Radar               []scoring.RadarAxis `json:"radar"`
}

// DomainResponse is one domain of the breakdown.
type DomainResponse struct {
	DomainID         string              `json:"domain_id"`
	DomainLabel      string              `json:"domain_label"`
	AwardedPoints    int                 `json:"awarded_points"`
	AwardedCriterion *CriterionResponse  `json:"awarded_criterion"`
	SelectedCriteria []CriterionResponse `json:"selected_criteria"`
	Note             *string             `json:"note"`
}

type CriterionResponse struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// FromResult converts a domain ScoreResult to an HTTP response.
func FromResult(result *scoring.ScoreResult) *ScoreResponse {
	resp := &ScoreResponse{
		ANAPositive:         result.ANAPositive,
		Eligible:            result.Eligible,
		IneligibleReason:    optional(result.IneligibleReason),
		TotalScore:          result.TotalScore,
		MeetsClassification: result.MeetsClassification,
		RiskTier:            string(result.RiskTier),
		RiskNote:            result.RiskNote,
		Domains:             make([]DomainResponse, 0, len(result.DomainScores)),
		Radar:               scoring.RadarAxes(*result),
	}
	for _, ds := range result.DomainScores {
		dr := DomainResponse{
			DomainID:         ds.DomainID,
			DomainLabel:      ds.DomainLabel,
			AwardedPoints:    ds.AwardedPoints,
			SelectedCriteria: make([]CriterionResponse, 0, len(ds.SelectedCriteria)),
			Note:             optional(ds.Note),
		}
		if ds.AwardedCriterion != nil {
			c := fromCriterion(*ds.AwardedCriterion)
			dr.AwardedCriterion = &c
		}
		for _, c := range ds.SelectedCriteria {
			dr.SelectedCriteria = append(dr.SelectedCriteria, fromCriterion(c))
		}
		resp.Domains = append(resp.Domains, dr)
	}
	return resp
}

func fromCriterion(c criteria.Criterion) CriterionResponse {
	return CriterionResponse{ID: c.ID, Label: c.Label, Points: c.Points}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
