package scoring

import (
	"fmt"

	"slecriteria/internal/criteria"
)

// ClassificationThreshold is the total at or above which a patient meets
// EULAR/ACR 2019 SLE classification.
const ClassificationThreshold = 10

// HighRiskThreshold starts the high-risk band.
const HighRiskThreshold = 20

// RiskTier is the qualitative banding of the total score.
type RiskTier string

const (
	TierIneligible   RiskTier = "Ineligible"
	TierInsufficient RiskTier = "Insufficient"
	TierStandard     RiskTier = "Standard SLE"
	TierHighRisk     RiskTier = "High-risk SLE / Ominous"
)

// Valid reports whether t is one of the canonical tiers.
func (t RiskTier) Valid() bool {
	switch t {
	case TierIneligible, TierInsufficient, TierStandard, TierHighRisk:
		return true
	}
	return false
}

func (t RiskTier) String() string {
	return string(t)
}

// ParseRiskTier accepts only the canonical tier strings.
func ParseRiskTier(s string) (RiskTier, error) {
	t := RiskTier(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown risk tier %q", s)
	}
	return t, nil
}

// DomainScore is the per-domain breakdown of a scored request.
type DomainScore struct {
	DomainID         string
	DomainLabel      string
	AwardedPoints    int
	AwardedCriterion *criteria.Criterion
	SelectedCriteria []criteria.Criterion
	Note             string
}

// ScoreResult is the outcome of one ComputeScore call.
type ScoreResult struct {
	ANAPositive         bool
	Eligible            bool
	TotalScore          int
	MeetsClassification bool
	RiskTier            RiskTier
	RiskNote            string
	DomainScores        []DomainScore
	IneligibleReason    string
}

// Domain returns the breakdown for domainID, if the result has one.
func (r ScoreResult) Domain(domainID string) (DomainScore, bool) {
	for _, ds := range r.DomainScores {
		if ds.DomainID == domainID {
			return ds, true
		}
	}
	return DomainScore{}, false
}

// ScoreRequest is the service-level input. Selections may contain unknown
// ids; the service drops them before scoring.
type ScoreRequest struct {
	ANAPositive bool
	Selections  map[string]bool
}
