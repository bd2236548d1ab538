package scoring

import "slecriteria/internal/criteria"

const ineligibleReason = "ANA negative: the entry criterion is not met, so no score is computed."

var tierNotes = map[RiskTier]string{
	TierIneligible:   "Cannot classify: the ANA entry criterion is not met.",
	TierInsufficient: "Score < 10: keep monitoring; SLE is not classified under EULAR/ACR 2019.",
	TierStandard:     "10 ≤ Score < 20: meets classification criteria; assess and treat per standard protocol.",
	TierHighRisk:     "Score ≥ 20: high-risk warning (especially renal or neuropsychiatric involvement); monitor closely and consider early intensive treatment.",
}

// ComputeScore applies the EULAR/ACR 2019 rules to one patient.
//
// An ANA-negative patient is ineligible and nothing else is evaluated. For
// eligible patients every domain contributes at most one criterion's points.
// Unknown selection ids are ignored.
func ComputeScore(anaPositive bool, selections map[string]bool) ScoreResult {
	if !anaPositive {
		return ScoreResult{
			ANAPositive:      false,
			Eligible:         false,
			RiskTier:         TierIneligible,
			RiskNote:         tierNotes[TierIneligible],
			DomainScores:     []DomainScore{},
			IneligibleReason: ineligibleReason,
		}
	}

	domains := criteria.Domains()
	scores := make([]DomainScore, 0, len(domains))
	total := 0
	for _, d := range domains {
		selected := selectedCriteria(d, selections)
		points, awarded := domainAward(d, selected)
		total += points
		scores = append(scores, DomainScore{
			DomainID:         d.ID,
			DomainLabel:      d.Label,
			AwardedPoints:    points,
			AwardedCriterion: awarded,
			SelectedCriteria: selected,
			Note:             d.Note,
		})
	}

	tier := TierFor(total)
	return ScoreResult{
		ANAPositive:         true,
		Eligible:            true,
		TotalScore:          total,
		MeetsClassification: total >= ClassificationThreshold,
		RiskTier:            tier,
		RiskNote:            tierNotes[tier],
		DomainScores:        scores,
	}
}

// TierFor bands an eligible total score.
func TierFor(total int) RiskTier {
	switch {
	case total < ClassificationThreshold:
		return TierInsufficient
	case total < HighRiskThreshold:
		return TierStandard
	default:
		return TierHighRisk
	}
}

// TierNote returns the fixed explanation attached to a tier.
func TierNote(t RiskTier) string {
	return tierNotes[t]
}

func selectedCriteria(d criteria.Domain, selections map[string]bool) []criteria.Criterion {
	out := []criteria.Criterion{}
	for _, c := range d.Criteria {
		if selections[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// domainAward picks the criterion whose points a domain contributes. Ties in a
// max domain keep the earliest selected criterion in catalog order.
func domainAward(d criteria.Domain, selected []criteria.Criterion) (int, *criteria.Criterion) {
	if len(selected) == 0 {
		return 0, nil
	}
	winner := selected[0]
	if d.Aggregation == criteria.AggregationMaxOfSelected {
		for _, c := range selected[1:] {
			if c.Points > winner.Points {
				winner = c
			}
		}
	}
	return winner.Points, &winner
}
