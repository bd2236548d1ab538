package scoring

import "slecriteria/internal/criteria"

// RadarAxis is one spoke of the per-domain radar chart.
type RadarAxis struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Max   int    `json:"max"`
}

// RadarAxes returns one axis per catalog domain. Domains missing from the
// result (every domain, for ineligible results) plot as zero.
func RadarAxes(result ScoreResult) []RadarAxis {
	awarded := make(map[string]int, len(result.DomainScores))
	for _, ds := range result.DomainScores {
		awarded[ds.DomainID] = ds.AwardedPoints
	}

	domains := criteria.Domains()
	axes := make([]RadarAxis, 0, len(domains))
	for _, d := range domains {
		axes = append(axes, RadarAxis{
			ID:    d.ID,
			Label: d.Label,
			Value: awarded[d.ID],
			Max:   criteria.MaxPoints(d),
		})
	}
	return axes
}
