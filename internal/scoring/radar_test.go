package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadarAxes(t *testing.T) {
	r := ComputeScore(true, map[string]bool{"proteinuria": true, "seizure": true})
	axes := RadarAxes(r)
	require.Len(t, axes, 10)

	byID := map[string]RadarAxis{}
	for _, a := range axes {
		byID[a.ID] = a
	}
	assert.Equal(t, RadarAxis{ID: "renal", Label: "Renal", Value: 4, Max: 10}, byID["renal"])
	assert.Equal(t, 5, byID["neuropsychiatric"].Value)
	assert.Equal(t, 0, byID["serosal"].Value)
	assert.Equal(t, 6, byID["serosal"].Max)
}

func TestRadarAxesIneligible(t *testing.T) {
	axes := RadarAxes(ComputeScore(false, map[string]bool{"fever": true}))
	require.Len(t, axes, 10)
	for _, a := range axes {
		assert.Zero(t, a.Value, a.ID)
		assert.Positive(t, a.Max, a.ID)
	}
}
