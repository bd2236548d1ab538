package testcase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slecriteria/pkg/platform/sentinel"
)

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("suite.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("SUITE.YML"))
	assert.Equal(t, FormatJSON, FormatFor("suite.json"))
	assert.Equal(t, FormatJSON, FormatFor("suite"))
}

func TestLoadJSONKeepsNumbersExact(t *testing.T) {
	suite, data, err := Load("testdata/test_cases.json")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	groups := suite["test_cases"].([]any)
	scoringCases := groups[1].(map[string]any)["cases"].([]any)
	last := scoringCases[len(scoringCases)-1].(map[string]any)
	assert.Equal(t, json.Number("5.0"), last["expected"].(map[string]any)["total_score"])
}

func TestLoadYAML(t *testing.T) {
	suite, _, err := Load("testdata/test_cases.yaml")
	require.NoError(t, err)

	report, err := RunSuite(t.Context(), suite, RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Pass: 2, Skip: 1, Total: 3}, report.Summary)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestParseMalformed(t *testing.T) {
	tests := map[string]string{
		"syntax":        `{"test_cases": [`,
		"not an object": `[1, 2]`,
		"trailing data": `{} {}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), FormatJSON)
			assert.ErrorIs(t, err, sentinel.ErrMalformed)
		})
	}

	_, err := Parse([]byte("test_cases: [\n"), FormatYAML)
	assert.ErrorIs(t, err, sentinel.ErrMalformed)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, _, err := Load(path)
	assert.ErrorIs(t, err, sentinel.ErrMalformed)
}
