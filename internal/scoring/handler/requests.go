package handler

import (
	"slecriteria/internal/scoring"
	dErrors "slecriteria/pkg/domain-errors"
	"slecriteria/pkg/jsonvalue"
)

// ScoreRequest is the HTTP request body for POST /api/score.
//
// Both fields are read loosely: ana_positive and each selection value count as
// true when truthy, and a missing or empty selections value means "nothing
// selected". Only a non-empty, non-object selections value is rejected.
type ScoreRequest struct {
	ANAPositive any `json:"ana_positive"`
	Selections  any `json:"selections"`

	parsed scoring.ScoreRequest
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ScoreRequest) Validate() error {
	selections := map[string]bool{}
	if jsonvalue.Truthy(r.Selections) {
		obj, ok := jsonvalue.Object(r.Selections)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "selections must be an object")
		}
		for id, v := range obj {
			selections[id] = jsonvalue.Truthy(v)
		}
	}

	r.parsed = scoring.ScoreRequest{
		ANAPositive: jsonvalue.Truthy(r.ANAPositive),
		Selections:  selections,
	}
	return nil
}

// Parsed returns the validated domain request. Unknown ids are still present;
// the scoring service drops them.
func (r *ScoreRequest) Parsed() scoring.ScoreRequest {
	return r.parsed
}
