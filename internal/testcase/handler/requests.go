package handler

import (
	"slecriteria/internal/testcase/service"
	"slecriteria/pkg/jsonvalue"
)

// RunRequest is the HTTP request body for POST /test-cases/run:
// {"mode": "all"} or {"mode": "one", "id": "TC-09"}. A missing or non-string
// mode means "all".
type RunRequest struct {
	Mode any `json:"mode"`
	ID   any `json:"id"`

	parsed service.RunRequest
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RunRequest) Validate() error {
	mode, ok := jsonvalue.String(r.Mode)
	if !ok || mode == "" {
		mode = service.ModeAll
	}
	id := ""
	if jsonvalue.Truthy(r.ID) {
		id = jsonvalue.Text(r.ID)
	}
	r.parsed = service.RunRequest{Mode: mode, ID: id}
	return nil
}

func (r *RunRequest) Parsed() service.RunRequest {
	return r.parsed
}
