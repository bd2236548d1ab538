package testutil

import (
	"net/http"

	"slecriteria/pkg/requestcontext"
)

// WithRequestID attaches a request id the way the request-id middleware does.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
