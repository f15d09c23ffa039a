package testutil

import (
	"net/http"
	"time"

	"visitgate/pkg/requestcontext"
)

// WithRequestTime pins the request-scoped clock, the way the RequestTime
// middleware does in production.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
