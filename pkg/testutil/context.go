package testutil

import (
	"net/http"

	"warranty/pkg/requestcontext"
)

// WithIssuer places an authenticated issuer subject on the request context,
// as RequireRole does after validating a bearer token.
func WithIssuer(req *http.Request, subject string) *http.Request {
	return req.WithContext(requestcontext.WithIssuer(req.Context(), subject))
}
