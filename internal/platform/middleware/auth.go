package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "warranty/pkg/domain-errors"
	"warranty/pkg/platform/httputil"
	"warranty/pkg/requestcontext"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(raw string) (*IssuerClaims, error)
}

// IssuerClaims are the claims the middleware needs from a validated token.
type IssuerClaims struct {
	Subject string
	Role    string
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole rejects requests without a valid bearer token carrying role.
// The token subject is stored with requestcontext.WithIssuer.
func RequireRole(validator TokenValidator, role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "issuer auth: missing bearer token", "request_id", requestID)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or malformed Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "issuer auth: token rejected", "request_id", requestID, "error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if claims.Role != role {
				logger.WarnContext(ctx, "issuer auth: role mismatch",
					"request_id", requestID,
					"subject", claims.Subject,
					"role", claims.Role,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token lacks the "+role+" role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithIssuer(ctx, claims.Subject)))
		})
	}
}
