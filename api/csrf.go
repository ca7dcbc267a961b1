package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rs/zerolog"
)

const (
	csrfCookieName = "blog_admin_csrf"
	csrfFieldName  = "csrf_token"
)

// newCSRFMiddleware protects admin requests authenticated by the admin_token cookie.
// Forms send the token in the csrf_token field, scripts in the X-CSRF-Token header.
// Requests carrying a bearer token are exempt: a browser never attaches one on its own.
func newCSRFMiddleware(logger zerolog.Logger, key, baseURL string, maxBodyBytes int64) func(http.Handler) http.Handler {
	secret := []byte(key)
	if len(secret) != 32 {
		logger.Warn().Int("keyLength", len(secret)).Msg("CSRF_KEY is not 32 bytes, using a random key for csrf cookies")
		secret = securecookie.GenerateRandomKey(32)
	}

	responder := NewResponder(logger)
	secure := strings.HasPrefix(baseURL, "https://")

	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/admin"),
		csrf.CookieName(csrfCookieName),
		csrf.FieldName(csrfFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reason := csrf.FailureReason(r)
			logger.Warn().
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Str("requestID", ctxGetRequestID(r.Context())).
				AnErr("reason", reason).
				Msg("CSRF validation failed")
			responder.WriteError(w, errs.NewCSRFError(reason))
		})),
	}
	if base, err := url.Parse(baseURL); err == nil && base.Host != "" {
		opts = append(opts, csrf.TrustedOrigins([]string{base.Host}))
	}
	protect := csrf.Protect(secret, opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasBearerToken(r) {
				next.ServeHTTP(w, r)
				return
			}
			// the token lookup parses form bodies before the handler does
			if isFormRequest(r) {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			// origin checks only apply to https; the token is still required
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
