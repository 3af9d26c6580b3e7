package server

import (
	"crypto/sha256"
	"net/http"

	"topmovies/internal/conf"
	"topmovies/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"
)

const (
	requestIDHeader = "X-Request-Id"
	csrfField       = "csrf_token"
	csrfCookie      = "topmovies-csrf"
)

// RequestIDFilter echoes the caller's request id or assigns a new one.
func RequestIDFilter() khttp.FilterFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// CSRFFilter mints form tokens and rejects unsafe requests that do not echo
// them back. It is a no-op when c.Csrf is off.
func CSRFFilter(c *conf.Session, logger log.Logger) khttp.FilterFunc {
	if !c.Csrf {
		return func(next http.Handler) http.Handler { return next }
	}

	l := log.NewHelper(logger)
	key := sha256.Sum256([]byte(c.Secret))
	protect := csrf.Protect(key[:],
		csrf.FieldName(csrfField),
		csrf.CookieName(csrfCookie),
		csrf.Path("/"),
		csrf.Secure(c.Secure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l.WithContext(r.Context()).Warnw("msg", "csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			service.RenderError(w, errors.Forbidden("CSRF_FAILED", "The form expired, reload the page and try again."))
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Referer checks only apply to requests that arrived over TLS.
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
