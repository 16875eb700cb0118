package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/tracing"
	"github.com/ItIsYeBananaduck/git-fit/pkg"
)

// AuthTokenHeader carries the shared app secret set by the mobile client.
// A non-standard req. header, so browsers make a preflight/OPTIONS request:
//
//	https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#preflighted_requests
const AuthTokenHeader = "X-GITFIT-TOKEN"

type AuthMiddlewareHandler struct {
	appSecret    string
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(appSecret string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		appSecret: appSecret,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(authToken), []byte(h.appSecret)) != 1 {
				logToken := authToken
				if len(logToken) > 4 {
					logToken = logToken[:4] + strings.Repeat("*", len(logToken)-4)
				}
				reqIp, _ := pkg.ReadUserIP(r)
				log.Tracef("[invalid token %s from %s] [auth middleware] unauthorized => %s", logToken, reqIp, r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
