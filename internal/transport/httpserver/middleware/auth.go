package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"wedding-app-go/internal/auth"
	"wedding-app-go/pkg/logger"
)

type contextKey int

const adminSubjectKey contextKey = iota

// AdminAuth guards the read-only RSVP endpoints with a bearer admin token.
// Without a configured secret the guard lets every request through.
type AdminAuth struct {
	tokens *auth.AdminTokens
	log    logger.Logger
}

func NewAdminAuth(tokens *auth.AdminTokens, log logger.Logger) *AdminAuth {
	if !tokens.Enabled() {
		log.Warn("auth: ADMIN_JWT_SECRET not set, admin endpoints are open")
	}
	return &AdminAuth{tokens: tokens, log: log}
}

func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.tokens.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := a.tokens.Verify(token)
		if err != nil {
			a.log.BusinessError("auth.admin: token rejected", err, "path", r.URL.Path)
			unauthorized(w)
			return
		}

		ctx := WithAdmin(r.Context(), claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithAdmin(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, adminSubjectKey, subject)
}

func AdminFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(adminSubjectKey).(string)
	if !ok || subject == "" {
		return "", false
	}
	return subject, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
