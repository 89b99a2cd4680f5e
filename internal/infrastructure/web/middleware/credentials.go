package middleware

import (
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/ratelimit"
	"context"
	"net/http"
	"strings"
)

type credentialKey struct{}

// WithToken guarda la credencial bearer en el contexto
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey{}, token)
}

// TokenFromContext devuelve la credencial o "" si la request no traía ninguna
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(credentialKey{}).(string)
	return token
}

// BearerToken extrae el token de "Authorization: Bearer <token>"
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// CredentialsMiddleware copia el token bearer al contexto. Una request sin token no se
// rechaza: los favoritos se degradan a una sesión vacía.
// Los navegadores no pueden fijar cabeceras en un upgrade WebSocket, así que en
// upgradePath también se acepta ?access_token=.
func CredentialsMiddleware(upgradePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" && upgradePath != "" && r.URL.Path == upgradePath {
				token = strings.TrimSpace(r.URL.Query().Get("access_token"))
			}

			if token == "" {
				if strings.HasPrefix(r.URL.Path, "/api/v1/favorites") {
					logging.Security().MissingCredentials(r.Context(), ratelimit.ClientIP(r), r.URL.Path)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}
