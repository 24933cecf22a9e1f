package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/cloudsrv/config"
	"github.com/tansive/datasource-store/internal/common/httpx"
)

// BearerToken rejects requests whose Authorization header does not carry the
// configured access token.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httpx.ErrMissingKeyInRequest().Send(w)
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			httpx.ErrUnAuthorized("missing or invalid authorization token").Send(w)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		expected := config.Config().AccessToken
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			log.Ctx(r.Context()).Warn().Msg("invalid access token")
			httpx.ErrUnAuthorized("invalid authorization token").Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
