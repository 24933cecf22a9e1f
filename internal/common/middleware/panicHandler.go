package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/tansive/datasource-store/internal/common/httpx"
)

// PanicHandler turns a panicking handler into a 500 response. Mounted after
// RequestLogger, the logged panic carries the request id returned to the
// caller in X-Request-ID.
func PanicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.Ctx(r.Context()).Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("recovered from panic")
			httpx.ErrApplicationError("Unable to process request. Please try again later.").Send(w)
		}()
		next.ServeHTTP(w, r)
	})
}
