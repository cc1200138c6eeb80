package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/website/shared"
	"github.com/rs/zerolog/hlog"
)

// Recoverer turns a panic in next into a 500 response. http.ErrAbortHandler
// is re-raised so net/http can abort the connection
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			hlog.FromRequest(r).Error().
				Bytes("stack", debug.Stack()).
				Msg("recovered panic")
			shared.ErrorHandler(w, r, errors.Errorf("panic: %v", rvr))
		}()

		next.ServeHTTP(w, r)
	})
}
