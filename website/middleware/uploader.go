package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Uploader is a middleware that reads the identity of the user from the
// header returned by header, the header is expected to be set by an
// authenticating proxy. Requests without the header are identified by
// their address instead. The result can be retrieved with GetUploader
func Uploader(header func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := strings.TrimSpace(r.Header.Get(header()))
			if identity == "" {
				identity = "addr:" + r.RemoteAddr
			}

			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("uploader", identity)
			})

			ctx := context.WithValue(r.Context(), uploaderKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUploader returns the uploader identity from the given context, or an
// empty string if there is none
func GetUploader(ctx context.Context) string {
	identity, _ := ctx.Value(uploaderKey{}).(string)
	return identity
}
