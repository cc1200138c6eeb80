package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
)

type songKey struct{}

type uploaderKey struct{}

// ErrorHandler is the function called when a middleware fails a request
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// SongCtx reads an URL parameter named SongID and tries to find the song associated
// with it. The result can be retrieved with GetSong
func SongCtx(storage library.SongStorageService, errorFn ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op errors.Op = "website/middleware.SongCtx"
			ctx := r.Context()

			id, err := library.ParseSongID(chi.URLParamFromCtx(ctx, "SongID"))
			if err != nil {
				errorFn(w, r, errors.E(op, err, errors.InvalidForm, errors.Info("song id")))
				return
			}

			song, err := storage.Song(ctx).Get(id)
			if err != nil {
				errorFn(w, r, errors.E(op, err))
				return
			}

			ctx = context.WithValue(ctx, songKey{}, *song)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSong returns the song from the given context if one exists.
// See SongCtx for supplier of this
func GetSong(ctx context.Context) (library.Song, bool) {
	song, ok := ctx.Value(songKey{}).(library.Song)
	return song, ok
}
