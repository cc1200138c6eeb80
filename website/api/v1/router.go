package v1

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/ingest"
	"github.com/kotone-fm/kotone/website/middleware"
	"github.com/kotone-fm/kotone/website/shared"
)

// Ingester is the ingestion pipeline used by the API
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (ingest.Result, error)
	Edit(ctx context.Context, id library.SongID, user library.Metadata) (*library.Song, error)
	Delete(ctx context.Context, id library.SongID) error
}

func NewAPI(ctx context.Context, cfg config.Config, ingester Ingester, songs library.SongStorageService, blobs library.BlobStorage) *API {
	return &API{
		Context:  ctx,
		Config:   cfg,
		ingester: ingester,
		songs:    songs,
		blobs:    blobs,
	}
}

type API struct {
	Context  context.Context
	Config   config.Config
	ingester Ingester
	songs    library.SongStorageService
	blobs    library.BlobStorage
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/songs", func(r chi.Router) {
		upload := r
		if limit := a.Config.Conf().Website.UploadRateLimit; limit > 0 {
			upload = r.With(httprate.LimitByIP(limit, time.Minute))
		}
		upload.Post("/", a.PostSong)

		r.Route("/{SongID}", func(r chi.Router) {
			r.Use(middleware.SongCtx(a.songs, shared.ErrorHandler))
			r.Get("/", a.GetSong)
			r.Patch("/", a.PatchSong)
			r.Delete("/", a.DeleteSong)
			r.Get("/file", a.GetSongFile)
			r.Head("/file", a.GetSongFile)
		})
	})
	return r
}
