package ingest

import (
	"context"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/blob"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/fingerprint"
	"github.com/kotone-fm/kotone/metadata/registry"
	"github.com/kotone-fm/kotone/metadata/tags"
	"github.com/kotone-fm/kotone/storage"
	"github.com/spf13/afero"
)

// Service is an Ingester together with the stores it was opened with
type Service struct {
	*Ingester
	Songs library.StorageService
	Blobs library.BlobStorage
}

// Open opens the stores and providers configured in cfg and returns an
// Ingester using them
func Open(ctx context.Context, cfg config.Config) (*Service, error) {
	const op errors.Op = "ingest/Open"

	songs, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, errors.E(op, err)
	}

	blobs, err := blob.Open(ctx, cfg)
	if err != nil {
		songs.Close()
		return nil, errors.E(op, err)
	}

	lookup, err := registry.Open(ctx, cfg)
	if err != nil {
		songs.Close()
		return nil, errors.E(op, err)
	}

	fingerprints := fingerprint.NewGenerator(ctx, cfg, afero.NewOsFs())

	return &Service{
		Ingester: NewIngester(songs, blobs, tags.NewExtractor(), lookup, fingerprints),
		Songs:    songs,
		Blobs:    blobs,
	}, nil
}

// Close closes the song storage
func (s *Service) Close() error {
	return s.Songs.Close()
}
