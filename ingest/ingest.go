// Package ingest turns uploaded audio files into songs in the library
package ingest

import (
	"context"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/metadata"
	"github.com/rs/zerolog"
)

// Request is an upload to be ingested
type Request struct {
	Blob library.AudioBlob
	// Metadata is the metadata supplied by the uploader, empty fields are
	// filled in from other sources
	Metadata library.Metadata
	// UploadedBy is the identity of the uploader
	UploadedBy string
}

// Result is the result of a successful ingestion
type Result struct {
	Outcome Outcome
	// Song is the song the upload ended up as, or the existing song for
	// RejectDuplicate
	Song *library.Song
}

// Ingester runs the ingestion pipeline
type Ingester struct {
	songs        library.SongStorageService
	blobs        library.BlobStorage
	extractor    library.TagExtractor
	lookup       library.MetadataLookup
	fingerprints library.FingerprintGenerator
	reconciler   *Reconciler
}

// NewIngester returns an Ingester using the collaborators given, lookup can
// be nil to disable online lookups
func NewIngester(
	songs library.SongStorageService,
	blobs library.BlobStorage,
	extractor library.TagExtractor,
	lookup library.MetadataLookup,
	fingerprints library.FingerprintGenerator,
) *Ingester {
	return &Ingester{
		songs:        songs,
		blobs:        blobs,
		extractor:    extractor,
		lookup:       lookup,
		fingerprints: fingerprints,
		reconciler:   NewReconciler(songs, blobs),
	}
}

// Ingest runs an upload through the pipeline. Input errors are returned
// before anything is stored, a duplicate upload is not an error but a
// RejectDuplicate outcome
func (i *Ingester) Ingest(ctx context.Context, req Request) (Result, error) {
	const op errors.Op = "ingest/Ingester.Ingest"
	logger := zerolog.Ctx(ctx)

	if len(req.Blob.Data) == 0 {
		return Result{}, errors.E(op, errors.InvalidArgument, errors.Info("file"), library.ErrMissingFile)
	}

	extracted := i.extractor.Extract(ctx, req.Blob.Data)
	merged := metadata.Merge(extracted, req.Metadata, req.Blob.Filename)
	merged = metadata.Lookup(ctx, i.lookup, merged)
	merged = metadata.CleanMerged(merged, req.Blob.Filename)
	if merged.Title == "" || merged.Artist == "" {
		// unreachable because of the placeholders, but never store this
		return Result{}, errors.E(op, errors.InvalidArgument, library.ErrMissingMetadata)
	}

	fp := i.fingerprints.Generate(ctx, req.Blob.Data)

	decision, err := i.reconciler.Reconcile(ctx, Upload{
		Fingerprint: fp,
		Metadata:    merged,
		Blob:        req.Blob,
		UploadedBy:  req.UploadedBy,
	})
	if err != nil {
		return Result{}, errors.E(op, err)
	}

	outcomesTotal.WithLabelValues(decision.Outcome.String()).Inc()
	logger.Info().
		Stringer("outcome", decision.Outcome).
		Uint64("song_id", uint64(decision.Song.ID)).
		Str("fingerprint", fp.Short()).
		Str("title", decision.Song.Title).
		Str("artist", decision.Song.Artist).
		Str("uploaded_by", req.UploadedBy).
		Msg("ingested upload")

	return Result{
		Outcome: decision.Outcome,
		Song:    decision.Song,
	}, nil
}

// Edit updates the metadata of a song with the user supplied metadata, empty
// fields keep their current value
func (i *Ingester) Edit(ctx context.Context, id library.SongID, user library.Metadata) (*library.Song, error) {
	const op errors.Op = "ingest/Ingester.Edit"

	ss, tx, err := i.songs.SongTx(ctx, nil)
	if err != nil {
		return nil, errors.E(op, err)
	}
	defer tx.Rollback()

	current, err := ss.Get(id)
	if err != nil {
		return nil, errors.E(op, err)
	}

	// the current values act as the lowest precedence source
	merged := metadata.Merge(current.Metadata(), user, "")
	merged = metadata.CleanMerged(merged, "")

	song, err := ss.UpdateFields(id, library.MetadataPatch(merged))
	if err != nil {
		return nil, errors.E(op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.E(op, errors.TransactionCommit, err)
	}
	return song, nil
}

// Delete removes a song and its file, the file is removed best-effort after
// the song is gone
func (i *Ingester) Delete(ctx context.Context, id library.SongID) error {
	const op errors.Op = "ingest/Ingester.Delete"

	ss, tx, err := i.songs.SongTx(ctx, nil)
	if err != nil {
		return errors.E(op, err)
	}
	defer tx.Rollback()

	song, err := ss.Get(id)
	if err != nil {
		return errors.E(op, err)
	}

	if err = ss.Delete(id); err != nil {
		return errors.E(op, err)
	}

	if err = tx.Commit(); err != nil {
		return errors.E(op, errors.TransactionCommit, err)
	}

	err = i.blobs.Delete(ctx, song.FileKey)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Uint64("song_id", uint64(id)).
			Str("key", song.FileKey.String()).
			Msg("failed to delete file of deleted song")
	}
	return nil
}
