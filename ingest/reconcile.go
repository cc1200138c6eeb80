package ingest

import (
	"context"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/metadata"
	"github.com/rs/zerolog"
)

// Upload is the input of the Reconciler
type Upload struct {
	Fingerprint library.Fingerprint
	Metadata    library.MergedMetadata
	Blob        library.AudioBlob
	UploadedBy  string
}

// Decision is the result of reconciling an Upload
type Decision struct {
	Outcome Outcome
	// Song is the song after the decision was applied, for RejectDuplicate
	// this is the existing song
	Song *library.Song
}

// Reconciler decides how an upload is integrated into the library based on
// the existing song with the same fingerprint
type Reconciler struct {
	songs library.SongStorageService
	blobs library.BlobStorage
}

// NewReconciler returns a Reconciler using the stores given
func NewReconciler(songs library.SongStorageService, blobs library.BlobStorage) *Reconciler {
	return &Reconciler{
		songs: songs,
		blobs: blobs,
	}
}

// Reconcile applies the upload to the library and returns what it did
func (r *Reconciler) Reconcile(ctx context.Context, up Upload) (Decision, error) {
	const op errors.Op = "ingest/Reconciler.Reconcile"

	if up.Fingerprint.IsZero() {
		return Decision{}, errors.E(op, errors.InvalidArgument, errors.Info("fingerprint"))
	}

	existing, err := r.songs.Song(ctx).FromFingerprint(up.Fingerprint)
	if err != nil && !errors.Is(errors.SongUnknown, err) {
		return Decision{}, errors.E(op, err, up.Fingerprint)
	}
	if existing == nil {
		return r.acceptNew(ctx, up)
	}

	exists, err := r.blobs.Exists(ctx, existing.FileKey)
	if err != nil {
		return Decision{}, errors.E(op, err, *existing)
	}
	if !exists {
		return r.replaceOrphan(ctx, up, existing)
	}

	// genres are merged into the stored ones, so compare against what an
	// update would store
	candidate := up.Metadata.Metadata
	candidate.Genres = metadata.UnionGenres(existing.Genres, candidate.Genres)
	if !candidate.EqualTo(existing.Metadata()) {
		return r.updateMetadata(ctx, up, existing)
	}

	return Decision{Outcome: RejectDuplicate, Song: existing}, nil
}

// acceptNew stores the blob and inserts a new song
func (r *Reconciler) acceptNew(ctx context.Context, up Upload) (Decision, error) {
	const op errors.Op = "ingest/Reconciler.acceptNew"

	key, err := r.putBlob(ctx, up)
	if err != nil {
		return Decision{}, errors.E(op, err)
	}

	m := up.Metadata
	song, err := r.songs.Song(ctx).Insert(library.Song{
		Title:       m.Title,
		Artist:      m.Artist,
		Artists:     m.Artists,
		Album:       m.Album,
		Year:        m.Year,
		Genres:      m.Genres,
		Duration:    m.Duration,
		FileKey:     key,
		MimeType:    up.Blob.ContentType,
		UploadedBy:  up.UploadedBy,
		Fingerprint: up.Fingerprint,
	})
	if err == nil {
		return Decision{Outcome: AcceptNew, Song: song}, nil
	}

	// the record write failed, so the new blob is unreferenced
	r.deleteBlob(ctx, key)

	if !errors.Is(errors.SongDuplicate, err) {
		return Decision{}, errors.E(op, err, up.Fingerprint)
	}

	// another upload of the same file won the race to insert
	existing, ferr := r.songs.Song(ctx).FromFingerprint(up.Fingerprint)
	if ferr != nil {
		return Decision{}, errors.E(op, ferr, up.Fingerprint)
	}
	zerolog.Ctx(ctx).Info().
		Str("fingerprint", up.Fingerprint.Short()).
		Uint64("song_id", uint64(existing.ID)).
		Msg("concurrent upload of the same song")
	return Decision{Outcome: RejectDuplicate, Song: existing}, nil
}

// replaceOrphan stores the blob under a new key and points the existing song
// at it, together with the new metadata
func (r *Reconciler) replaceOrphan(ctx context.Context, up Upload, existing *library.Song) (Decision, error) {
	const op errors.Op = "ingest/Reconciler.replaceOrphan"

	key, err := r.putBlob(ctx, up)
	if err != nil {
		return Decision{}, errors.E(op, err, *existing)
	}

	patch := library.MetadataPatch(up.Metadata)
	patch.FileKey = &key
	patch.MimeType = &up.Blob.ContentType

	song, err := r.songs.Song(ctx).UpdateFields(existing.ID, patch)
	if err != nil {
		r.deleteBlob(ctx, key)
		return Decision{}, errors.E(op, err, *existing)
	}

	zerolog.Ctx(ctx).Info().
		Uint64("song_id", uint64(song.ID)).
		Str("old_key", existing.FileKey.String()).
		Str("new_key", key.String()).
		Msg("replaced missing file of song")
	return Decision{Outcome: ReplaceOrphan, Song: song}, nil
}

// updateMetadata updates the metadata of the existing song, genres are added
// to the existing ones
func (r *Reconciler) updateMetadata(ctx context.Context, up Upload, existing *library.Song) (Decision, error) {
	const op errors.Op = "ingest/Reconciler.updateMetadata"

	m := up.Metadata
	m.Genres = metadata.UnionGenres(existing.Genres, m.Genres)
	if m.Duration <= 0 {
		m.Duration = existing.Duration
	}

	song, err := r.songs.Song(ctx).UpdateFields(existing.ID, library.MetadataPatch(m))
	if err != nil {
		return Decision{}, errors.E(op, err, *existing)
	}
	return Decision{Outcome: UpdateMetadata, Song: song}, nil
}

// putBlob stores the upload under a fresh key and returns it
func (r *Reconciler) putBlob(ctx context.Context, up Upload) (library.BlobKey, error) {
	const op errors.Op = "ingest/Reconciler.putBlob"

	key := library.NewBlobKey(up.Blob.Filename)
	key, err := r.blobs.Put(ctx, key, up.Blob.Data, up.Blob.ContentType, library.BlobAttrs{
		"filename":    up.Blob.Filename,
		"fingerprint": up.Fingerprint.String(),
		"uploaded_by": up.UploadedBy,
	})
	if err != nil {
		return "", errors.E(op, err, key)
	}
	return key, nil
}

// deleteBlob removes a blob that ended up unreferenced, failure is only logged
func (r *Reconciler) deleteBlob(ctx context.Context, key library.BlobKey) {
	err := r.blobs.Delete(ctx, key)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", key.String()).Msg("failed to delete unreferenced blob")
	}
}
