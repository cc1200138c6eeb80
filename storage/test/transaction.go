package storagetest

import (
	"context"
	"testing"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransactionCommit(ctx context.Context, t *testing.T, s library.StorageService) {
	ss, tx, err := s.SongTx(ctx, nil)
	require.NoError(t, err)

	song := newSong("transaction commit test")

	inserted, err := ss.Insert(song)
	require.NoError(t, err)

	err = tx.Commit()
	require.NoError(t, err)

	got, err := s.Song(ctx).Get(inserted.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, song.Title, got.Title)
		assert.Equal(t, song.Fingerprint, got.Fingerprint)
	}
}

func testTransactionRollback(ctx context.Context, t *testing.T, s library.StorageService) {
	ss, tx, err := s.SongTx(ctx, nil)
	require.NoError(t, err)

	song := newSong("transaction rollback test")

	_, err = ss.Insert(song)
	require.NoError(t, err)

	err = tx.Rollback()
	require.NoError(t, err)

	_, err = s.Song(ctx).FromFingerprint(song.Fingerprint)
	require.True(t, errors.Is(errors.SongUnknown, err))
}

func testTransactionNested(ctx context.Context, t *testing.T, s library.StorageService) {
	_, outer, err := s.SongTx(ctx, nil)
	require.NoError(t, err)
	defer outer.Rollback()

	ss, inner, err := s.SongTx(ctx, outer)
	require.NoError(t, err)

	song, err := ss.Insert(newSong("transaction nested test"))
	require.NoError(t, err)

	// the inner commit should not commit the outer transaction
	require.NoError(t, inner.Commit())
	require.NoError(t, outer.Rollback())

	_, err = s.Song(ctx).Get(song.ID)
	require.True(t, errors.Is(errors.SongUnknown, err))
}
