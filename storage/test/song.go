package storagetest

import (
	"context"
	"strings"
	"testing"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSong returns a song with all fields filled in, the fingerprint is
// derived from name
func newSong(name string) library.Song {
	return library.Song{
		Title:       name,
		Artist:      "Artist & Other",
		Artists:     []string{"Artist", "Other"},
		Album:       "Album",
		Year:        2010,
		Genres:      library.Genres{"rock", "pop"},
		Duration:    time.Minute*3 + time.Second*25,
		FileKey:     library.NewBlobKey(name + ".mp3"),
		MimeType:    "audio/mpeg",
		UploadedBy:  "storagetest",
		Fingerprint: library.NewHashFingerprint([]byte(name)),
	}
}

// assertSong compares the fields of a song that a store has to keep intact
func assertSong(t *testing.T, expected, actual library.Song) {
	t.Helper()
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.Artist, actual.Artist)
	assert.Equal(t, expected.Artists, actual.Artists)
	assert.Equal(t, expected.Album, actual.Album)
	assert.Equal(t, expected.Year, actual.Year)
	assert.Equal(t, expected.Genres, actual.Genres)
	assert.Equal(t, expected.Duration, actual.Duration)
	assert.Equal(t, expected.FileKey, actual.FileKey)
	assert.Equal(t, expected.MimeType, actual.MimeType)
	assert.Equal(t, expected.UploadedBy, actual.UploadedBy)
	assert.Equal(t, expected.Fingerprint, actual.Fingerprint)
}

func testSongInsertGet(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	song := newSong("insert get test")
	inserted, err := ss.Insert(song)
	require.NoError(t, err)
	require.NotZero(t, inserted.ID)
	assertSong(t, song, *inserted)

	got, err := ss.Get(inserted.ID)
	require.NoError(t, err)
	assertSong(t, song, *got)
	assert.Equal(t, inserted.ID, got.ID)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)
}

func testSongGetUnknown(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	_, err := ss.Get(9999)
	require.True(t, errors.Is(errors.SongUnknown, err))
}

func testSongFromFingerprint(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	acoustic := newSong("acoustic fingerprint test")
	// acoustic fingerprints are long and go past any reasonable index size
	acoustic.Fingerprint = library.NewAcousticFingerprint(strings.Repeat("AQADtEmSJEmSJEmS", 512))
	hash := newSong("hash fingerprint test")

	for _, song := range []library.Song{acoustic, hash} {
		inserted, err := ss.Insert(song)
		require.NoError(t, err)

		got, err := ss.FromFingerprint(song.Fingerprint)
		require.NoError(t, err)
		assert.Equal(t, inserted.ID, got.ID)
		assert.Equal(t, song.Fingerprint, got.Fingerprint)
	}

	_, err := ss.FromFingerprint(library.NewHashFingerprint([]byte("unknown")))
	require.True(t, errors.Is(errors.SongUnknown, err))

	// same data but a different kind is a different fingerprint
	_, err = ss.FromFingerprint(library.NewAcousticFingerprint(hash.Fingerprint.Data))
	require.True(t, errors.Is(errors.SongUnknown, err))
}

func testSongInsertDuplicate(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	song := newSong("duplicate test")
	first, err := ss.Insert(song)
	require.NoError(t, err)

	song.Title = "different title, same file"
	_, err = ss.Insert(song)
	require.Error(t, err)
	require.True(t, errors.Is(errors.SongDuplicate, err))

	got, err := ss.FromFingerprint(song.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "duplicate test", got.Title)
}

func testSongInsertWithID(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	song := newSong("insert with id test")
	song.ID = 500
	_, err := ss.Insert(song)
	require.True(t, errors.Is(errors.InvalidArgument, err))
}

func testSongUpdateFields(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	song := newSong("update fields test")
	inserted, err := ss.Insert(song)
	require.NoError(t, err)

	title := "updated title"
	genres := library.Genres{"jazz"}
	key := library.NewBlobKey("replacement.ogg")
	mime := "audio/ogg"

	updated, err := ss.UpdateFields(inserted.ID, library.SongPatch{
		Title:    &title,
		Genres:   &genres,
		FileKey:  &key,
		MimeType: &mime,
	})
	require.NoError(t, err)

	expected := song
	expected.Title = title
	expected.Genres = genres
	expected.FileKey = key
	expected.MimeType = mime
	assertSong(t, expected, *updated)

	got, err := ss.Get(inserted.ID)
	require.NoError(t, err)
	assertSong(t, expected, *got)

	// an empty patch changes nothing
	same, err := ss.UpdateFields(inserted.ID, library.SongPatch{})
	require.NoError(t, err)
	assertSong(t, expected, *same)

	// a patch with the current values changes nothing either
	same, err = ss.UpdateFields(inserted.ID, library.SongPatch{Title: &title})
	require.NoError(t, err)
	assertSong(t, expected, *same)
}

func testSongUpdateFieldsUnknown(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	title := "nobody"
	_, err := ss.UpdateFields(9999, library.SongPatch{Title: &title})
	require.True(t, errors.Is(errors.SongUnknown, err))
}

func testSongFileKeyUnique(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	first, err := ss.Insert(newSong("file key unique first"))
	require.NoError(t, err)

	second := newSong("file key unique second")
	second.FileKey = first.FileKey
	_, err = ss.Insert(second)
	require.Error(t, err)
	// the fingerprints differ, so this is not a duplicate song
	assert.False(t, errors.Is(errors.SongDuplicate, err))

	_, err = ss.FromFingerprint(second.Fingerprint)
	assert.True(t, errors.Is(errors.SongUnknown, err))
}

func testSongEmptyFields(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	song := library.Song{
		Title:       library.UnknownTitle,
		Artist:      library.UnknownArtist,
		Artists:     []string{library.UnknownArtist},
		FileKey:     library.NewBlobKey("empty.mp3"),
		Fingerprint: library.NewHashFingerprint([]byte("empty fields test")),
	}

	inserted, err := ss.Insert(song)
	require.NoError(t, err)

	got, err := ss.Get(inserted.ID)
	require.NoError(t, err)
	assertSong(t, song, *got)
	assert.Empty(t, got.Genres)
}

func testSongDelete(ctx context.Context, t *testing.T, s library.StorageService) {
	ss := s.Song(ctx)

	inserted, err := ss.Insert(newSong("delete test"))
	require.NoError(t, err)

	require.NoError(t, ss.Delete(inserted.ID))

	_, err = ss.Get(inserted.ID)
	require.True(t, errors.Is(errors.SongUnknown, err))

	err = ss.Delete(inserted.ID)
	require.True(t, errors.Is(errors.SongUnknown, err))

	// the fingerprint is free to use again
	_, err = ss.Insert(newSong("delete test"))
	require.NoError(t, err)
}
