package mariadb

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var songColumnNames = []string{
	"id", "title", "artist", "artists", "album", "year", "genres",
	"duration", "file_key", "mime_type", "uploaded_by", "fingerprint",
	"fingerprint_key", "created_at",
}

func songToRow(song library.Song) []driver.Value {
	ds := toDatabaseSong(song)
	return []driver.Value{
		uint64(ds.ID), ds.Title, ds.Artist, ds.Artists, ds.Album, ds.Year, ds.Genres,
		ds.Duration, string(ds.FileKey), ds.MimeType, ds.UploadedBy, []byte(ds.Fingerprint.String()),
		ds.FingerprintKey, ds.CreatedAt,
	}
}

func newTestStorage(t *testing.T) (*StorageService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open stub database: %s", err)
	}
	t.Cleanup(func() { db.Close() })

	sqldb := sqlx.NewDb(db, "mysql")
	sqldb.MapperFunc(mapperFunc)

	storage := &StorageService{sqldb}
	return storage, mock
}

func testSong() library.Song {
	return library.Song{
		ID:          5,
		Title:       "Title",
		Artist:      "A & B",
		Artists:     []string{"A", "B"},
		Album:       "Album",
		Year:        2001,
		Genres:      library.Genres{"rock", "pop"},
		Duration:    time.Minute + 500*time.Millisecond,
		FileKey:     "cv5s2k0t3ah7q8q1ab00.mp3",
		MimeType:    "audio/mpeg",
		UploadedBy:  "tester",
		Fingerprint: library.NewAcousticFingerprint("AQADtEmSJEmSJEmS"),
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSongStorageGet(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	expected := testSong()
	rows := sqlmock.NewRows(songColumnNames).AddRow(songToRow(expected)...)
	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE id=").WithArgs(5).WillReturnRows(rows)

	song, err := ss.Get(5)
	require.NoError(t, err)
	assert.Equal(t, expected, *song)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageGetUnknown(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE id=").WithArgs(10).
		WillReturnRows(sqlmock.NewRows(songColumnNames))

	_, err := ss.Get(10)
	assert.True(t, errors.Is(errors.SongUnknown, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageLegacyGenres(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	song := testSong()
	row := songToRow(song)
	// genres column written by an older version
	row[6] = "rock, pop,"
	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(songColumnNames).AddRow(row...))

	got, err := ss.Get(5)
	require.NoError(t, err)
	assert.Equal(t, library.Genres{"rock", "pop"}, got.Genres)
	assert.Equal(t, "rock; pop", got.Genres.String())
}

func TestSongStorageFromFingerprint(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	expected := testSong()
	rows := sqlmock.NewRows(songColumnNames).AddRow(songToRow(expected)...)
	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE fingerprint_key=").
		WithArgs(fingerprintKey(expected.Fingerprint)).
		WillReturnRows(rows)

	song, err := ss.FromFingerprint(expected.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, expected.ID, song.ID)
	assert.Equal(t, expected.Fingerprint, song.Fingerprint)

	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE fingerprint_key=").
		WillReturnRows(sqlmock.NewRows(songColumnNames))
	_, err = ss.FromFingerprint(library.NewHashFingerprint([]byte("other")))
	assert.True(t, errors.Is(errors.SongUnknown, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageInsert(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	song := testSong()
	song.ID = 0
	ds := toDatabaseSong(song)

	mock.ExpectExec("^INSERT INTO songs").
		WithArgs(
			ds.Title, ds.Artist, "A; B", ds.Album, ds.Year, "rock; pop",
			int64(60500), ds.FileKey, ds.MimeType, ds.UploadedBy,
			song.Fingerprint.String(), ds.FingerprintKey, ds.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(42, 1))

	got, err := ss.Insert(song)
	require.NoError(t, err)
	assert.Equal(t, library.SongID(42), got.ID)
	assert.Equal(t, song.Title, got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageInsertDuplicate(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	song := testSong()
	song.ID = 0

	mock.ExpectExec("^INSERT INTO songs").WillReturnError(&mysql.MySQLError{
		Number:  mysqlErrDuplicateEntry,
		Message: "Duplicate entry for key 'songs_fingerprint_key'",
	})

	_, err := ss.Insert(song)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.SongDuplicate, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageInsertDuplicateFileKey(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	song := testSong()
	song.ID = 0

	mock.ExpectExec("^INSERT INTO songs").WillReturnError(&mysql.MySQLError{
		Number:  mysqlErrDuplicateEntry,
		Message: "Duplicate entry 'cv5s2k0t3ah7q8q1ab00.mp3' for key 'songs_file_key_unique'",
	})

	_, err := ss.Insert(song)
	require.Error(t, err)
	assert.False(t, errors.Is(errors.SongDuplicate, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageInsertInvalid(t *testing.T) {
	storage, _ := newTestStorage(t)
	ss := storage.Song(context.Background())

	_, err := ss.Insert(testSong())
	assert.True(t, errors.Is(errors.InvalidArgument, err), "song with id")

	song := testSong()
	song.ID = 0
	song.Fingerprint = library.Fingerprint{}
	_, err = ss.Insert(song)
	assert.True(t, errors.Is(errors.InvalidArgument, err), "song without fingerprint")
}

func TestSongStorageUpdateFields(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	title := "New Title"
	genres := library.Genres{"jazz", "funk"}
	key := library.BlobKey("new.mp3")

	updated := testSong()
	updated.Title = title
	updated.Genres = genres
	updated.FileKey = key

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE songs SET title=?, genres=?, file_key=? WHERE id=?;")).
		WithArgs(title, "jazz; funk", key, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE id=").WithArgs(5).
		WillReturnRows(sqlmock.NewRows(songColumnNames).AddRow(songToRow(updated)...))
	mock.ExpectCommit()

	song, err := ss.UpdateFields(5, library.SongPatch{
		Title:   &title,
		Genres:  &genres,
		FileKey: &key,
	})
	require.NoError(t, err)
	assert.Equal(t, updated, *song)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageUpdateFieldsUnknown(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	title := "New Title"

	mock.ExpectBegin()
	mock.ExpectExec("^UPDATE songs SET title=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("^SELECT (.+) FROM songs WHERE id=").WithArgs(99).
		WillReturnRows(sqlmock.NewRows(songColumnNames))
	mock.ExpectRollback()

	_, err := ss.UpdateFields(99, library.SongPatch{Title: &title})
	assert.True(t, errors.Is(errors.SongUnknown, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongStorageDelete(t *testing.T) {
	storage, mock := newTestStorage(t)
	ss := storage.Song(context.Background())

	mock.ExpectExec("^DELETE FROM songs WHERE id=").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, ss.Delete(5))

	mock.ExpectExec("^DELETE FROM songs WHERE id=").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := ss.Delete(5)
	assert.True(t, errors.Is(errors.SongUnknown, err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongTx(t *testing.T) {
	storage, mock := newTestStorage(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("^DELETE FROM songs WHERE id=").WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ss, tx, err := storage.SongTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, ss.Delete(5))
	require.NoError(t, tx.Commit())

	// reusing the transaction should not allow an early commit
	mock.ExpectBegin()
	mock.ExpectRollback()
	_, outer, err := storage.SongTx(ctx, nil)
	require.NoError(t, err)
	_, inner, err := storage.SongTx(ctx, outer)
	require.NoError(t, err)
	require.NoError(t, inner.Commit())
	require.NoError(t, outer.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSongListColumns(t *testing.T) {
	assert.Equal(t, "A; B", joinList([]string{"A", "B"}))
	assert.Equal(t, []string{"A", "B"}, splitList(" A ;B; "))
	assert.Nil(t, splitList(""))
}
