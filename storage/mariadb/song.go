package mariadb

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
)

// mysqlErrDuplicateEntry is the error number for a unique key violation
const mysqlErrDuplicateEntry = 1062

// listSeparator is the separator used for list columns
const listSeparator = "; "

// databaseSong is the type used to communicate with the database
type databaseSong struct {
	ID      library.SongID
	Title   string
	Artist  string
	Artists string
	Album   string
	Year    int
	Genres  string
	// Duration in milliseconds
	Duration       int64
	FileKey        library.BlobKey `db:"file_key"`
	MimeType       string          `db:"mime_type"`
	UploadedBy     string          `db:"uploaded_by"`
	Fingerprint    library.Fingerprint
	FingerprintKey string    `db:"fingerprint_key"`
	CreatedAt      time.Time `db:"created_at"`
}

func (ds databaseSong) ToSong() library.Song {
	return library.Song{
		ID:          ds.ID,
		Title:       ds.Title,
		Artist:      ds.Artist,
		Artists:     splitList(ds.Artists),
		Album:       ds.Album,
		Year:        ds.Year,
		Genres:      library.ParseGenres(ds.Genres),
		Duration:    time.Duration(ds.Duration) * time.Millisecond,
		FileKey:     ds.FileKey,
		MimeType:    ds.MimeType,
		UploadedBy:  ds.UploadedBy,
		Fingerprint: ds.Fingerprint,
		CreatedAt:   ds.CreatedAt,
	}
}

func (ds databaseSong) ToSongPtr() *library.Song {
	song := ds.ToSong()
	return &song
}

func toDatabaseSong(song library.Song) databaseSong {
	return databaseSong{
		ID:             song.ID,
		Title:          song.Title,
		Artist:         song.Artist,
		Artists:        joinList(song.Artists),
		Album:          song.Album,
		Year:           song.Year,
		Genres:         song.Genres.String(),
		Duration:       song.Duration.Milliseconds(),
		FileKey:        song.FileKey,
		MimeType:       song.MimeType,
		UploadedBy:     song.UploadedBy,
		Fingerprint:    song.Fingerprint,
		FingerprintKey: fingerprintKey(song.Fingerprint),
		CreatedAt:      song.CreatedAt,
	}
}

// fingerprintKey returns the value of the unique fingerprint_key column, a
// fingerprint itself can be too long to put a unique index on
func fingerprintKey(fp library.Fingerprint) string {
	sum := sha256.Sum256([]byte(fp.String()))
	return hex.EncodeToString(sum[:])
}

func joinList(l []string) string {
	return strings.Join(l, listSeparator)
}

func splitList(s string) []string {
	var res []string
	for _, v := range strings.Split(s, ";") {
		v = strings.TrimSpace(v)
		if v != "" {
			res = append(res, v)
		}
	}
	return res
}

// isDuplicateFingerprint returns true if err is a unique key violation of
// the fingerprint_key column
func isDuplicateFingerprint(err error) bool {
	var merr *mysql.MySQLError
	return errors.AsE(err, &merr) &&
		merr.Number == mysqlErrDuplicateEntry &&
		strings.Contains(merr.Message, "fingerprint_key")
}

// SongStorage implements library.SongStorage
type SongStorage struct {
	handle handle
}

const songSelectQuery = `
SELECT
	id,
	title,
	artist,
	artists,
	album,
	year,
	genres,
	duration,
	file_key,
	mime_type,
	uploaded_by,
	fingerprint,
	fingerprint_key,
	created_at
FROM
	songs
`

var songGetQuery = songSelectQuery + `WHERE id=?;`

// Get implements library.SongStorage
func (ss SongStorage) Get(id library.SongID) (*library.Song, error) {
	const op errors.Op = "mariadb/SongStorage.Get"
	handle, deferFn := ss.handle.span(op)
	defer deferFn()

	var tmp databaseSong

	err := sqlx.Get(handle, &tmp, songGetQuery, id)
	if err != nil {
		if errors.IsE(err, sql.ErrNoRows) {
			return nil, errors.E(op, errors.SongUnknown, id)
		}
		return nil, errors.E(op, err, id)
	}

	return tmp.ToSongPtr(), nil
}

var songFromFingerprintQuery = songSelectQuery + `WHERE fingerprint_key=?;`

// FromFingerprint implements library.SongStorage
func (ss SongStorage) FromFingerprint(fp library.Fingerprint) (*library.Song, error) {
	const op errors.Op = "mariadb/SongStorage.FromFingerprint"
	handle, deferFn := ss.handle.span(op)
	defer deferFn()

	var tmp databaseSong

	err := sqlx.Get(handle, &tmp, songFromFingerprintQuery, fingerprintKey(fp))
	if err != nil {
		if errors.IsE(err, sql.ErrNoRows) {
			return nil, errors.E(op, errors.SongUnknown, fp)
		}
		return nil, errors.E(op, err, fp)
	}

	return tmp.ToSongPtr(), nil
}

// input: databaseSong
const songInsertQuery = `
INSERT INTO
	songs (
		title,
		artist,
		artists,
		album,
		year,
		genres,
		duration,
		file_key,
		mime_type,
		uploaded_by,
		fingerprint,
		fingerprint_key,
		created_at
	) VALUES (
		:title,
		:artist,
		:artists,
		:album,
		:year,
		:genres,
		:duration,
		:file_key,
		:mime_type,
		:uploaded_by,
		:fingerprint,
		:fingerprint_key,
		:created_at
	);
`

var _ = CheckQuery[databaseSong](songInsertQuery)

// Insert implements library.SongStorage
func (ss SongStorage) Insert(song library.Song) (*library.Song, error) {
	const op errors.Op = "mariadb/SongStorage.Insert"
	handle, deferFn := ss.handle.span(op)
	defer deferFn()

	if song.ID != 0 {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("song already has an id"), song)
	}
	if song.Fingerprint.IsZero() {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("song has no fingerprint"), song)
	}

	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}
	// the database only stores microseconds
	song.CreatedAt = song.CreatedAt.UTC().Truncate(time.Microsecond)

	id, err := namedExecLastInsertId(handle, songInsertQuery, toDatabaseSong(song))
	if err != nil {
		if isDuplicateFingerprint(err) {
			return nil, errors.E(op, errors.SongDuplicate, err, song.Fingerprint)
		}
		return nil, errors.E(op, err, song)
	}

	song.ID = library.SongID(id)
	song = song.Copy()
	return &song, nil
}

// UpdateFields implements library.SongStorage
func (ss SongStorage) UpdateFields(id library.SongID, patch library.SongPatch) (*library.Song, error) {
	const op errors.Op = "mariadb/SongStorage.UpdateFields"
	handle, deferFn := ss.handle.span(op)
	defer deferFn()

	if patch.IsZero() {
		song, err := SongStorage{handle}.Get(id)
		if err != nil {
			return nil, errors.E(op, err)
		}
		return song, nil
	}

	query, args := songUpdateQuery(id, patch)

	handle, tx, err := requireTx(handle)
	if err != nil {
		return nil, errors.E(op, err)
	}
	defer tx.Rollback()

	_, err = handle.Exec(query, args...)
	if err != nil {
		return nil, errors.E(op, err, id)
	}

	// a zero RowsAffected can also mean nothing changed, so check the song
	// exists by reading it back
	song, err := SongStorage{handle}.Get(id)
	if err != nil {
		return nil, errors.E(op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.E(op, errors.TransactionCommit, err, id)
	}
	return song, nil
}

// songUpdateQuery returns an UPDATE query that sets the fields in patch
func songUpdateQuery(id library.SongID, patch library.SongPatch) (string, []any) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+"=?")
		args = append(args, value)
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Artist != nil {
		set("artist", *patch.Artist)
	}
	if patch.Artists != nil {
		set("artists", joinList(*patch.Artists))
	}
	if patch.Album != nil {
		set("album", *patch.Album)
	}
	if patch.Year != nil {
		set("year", *patch.Year)
	}
	if patch.Genres != nil {
		set("genres", patch.Genres.String())
	}
	if patch.Duration != nil {
		set("duration", patch.Duration.Milliseconds())
	}
	if patch.FileKey != nil {
		set("file_key", *patch.FileKey)
	}
	if patch.MimeType != nil {
		set("mime_type", *patch.MimeType)
	}

	args = append(args, id)
	return "UPDATE songs SET " + strings.Join(sets, ", ") + " WHERE id=?;", args
}

// Delete implements library.SongStorage
func (ss SongStorage) Delete(id library.SongID) error {
	const op errors.Op = "mariadb/SongStorage.Delete"
	handle, deferFn := ss.handle.span(op)
	defer deferFn()

	res, err := handle.Exec(`DELETE FROM songs WHERE id=?;`, id)
	if err != nil {
		return errors.E(op, err, id)
	}

	n, err := res.RowsAffected()
	if err != nil {
		panic("RowsAffected not supported")
	}
	if n == 0 {
		return errors.E(op, errors.SongUnknown, id)
	}
	return nil
}
