package library

import (
	"context"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
)

const (
	LimitArtistLength = 500
	LimitAlbumLength  = 200
	LimitTitleLength  = 200
	LimitGenreLength  = 64
	// LimitGenres is the maximum amount of genres stored on a song
	LimitGenres = 5
)

const (
	// UnknownArtist is the placeholder used when no artist could be resolved
	UnknownArtist = "Unknown Artist"
	// UnknownTitle is the placeholder used when no title could be resolved
	UnknownTitle = "Unknown Title"
)

// SongID is a songs identifier
type SongID uint64

func ParseSongID(s string) (SongID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return SongID(id), nil
}

// Scan implements sql.Scanner
func (s *SongID) Scan(src any) error {
	// Scanner is only implemented so that null values are supported
	// without introducing an intermediate type
	if src == nil {
		return nil
	}

	var err error
	switch v := src.(type) {
	case int64:
		*s = SongID(v)
	case uint64: // mysql driver sometimes gives you this
		*s = SongID(v)
	case []byte: // decimals
		*s, err = ParseSongID(string(v))
	case string:
		*s, err = ParseSongID(v)
	default:
		err = fmt.Errorf("unsupported type in SongID.Scan: %T", src)
	}

	return err
}

func (s SongID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// FingerprintKind is the kind of identity a Fingerprint carries
type FingerprintKind uint8

const (
	FingerprintUnknown FingerprintKind = iota
	// FingerprintAcoustic is a perceptual fingerprint produced by an external tool
	FingerprintAcoustic
	// FingerprintHash is a sha256 of the raw file contents
	FingerprintHash
)

const (
	fingerprintAcousticPrefix = "acoustic:"
	fingerprintHashPrefix     = "sha256:"
)

func (k FingerprintKind) String() string {
	switch k {
	case FingerprintAcoustic:
		return "acoustic"
	case FingerprintHash:
		return "hash"
	}
	return "unknown"
}

// Fingerprint is the identity of an audio file, exactly one of the kinds is
// ever stored per song
type Fingerprint struct {
	Kind FingerprintKind
	Data string
}

// NewAcousticFingerprint returns an acoustic Fingerprint with the value given
func NewAcousticFingerprint(value string) Fingerprint {
	return Fingerprint{
		Kind: FingerprintAcoustic,
		Data: value,
	}
}

// NewHashFingerprint returns the content-hash Fingerprint of data
func NewHashFingerprint(data []byte) Fingerprint {
	sum := sha256.Sum256(data)
	return Fingerprint{
		Kind: FingerprintHash,
		Data: hex.EncodeToString(sum[:]),
	}
}

// ParseFingerprint reverts Fingerprint.String
func ParseFingerprint(s string) (Fingerprint, error) {
	switch {
	case strings.HasPrefix(s, fingerprintAcousticPrefix):
		value := strings.TrimPrefix(s, fingerprintAcousticPrefix)
		if value == "" {
			return Fingerprint{}, fmt.Errorf("empty acoustic fingerprint")
		}
		return NewAcousticFingerprint(value), nil
	case strings.HasPrefix(s, fingerprintHashPrefix):
		value := strings.TrimPrefix(s, fingerprintHashPrefix)
		b, err := hex.DecodeString(value)
		if err != nil {
			return Fingerprint{}, err
		}
		if len(b) != sha256.Size {
			return Fingerprint{}, fmt.Errorf("invalid hash fingerprint length: %d", len(b))
		}
		return Fingerprint{Kind: FingerprintHash, Data: value}, nil
	}
	return Fingerprint{}, fmt.Errorf("unknown fingerprint format: %q", s)
}

// String returns the stored form of the fingerprint, which is prefixed
// by its kind
func (f Fingerprint) String() string {
	switch f.Kind {
	case FingerprintAcoustic:
		return fingerprintAcousticPrefix + f.Data
	case FingerprintHash:
		return fingerprintHashPrefix + f.Data
	}
	return ""
}

// Short returns a shortened form of String suitable for logging
func (f Fingerprint) Short() string {
	s := f.String()
	if len(s) > 24 {
		return s[:24]
	}
	return s
}

func (f Fingerprint) IsZero() bool {
	return f.Kind == FingerprintUnknown || f.Data == ""
}

// Value implements sql/driver.Valuer
func (f Fingerprint) Value() (driver.Value, error) {
	if f.IsZero() {
		return nil, nil
	}
	return f.String(), nil
}

// Scan implements sql.Scanner
func (f *Fingerprint) Scan(src any) error {
	var err error
	switch v := src.(type) {
	case nil:
		*f = Fingerprint{}
	case []byte:
		*f, err = ParseFingerprint(string(v))
	case string:
		*f, err = ParseFingerprint(v)
	default:
		err = fmt.Errorf("unsupported type in Fingerprint.Scan: %T", src)
	}
	return err
}

// MarshalText implements encoding.TextMarshaler
func (f Fingerprint) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Fingerprint) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = Fingerprint{}
		return nil
	}
	fp, err := ParseFingerprint(string(b))
	if err != nil {
		return err
	}
	*f = fp
	return nil
}

// Genres is the canonical representation of a genre field, an ordered list
// of genre names
type Genres []string

// ParseGenres parses a stored delimited genre string, both the current
// semicolon and the legacy comma delimited form are accepted
func ParseGenres(s string) Genres {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ','
	})
	return Genres(fields).Normalize()
}

// Normalize trims all entries, removes empty and duplicate entries and
// returns the result, the order of first appearance is kept
func (g Genres) Normalize() Genres {
	if len(g) == 0 {
		return nil
	}

	res := make(Genres, 0, len(g))
	for _, genre := range g {
		genre = strings.TrimSpace(genre)
		if genre == "" || slices.Contains(res, genre) {
			continue
		}
		res = append(res, genre)
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

// Equal compares g and o after normalization
func (g Genres) Equal(o Genres) bool {
	return slices.Equal(g.Normalize(), o.Normalize())
}

// String returns the stored form of the genres
func (g Genres) String() string {
	return strings.Join(g.Normalize(), "; ")
}

// Metadata is the set of descriptive fields of a song as produced by a single
// source, zero values mean the source did not supply that field
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Year     int
	Genres   Genres
	Duration time.Duration
}

func (m Metadata) IsZero() bool {
	return m.Title == "" &&
		m.Artist == "" &&
		m.Album == "" &&
		m.Year == 0 &&
		len(m.Genres) == 0 &&
		m.Duration == 0
}

// MergedMetadata is the result of merging all metadata sources together
//
// Title and Artist are never empty, and Artists contains at least one entry
type MergedMetadata struct {
	Metadata
	// Artists is the parsed form of Metadata.Artist
	Artists []string
}

// EqualTo compares the fields that make up the identity of the metadata, this
// is title, artist, album, year and genres
func (m Metadata) EqualTo(o Metadata) bool {
	return m.Title == o.Title &&
		m.Artist == o.Artist &&
		m.Album == o.Album &&
		m.Year == o.Year &&
		m.Genres.Equal(o.Genres)
}

// Song is a song in the library, it always has a file in the blob store
// associated with it unless something deleted it out-of-band
type Song struct {
	ID SongID
	// Title is the title of the song
	Title string
	// Artist is the display string of all the artists
	Artist string
	// Artists is the parsed form of Artist
	Artists []string
	// Album is the album this song is from, can be empty
	Album string
	// Year is the release year of the song, can be zero
	Year int
	// Genres of the song
	Genres Genres
	// Duration is the length of the song, can be zero
	Duration time.Duration

	// FileKey is the key of the audio file in the blob store
	FileKey BlobKey
	// MimeType is the content type of the audio file
	MimeType string
	// UploadedBy is the identity of the uploader
	UploadedBy string
	// Fingerprint is the identity of the audio file
	Fingerprint Fingerprint
	// CreatedAt is the time the song was first inserted
	CreatedAt time.Time
}

// Metadata returns the metadata stored on the song
func (s Song) Metadata() Metadata {
	return Metadata{
		Title:    s.Title,
		Artist:   s.Artist,
		Album:    s.Album,
		Year:     s.Year,
		Genres:   s.Genres,
		Duration: s.Duration,
	}
}

// Copy copies the song and returns it
func (s Song) Copy() Song {
	s.Artists = slices.Clone(s.Artists)
	s.Genres = slices.Clone(s.Genres)
	return s
}

// SongPatch is a set of fields to update on a Song, a nil field is left
// untouched
type SongPatch struct {
	Title    *string
	Artist   *string
	Artists  *[]string
	Album    *string
	Year     *int
	Genres   *Genres
	Duration *time.Duration
	FileKey  *BlobKey
	MimeType *string
}

// IsZero returns true if the patch would not update anything
func (p SongPatch) IsZero() bool {
	return p == SongPatch{}
}

// Apply applies the patch to the song given
func (p SongPatch) Apply(s *Song) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Artist != nil {
		s.Artist = *p.Artist
	}
	if p.Artists != nil {
		s.Artists = slices.Clone(*p.Artists)
	}
	if p.Album != nil {
		s.Album = *p.Album
	}
	if p.Year != nil {
		s.Year = *p.Year
	}
	if p.Genres != nil {
		s.Genres = slices.Clone(*p.Genres)
	}
	if p.Duration != nil {
		s.Duration = *p.Duration
	}
	if p.FileKey != nil {
		s.FileKey = *p.FileKey
	}
	if p.MimeType != nil {
		s.MimeType = *p.MimeType
	}
}

// MetadataPatch returns a patch that updates all metadata fields to the
// ones in m
func MetadataPatch(m MergedMetadata) SongPatch {
	artists := slices.Clone(m.Artists)
	genres := slices.Clone(m.Genres)
	p := SongPatch{
		Title:   &m.Title,
		Artist:  &m.Artist,
		Artists: &artists,
		Album:   &m.Album,
		Year:    &m.Year,
		Genres:  &genres,
	}
	if m.Duration > 0 {
		p.Duration = &m.Duration
	}
	return p
}

// AudioBlob is an uploaded audio file
type AudioBlob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Stem returns the filename without its directory and extension
func (b AudioBlob) Stem() string {
	name := path.Base(strings.ReplaceAll(b.Filename, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(name, path.Ext(name)))
}

// audioExtensions maps file extensions to content types for uploads that
// don't carry a usable content type
var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
}

// DetectContentType returns the audio content type of b. The declared
// ContentType is used if it is an audio type, otherwise the file extension
// and the contents are tried. It returns false if b is not audio
func (b AudioBlob) DetectContentType() (string, bool) {
	candidates := []string{
		b.ContentType,
		audioExtensions[strings.ToLower(path.Ext(b.Filename))],
		http.DetectContentType(b.Data),
	}
	for _, ct := range candidates {
		ct, _, _ = strings.Cut(ct, ";")
		ct = strings.ToLower(strings.TrimSpace(ct))
		if strings.HasPrefix(ct, "audio/") || ct == "application/ogg" {
			return ct, true
		}
	}
	return "", false
}

// BlobKey is a key into the blob store
type BlobKey string

// blobKeyExt is the form an extension needs to be kept in a BlobKey
var blobKeyExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// NewBlobKey returns a new unique BlobKey, the extension of filename is kept
// if it is short and alphanumeric
func NewBlobKey(filename string) BlobKey {
	ext := strings.ToLower(path.Ext(filename))
	if !blobKeyExt.MatchString(ext) || ext == ".meta" {
		ext = ""
	}
	return BlobKey(xid.New().String() + ext)
}

func (k BlobKey) String() string {
	return string(k)
}

// ByteRange is an inclusive range of bytes
type ByteRange struct {
	Start int64
	// End is the last byte to include, a negative End means until the
	// end of the blob
	End int64
}

// Length returns the amount of bytes in the range, or -1 if the range is
// open-ended
func (r ByteRange) Length() int64 {
	if r.End < 0 {
		return -1
	}
	return r.End - r.Start + 1
}

// BlobAttrs is extra information stored alongside a blob
type BlobAttrs map[string]string

// BlobInfo describes a stored blob
type BlobInfo struct {
	Key         BlobKey
	Size        int64
	ContentType string
	CreatedAt   time.Time
	Attrs       BlobAttrs
}

// BlobStorage stores raw audio files
type BlobStorage interface {
	// Put stores data under the key given
	Put(ctx context.Context, key BlobKey, data []byte, contentType string, attrs BlobAttrs) (BlobKey, error)
	// Get returns the contents of the blob, or a range of it if br is non-nil
	Get(ctx context.Context, key BlobKey, br *ByteRange) (io.ReadCloser, error)
	// Exists returns true if a blob exists under the key given
	Exists(ctx context.Context, key BlobKey) (bool, error)
	// Stat returns information about the blob with the key given
	Stat(ctx context.Context, key BlobKey) (*BlobInfo, error)
	// Delete removes the blob with the key given
	Delete(ctx context.Context, key BlobKey) error
}

// TagExtractor extracts embedded metadata from audio files
type TagExtractor interface {
	// Extract returns the embedded metadata in data, it returns an empty
	// Metadata if nothing could be parsed
	Extract(ctx context.Context, data []byte) Metadata
}

// FingerprintGenerator computes the identity of audio files
type FingerprintGenerator interface {
	// Generate returns the fingerprint of data, it always returns a usable
	// fingerprint
	Generate(ctx context.Context, data []byte) Fingerprint
}

// MetadataLookup looks up canonical metadata from an online service
type MetadataLookup interface {
	// Lookup returns the metadata found for the title and artist given, or
	// nil if nothing was found
	Lookup(ctx context.Context, title, artist string) (*Metadata, error)
}

type StorageTx interface {
	Commit() error
	Rollback() error
}

// StorageService is an interface containing all *StorageService interfaces
type StorageService interface {
	SongStorageService
	// Close closes the storage service and cleans up any resources
	Close() error
}

// SongStorageService is a service able to supply a SongStorage
type SongStorageService interface {
	Song(context.Context) SongStorage
	// SongTx returns a SongStorage that runs all its operations in the
	// transaction given, a new transaction is started if it is nil
	SongTx(context.Context, StorageTx) (SongStorage, StorageTx, error)
}

// SongStorage stores song records
type SongStorage interface {
	// Get returns the song with the SongID given
	Get(SongID) (*Song, error)
	// FromFingerprint returns the song with the Fingerprint given
	FromFingerprint(Fingerprint) (*Song, error)
	// Insert inserts a new song, errors if ID is set or if a song with the same
	// fingerprint already exists
	Insert(Song) (*Song, error)
	// UpdateFields updates the fields set in the patch on the song with the
	// SongID given and returns the updated song
	UpdateFields(SongID, SongPatch) (*Song, error)
	// Delete removes a song from storage
	Delete(SongID) error
}
