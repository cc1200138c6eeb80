package mongodb

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// songDocument is the type stored in the songs collection
type songDocument struct {
	ID      library.SongID `bson:"_id"`
	Title   string         `bson:"title"`
	Artist  string         `bson:"artist"`
	Artists []string       `bson:"artists"`
	Album   string         `bson:"album"`
	Year    int            `bson:"year"`
	Genres  []string       `bson:"genres"`
	// Duration in milliseconds
	Duration       int64     `bson:"duration"`
	FileKey        string    `bson:"file_key"`
	MimeType       string    `bson:"mime_type"`
	UploadedBy     string    `bson:"uploaded_by"`
	Fingerprint    string    `bson:"fingerprint"`
	FingerprintKey string    `bson:"fingerprint_key"`
	CreatedAt      time.Time `bson:"created_at"`
}

func (sd songDocument) ToSong() (library.Song, error) {
	fp, err := library.ParseFingerprint(sd.Fingerprint)
	if err != nil {
		return library.Song{}, err
	}

	var artists []string
	if len(sd.Artists) > 0 {
		artists = sd.Artists
	}

	return library.Song{
		ID:          sd.ID,
		Title:       sd.Title,
		Artist:      sd.Artist,
		Artists:     artists,
		Album:       sd.Album,
		Year:        sd.Year,
		Genres:      library.Genres(sd.Genres).Normalize(),
		Duration:    time.Duration(sd.Duration) * time.Millisecond,
		FileKey:     library.BlobKey(sd.FileKey),
		MimeType:    sd.MimeType,
		UploadedBy:  sd.UploadedBy,
		Fingerprint: fp,
		CreatedAt:   sd.CreatedAt,
	}, nil
}

func toSongDocument(song library.Song) songDocument {
	return songDocument{
		ID:             song.ID,
		Title:          song.Title,
		Artist:         song.Artist,
		Artists:        nonNil(song.Artists),
		Album:          song.Album,
		Year:           song.Year,
		Genres:         nonNil(song.Genres.Normalize()),
		Duration:       song.Duration.Milliseconds(),
		FileKey:        string(song.FileKey),
		MimeType:       song.MimeType,
		UploadedBy:     song.UploadedBy,
		Fingerprint:    song.Fingerprint.String(),
		FingerprintKey: fingerprintKey(song.Fingerprint),
		CreatedAt:      song.CreatedAt,
	}
}

// nonNil makes sure an empty list is stored as an empty array and not null
func nonNil(l []string) []string {
	if l == nil {
		return []string{}
	}
	return l
}

// fingerprintKey returns the value of the unique fingerprint_key field
func fingerprintKey(fp library.Fingerprint) string {
	sum := sha256.Sum256([]byte(fp.String()))
	return hex.EncodeToString(sum[:])
}

// SongStorage implements library.SongStorage
type SongStorage struct {
	ctx context.Context
	db  *mongo.Database
}

func (ss SongStorage) songs() *mongo.Collection {
	return ss.db.Collection(songCollection)
}

func (ss SongStorage) findOne(op errors.Op, filter bson.D) (*library.Song, error) {
	var doc songDocument
	err := ss.songs().FindOne(ss.ctx, filter).Decode(&doc)
	if err != nil {
		if errors.IsE(err, mongo.ErrNoDocuments) {
			return nil, errors.E(op, errors.SongUnknown)
		}
		return nil, errors.E(op, err)
	}

	song, err := doc.ToSong()
	if err != nil {
		return nil, errors.E(op, err, doc.ID)
	}
	return &song, nil
}

// Get implements library.SongStorage
func (ss SongStorage) Get(id library.SongID) (*library.Song, error) {
	const op errors.Op = "mongodb/SongStorage.Get"
	zerolog.Ctx(ss.ctx).Debug().Ctx(ss.ctx).Str("op", string(op)).Uint64("id", uint64(id)).Msg("find")

	song, err := ss.findOne(op, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, errors.E(op, err, id)
	}
	return song, nil
}

// FromFingerprint implements library.SongStorage
func (ss SongStorage) FromFingerprint(fp library.Fingerprint) (*library.Song, error) {
	const op errors.Op = "mongodb/SongStorage.FromFingerprint"
	zerolog.Ctx(ss.ctx).Debug().Ctx(ss.ctx).Str("op", string(op)).Str("fingerprint", fp.Short()).Msg("find")

	song, err := ss.findOne(op, bson.D{{Key: "fingerprint_key", Value: fingerprintKey(fp)}})
	if err != nil {
		return nil, errors.E(op, err, fp)
	}
	return song, nil
}

// nextID returns the next free SongID from the counters collection
func (ss SongStorage) nextID() (library.SongID, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := ss.db.Collection(counterCollection).FindOneAndUpdate(ss.ctx,
		bson.D{{Key: "_id", Value: songCollection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: 1}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return library.SongID(counter.Seq), nil
}

// Insert implements library.SongStorage
func (ss SongStorage) Insert(song library.Song) (*library.Song, error) {
	const op errors.Op = "mongodb/SongStorage.Insert"
	zerolog.Ctx(ss.ctx).Debug().Ctx(ss.ctx).Str("op", string(op)).Str("fingerprint", song.Fingerprint.Short()).Msg("insert")

	if song.ID != 0 {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("song already has an id"), song)
	}
	if song.Fingerprint.IsZero() {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("song has no fingerprint"), song)
	}

	// check for an existing song first so that we don't waste an id on a
	// duplicate, the unique index is what actually guarantees it
	_, err := ss.FromFingerprint(song.Fingerprint)
	if err == nil {
		return nil, errors.E(op, errors.SongDuplicate, song.Fingerprint)
	}
	if !errors.Is(errors.SongUnknown, err) {
		return nil, errors.E(op, err)
	}

	id, err := ss.nextID()
	if err != nil {
		return nil, errors.E(op, err, song)
	}

	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}
	// bson only stores milliseconds
	song.CreatedAt = song.CreatedAt.UTC().Truncate(time.Millisecond)
	song.ID = id

	_, err = ss.songs().InsertOne(ss.ctx, toSongDocument(song))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "fingerprint_key") {
			return nil, errors.E(op, errors.SongDuplicate, err, song.Fingerprint)
		}
		return nil, errors.E(op, err, song)
	}

	song = song.Copy()
	return &song, nil
}

// songUpdate returns the $set document for the fields in patch
func songUpdate(patch library.SongPatch) bson.D {
	var set bson.D
	add := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Artist != nil {
		add("artist", *patch.Artist)
	}
	if patch.Artists != nil {
		add("artists", nonNil(*patch.Artists))
	}
	if patch.Album != nil {
		add("album", *patch.Album)
	}
	if patch.Year != nil {
		add("year", *patch.Year)
	}
	if patch.Genres != nil {
		add("genres", nonNil(patch.Genres.Normalize()))
	}
	if patch.Duration != nil {
		add("duration", patch.Duration.Milliseconds())
	}
	if patch.FileKey != nil {
		add("file_key", string(*patch.FileKey))
	}
	if patch.MimeType != nil {
		add("mime_type", *patch.MimeType)
	}

	return bson.D{{Key: "$set", Value: set}}
}

// UpdateFields implements library.SongStorage
func (ss SongStorage) UpdateFields(id library.SongID, patch library.SongPatch) (*library.Song, error) {
	const op errors.Op = "mongodb/SongStorage.UpdateFields"
	zerolog.Ctx(ss.ctx).Debug().Ctx(ss.ctx).Str("op", string(op)).Uint64("id", uint64(id)).Msg("update")

	if patch.IsZero() {
		song, err := ss.Get(id)
		if err != nil {
			return nil, errors.E(op, err)
		}
		return song, nil
	}

	var doc songDocument
	err := ss.songs().FindOneAndUpdate(ss.ctx,
		bson.D{{Key: "_id", Value: id}},
		songUpdate(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.IsE(err, mongo.ErrNoDocuments) {
			return nil, errors.E(op, errors.SongUnknown, id)
		}
		return nil, errors.E(op, err, id)
	}

	song, err := doc.ToSong()
	if err != nil {
		return nil, errors.E(op, err, id)
	}
	return &song, nil
}

// Delete implements library.SongStorage
func (ss SongStorage) Delete(id library.SongID) error {
	const op errors.Op = "mongodb/SongStorage.Delete"
	zerolog.Ctx(ss.ctx).Debug().Ctx(ss.ctx).Str("op", string(op)).Uint64("id", uint64(id)).Msg("delete")

	res, err := ss.songs().DeleteOne(ss.ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return errors.E(op, err, id)
	}
	if res.DeletedCount == 0 {
		return errors.E(op, errors.SongUnknown, id)
	}
	return nil
}
