package mocks

import (
	"bytes"
	"context"
	"io"
	"maps"
	"sync"
	"testing"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/errors"
)

// RollbackTx is a helper function to create a mocked StorageTx
// that expects to be rolled back and not have Commit called
func RollbackTx(t *testing.T) library.StorageTx {
	return &StorageTxMock{
		RollbackFunc: func() error { return nil },
	}
}

// CommitTx is a helper function to create a mocked StorageTx
// that expects to be committed, it errors if a Rollback occurs
// before a Commit
func CommitTx(t *testing.T) library.StorageTx {
	var commitCalled bool

	return &StorageTxMock{
		RollbackFunc: func() error {
			if !commitCalled {
				t.Error("rollback called before commit")
			}
			return nil
		},
		CommitFunc: func() error {
			commitCalled = true
			return nil
		},
	}
}

// CommitErrTx is a helper function to create a mocked StorageTx
// that has the Commit return an error
func CommitErrTx(t *testing.T) library.StorageTx {
	return &StorageTxMock{
		RollbackFunc: func() error {
			return nil
		},
		CommitFunc: func() error {
			return errors.E(errors.Testing)
		},
	}
}

// NotUsedTx is a mocked StorageTx that doesn't expect to be used at all
func NotUsedTx(t *testing.T) library.StorageTx {
	return new(StorageTxMock)
}

// SongStore is an in-memory library.SongStorage with the same semantics as
// the real implementations
type SongStore struct {
	mu     sync.Mutex
	lastID library.SongID
	songs  map[library.SongID]library.Song
}

// NewSongStore returns an empty SongStore
func NewSongStore() *SongStore {
	return &SongStore{
		songs: make(map[library.SongID]library.Song),
	}
}

// StorageService returns a StorageServiceMock that serves s
func (s *SongStore) StorageService(t *testing.T) *StorageServiceMock {
	return &StorageServiceMock{
		SongFunc: func(context.Context) library.SongStorage {
			return s
		},
		SongTxFunc: func(_ context.Context, tx library.StorageTx) (library.SongStorage, library.StorageTx, error) {
			if tx == nil {
				tx = &StorageTxMock{
					CommitFunc:   func() error { return nil },
					RollbackFunc: func() error { return nil },
				}
			}
			return s, tx, nil
		},
		CloseFunc: func() error {
			return nil
		},
	}
}

// Songs returns a copy of all songs in the store
func (s *SongStore) Songs() map[library.SongID]library.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.songs)
}

func (s *SongStore) Get(id library.SongID) (*library.Song, error) {
	const op errors.Op = "mocks/SongStore.Get"
	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok := s.songs[id]
	if !ok {
		return nil, errors.E(op, errors.SongUnknown, id)
	}
	song = song.Copy()
	return &song, nil
}

func (s *SongStore) FromFingerprint(fp library.Fingerprint) (*library.Song, error) {
	const op errors.Op = "mocks/SongStore.FromFingerprint"
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, song := range s.songs {
		if song.Fingerprint == fp {
			song = song.Copy()
			return &song, nil
		}
	}
	return nil, errors.E(op, errors.SongUnknown, fp)
}

func (s *SongStore) Insert(song library.Song) (*library.Song, error) {
	const op errors.Op = "mocks/SongStore.Insert"
	s.mu.Lock()
	defer s.mu.Unlock()

	if song.ID != 0 {
		return nil, errors.E(op, errors.InvalidArgument, song)
	}
	for _, other := range s.songs {
		if other.Fingerprint == song.Fingerprint {
			return nil, errors.E(op, errors.SongDuplicate, song)
		}
	}

	s.lastID++
	song = song.Copy()
	song.ID = s.lastID
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now()
	}
	s.songs[song.ID] = song
	song = song.Copy()
	return &song, nil
}

func (s *SongStore) UpdateFields(id library.SongID, patch library.SongPatch) (*library.Song, error) {
	const op errors.Op = "mocks/SongStore.UpdateFields"
	s.mu.Lock()
	defer s.mu.Unlock()

	song, ok := s.songs[id]
	if !ok {
		return nil, errors.E(op, errors.SongUnknown, id)
	}
	patch.Apply(&song)
	s.songs[id] = song
	song = song.Copy()
	return &song, nil
}

func (s *SongStore) Delete(id library.SongID) error {
	const op errors.Op = "mocks/SongStore.Delete"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.songs[id]; !ok {
		return errors.E(op, errors.SongUnknown, id)
	}
	delete(s.songs, id)
	return nil
}

// BlobStore is an in-memory library.BlobStorage
type BlobStore struct {
	mu    sync.Mutex
	blobs map[library.BlobKey]library.BlobInfo
	data  map[library.BlobKey][]byte
}

// NewBlobStore returns an empty BlobStore
func NewBlobStore() *BlobStore {
	return &BlobStore{
		blobs: make(map[library.BlobKey]library.BlobInfo),
		data:  make(map[library.BlobKey][]byte),
	}
}

// Keys returns all keys in the store
func (b *BlobStore) Keys() []library.BlobKey {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []library.BlobKey
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys
}

func (b *BlobStore) Put(ctx context.Context, key library.BlobKey, data []byte, contentType string, attrs library.BlobAttrs) (library.BlobKey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = bytes.Clone(data)
	b.blobs[key] = library.BlobInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		CreatedAt:   time.Now(),
		Attrs:       maps.Clone(attrs),
	}
	return key, nil
}

func (b *BlobStore) Get(ctx context.Context, key library.BlobKey, br *library.ByteRange) (io.ReadCloser, error) {
	const op errors.Op = "mocks/BlobStore.Get"
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.data[key]
	if !ok {
		return nil, errors.E(op, errors.BlobUnknown, key)
	}
	if br != nil {
		end := int64(len(data))
		if br.End >= 0 && br.End+1 < end {
			end = br.End + 1
		}
		data = data[min(br.Start, end):end]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *BlobStore) Exists(ctx context.Context, key library.BlobKey) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.data[key]
	return ok, nil
}

func (b *BlobStore) Stat(ctx context.Context, key library.BlobKey) (*library.BlobInfo, error) {
	const op errors.Op = "mocks/BlobStore.Stat"
	b.mu.Lock()
	defer b.mu.Unlock()

	info, ok := b.blobs[key]
	if !ok {
		return nil, errors.E(op, errors.BlobUnknown, key)
	}
	info.Attrs = maps.Clone(info.Attrs)
	return &info, nil
}

func (b *BlobStore) Delete(ctx context.Context, key library.BlobKey) error {
	const op errors.Op = "mocks/BlobStore.Delete"
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.data[key]; !ok {
		return errors.E(op, errors.BlobUnknown, key)
	}
	delete(b.data, key)
	delete(b.blobs, key)
	return nil
}
