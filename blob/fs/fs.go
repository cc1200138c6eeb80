// Package fs implements library.BlobStorage on top of a filesystem
package fs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/blob"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v4"
)

const NAME = "fs"

// sidecarExt is the extension of the file holding the attributes of a blob
const sidecarExt = ".meta"

func init() {
	blob.Register(NAME, Open)
}

// Open returns a Store rooted at the configured blob path on the OS filesystem
func Open(ctx context.Context, cfg config.Config) (library.BlobStorage, error) {
	const op errors.Op = "blob/fs.Open"

	root := cfg.Conf().Blob.Path
	fsys := afero.NewOsFs()
	if err := fsys.MkdirAll(root, 0755); err != nil {
		return nil, errors.E(op, err, errors.Info(root))
	}
	return New(fsys, root), nil
}

// New returns a Store that keeps its blobs in the root directory of fsys
func New(fsys afero.Fs, root string) *Store {
	return &Store{
		fs:   fsys,
		root: root,
	}
}

// Store is a library.BlobStorage that stores each blob as a file, the
// attributes of a blob are stored next to it in a msgpack encoded file
type Store struct {
	fs   afero.Fs
	root string
}

// sidecar is the encoded form of the attributes of a blob
type sidecar struct {
	ContentType string            `msgpack:"content_type"`
	Size        int64             `msgpack:"size"`
	CreatedAt   time.Time         `msgpack:"created_at"`
	Attrs       map[string]string `msgpack:"attrs"`
}

func (s *Store) path(key library.BlobKey) string {
	return filepath.Join(s.root, string(key))
}

func (s *Store) sidecarPath(key library.BlobKey) string {
	return s.path(key) + sidecarExt
}

// checkKey makes sure key can't escape the root or collide with a sidecar
func checkKey(key library.BlobKey) error {
	k := string(key)
	switch {
	case k == "", strings.HasPrefix(k, "."):
	case strings.ContainsAny(k, `/\`):
	case strings.HasSuffix(k, sidecarExt):
	default:
		return nil
	}
	return errors.E(errors.InvalidArgument, errors.Info("invalid blob key"), key)
}

func (s *Store) Put(ctx context.Context, key library.BlobKey, data []byte, contentType string, attrs library.BlobAttrs) (library.BlobKey, error) {
	const op errors.Op = "blob/fs.Store.Put"

	if err := checkKey(key); err != nil {
		return "", errors.E(op, err)
	}

	if err := s.fs.MkdirAll(s.root, 0755); err != nil {
		return "", errors.E(op, err)
	}

	err := s.writeFile(s.path(key), data)
	if err != nil {
		return "", errors.E(op, err, key)
	}

	meta, err := msgpack.Marshal(sidecar{
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now().UTC(),
		Attrs:       attrs,
	})
	if err == nil {
		err = s.writeFile(s.sidecarPath(key), meta)
	}
	if err != nil {
		// a blob without its attributes is only half stored
		_ = s.fs.Remove(s.path(key))
		return "", errors.E(op, err, key)
	}

	zerolog.Ctx(ctx).Debug().
		Str("key", key.String()).
		Str("size", humanize.IBytes(uint64(len(data)))).
		Str("content_type", contentType).
		Msg("stored blob")
	return key, nil
}

// writeFile writes data to a temporary file and renames it into place so that
// readers never see a partial file
func (s *Store) writeFile(path string, data []byte) error {
	f, err := afero.TempFile(s.fs, filepath.Dir(path), ".put-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	_, err = io.Copy(f, bytes.NewReader(data))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}

	if err = s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key library.BlobKey, br *library.ByteRange) (io.ReadCloser, error) {
	const op errors.Op = "blob/fs.Store.Get"

	if err := checkKey(key); err != nil {
		return nil, errors.E(op, err)
	}
	if br != nil && (br.Start < 0 || (br.End >= 0 && br.End < br.Start)) {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("invalid byte range"), key)
	}

	f, err := s.fs.Open(s.path(key))
	if err != nil {
		if errors.IsE(err, os.ErrNotExist) {
			return nil, errors.E(op, errors.BlobUnknown, key)
		}
		return nil, errors.E(op, err, key)
	}

	if br == nil {
		return f, nil
	}

	if _, err = f.Seek(br.Start, io.SeekStart); err != nil {
		f.Close()
		return nil, errors.E(op, err, key)
	}
	if br.End < 0 {
		return f, nil
	}

	return struct {
		io.Reader
		io.Closer
	}{io.LimitReader(f, br.Length()), f}, nil
}

func (s *Store) Exists(ctx context.Context, key library.BlobKey) (bool, error) {
	const op errors.Op = "blob/fs.Store.Exists"

	if err := checkKey(key); err != nil {
		return false, errors.E(op, err)
	}

	ok, err := afero.Exists(s.fs, s.path(key))
	if err != nil {
		return false, errors.E(op, err, key)
	}
	return ok, nil
}

func (s *Store) Stat(ctx context.Context, key library.BlobKey) (*library.BlobInfo, error) {
	const op errors.Op = "blob/fs.Store.Stat"

	if err := checkKey(key); err != nil {
		return nil, errors.E(op, err)
	}

	fi, err := s.fs.Stat(s.path(key))
	if err != nil {
		if errors.IsE(err, os.ErrNotExist) {
			return nil, errors.E(op, errors.BlobUnknown, key)
		}
		return nil, errors.E(op, err, key)
	}

	info := &library.BlobInfo{
		Key:       key,
		Size:      fi.Size(),
		CreatedAt: fi.ModTime(),
	}

	meta, err := afero.ReadFile(s.fs, s.sidecarPath(key))
	if errors.IsE(err, os.ErrNotExist) {
		// placed here by something other than us
		return info, nil
	}
	if err != nil {
		return nil, errors.E(op, err, key)
	}

	var sc sidecar
	if err = msgpack.Unmarshal(meta, &sc); err != nil {
		return nil, errors.E(op, err, key)
	}
	info.ContentType = sc.ContentType
	info.CreatedAt = sc.CreatedAt
	info.Attrs = sc.Attrs
	return info, nil
}

func (s *Store) Delete(ctx context.Context, key library.BlobKey) error {
	const op errors.Op = "blob/fs.Store.Delete"

	if err := checkKey(key); err != nil {
		return errors.E(op, err)
	}

	err := s.fs.Remove(s.path(key))
	if err != nil {
		if errors.IsE(err, os.ErrNotExist) {
			return errors.E(op, errors.BlobUnknown, key)
		}
		return errors.E(op, err, key)
	}

	err = s.fs.Remove(s.sidecarPath(key))
	if err != nil && !errors.IsE(err, os.ErrNotExist) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key.String()).Msg("failed to remove blob attributes")
	}
	return nil
}
