package fs

import (
	"context"
	"io"
	"strings"
	"testing"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/blob"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoot = "/kotone/testing/music"

func readAll(t *testing.T, rc io.ReadCloser) []byte {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := New(fsys, testRoot)

	key, err := s.Put(ctx, "abc.mp3", []byte("hello world"), "audio/mpeg", library.BlobAttrs{
		"filename": "hello.mp3",
	})
	require.NoError(t, err)
	assert.Equal(t, library.BlobKey("abc.mp3"), key)

	rc, err := s.Get(ctx, key, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), readAll(t, rc))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	info, err := s.Stat(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, info.Key)
	assert.EqualValues(t, 11, info.Size)
	assert.Equal(t, "audio/mpeg", info.ContentType)
	assert.Equal(t, "hello.mp3", info.Attrs["filename"])
	assert.False(t, info.CreatedAt.IsZero())

	// only the blob and its attributes should be left behind
	files, err := afero.ReadDir(fsys, testRoot)
	require.NoError(t, err)
	var names []string
	for _, fi := range files {
		names = append(names, fi.Name())
	}
	assert.ElementsMatch(t, []string{"abc.mp3", "abc.mp3" + sidecarExt}, names)
}

func TestGetRange(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testRoot)
	_, err := s.Put(ctx, "range.ogg", []byte("0123456789"), "audio/ogg", nil)
	require.NoError(t, err)

	cases := []struct {
		name     string
		br       library.ByteRange
		expected string
	}{
		{"full", library.ByteRange{Start: 0, End: -1}, "0123456789"},
		{"prefix", library.ByteRange{Start: 0, End: 3}, "0123"},
		{"middle", library.ByteRange{Start: 2, End: 5}, "2345"},
		{"suffix", library.ByteRange{Start: 7, End: -1}, "789"},
		{"single", library.ByteRange{Start: 4, End: 4}, "4"},
		{"past end", library.ByteRange{Start: 8, End: 100}, "89"},
		{"start past end", library.ByteRange{Start: 20, End: -1}, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			br := c.br
			rc, err := s.Get(ctx, "range.ogg", &br)
			require.NoError(t, err)
			assert.Equal(t, c.expected, string(readAll(t, rc)))
		})
	}

	t.Run("inverted", func(t *testing.T) {
		_, err := s.Get(ctx, "range.ogg", &library.ByteRange{Start: 5, End: 2})
		assert.True(t, errors.Is(errors.InvalidArgument, err))
	})
	t.Run("negative start", func(t *testing.T) {
		_, err := s.Get(ctx, "range.ogg", &library.ByteRange{Start: -1, End: 2})
		assert.True(t, errors.Is(errors.InvalidArgument, err))
	})
}

func TestGetRangeProperty(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testRoot)

	p := gopter.NewProperties(nil)
	p.Property("range returns the requested slice", prop.ForAll(func(data []byte, start, end int64) bool {
		_, err := s.Put(ctx, "prop.bin", data, "application/octet-stream", nil)
		if err != nil {
			return false
		}

		br := library.ByteRange{Start: start, End: end}
		rc, err := s.Get(ctx, "prop.bin", &br)
		if end >= 0 && end < start {
			return errors.Is(errors.InvalidArgument, err)
		}
		if err != nil {
			return false
		}
		defer rc.Close()
		got, err := io.ReadAll(rc)
		if err != nil {
			return false
		}

		n := int64(len(data))
		lo, hi := min(start, n), n
		if end >= 0 {
			hi = min(end+1, n)
		}
		hi = max(hi, lo)
		return string(got) == string(data[lo:hi])
	},
		gen.SliceOf(gen.UInt8()),
		gen.Int64Range(0, 128),
		gen.Int64Range(-1, 128),
	))
	p.TestingRun(t)
}

func TestMissing(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testRoot)

	_, err := s.Get(ctx, "missing.mp3", nil)
	assert.True(t, errors.Is(errors.BlobUnknown, err))

	_, err = s.Stat(ctx, "missing.mp3")
	assert.True(t, errors.Is(errors.BlobUnknown, err))

	ok, err := s.Exists(ctx, "missing.mp3")
	require.NoError(t, err)
	assert.False(t, ok)

	err = s.Delete(ctx, "missing.mp3")
	assert.True(t, errors.Is(errors.BlobUnknown, err))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := New(fsys, testRoot)

	_, err := s.Put(ctx, "gone.flac", []byte("data"), "audio/flac", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "gone.flac"))

	ok, err := s.Exists(ctx, "gone.flac")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = afero.Exists(fsys, testRoot+"/gone.flac"+sidecarExt)
	require.NoError(t, err)
	assert.False(t, ok, "attributes should be removed with the blob")

	err = s.Delete(ctx, "gone.flac")
	assert.True(t, errors.Is(errors.BlobUnknown, err))
}

func TestStatWithoutAttributes(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := New(fsys, testRoot)

	require.NoError(t, afero.WriteFile(fsys, testRoot+"/manual.mp3", []byte("manual"), 0644))

	info, err := s.Stat(ctx, "manual.mp3")
	require.NoError(t, err)
	assert.EqualValues(t, 6, info.Size)
	assert.Empty(t, info.ContentType)
	assert.Nil(t, info.Attrs)
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := New(afero.NewMemMapFs(), testRoot)

	keys := []library.BlobKey{
		"",
		"../escape.mp3",
		"dir/file.mp3",
		`dir\file.mp3`,
		".hidden",
		"..",
		"song.mp3" + sidecarExt,
	}

	for _, key := range keys {
		t.Run(string(key), func(t *testing.T) {
			_, err := s.Put(ctx, key, []byte("data"), "audio/mpeg", nil)
			assert.True(t, errors.Is(errors.InvalidArgument, err), "Put")
			_, err = s.Get(ctx, key, nil)
			assert.True(t, errors.Is(errors.InvalidArgument, err), "Get")
			_, err = s.Exists(ctx, key)
			assert.True(t, errors.Is(errors.InvalidArgument, err), "Exists")
			_, err = s.Stat(ctx, key)
			assert.True(t, errors.Is(errors.InvalidArgument, err), "Stat")
			err = s.Delete(ctx, key)
			assert.True(t, errors.Is(errors.InvalidArgument, err), "Delete")
		})
	}
}

func TestOpenRegistered(t *testing.T) {
	ctx := context.Background()
	cfg := config.TestConfig()
	conf := cfg.Conf()
	conf.Providers.Blob = NAME
	conf.Blob.Path = t.TempDir()
	cfg.StoreConf(conf)

	store, err := blob.Open(ctx, cfg)
	require.NoError(t, err)

	key := library.NewBlobKey("song.MP3")
	_, err = store.Put(ctx, key, []byte("on disk"), "audio/mpeg", nil)
	require.NoError(t, err)

	rc, err := store.Get(ctx, key, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("on disk"), readAll(t, rc))
}

func TestPutUploadedFilenames(t *testing.T) {
	ctx := context.Background()
	store := New(afero.NewMemMapFs(), testRoot)

	for _, name := range []string{"ok.mp3", "song.meta", `weird.b\c`, ".hidden", "x." + strings.Repeat("a", 300)} {
		key := library.NewBlobKey(name)
		_, err := store.Put(ctx, key, []byte(name), "audio/mpeg", nil)
		require.NoError(t, err, name)

		ok, err := store.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, name)
	}
}
