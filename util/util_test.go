package util

import (
	"net/http/httptest"
	"testing"

	library "github.com/kotone-fm/kotone"
	"github.com/stretchr/testify/assert"
)

func TestAddContentDisposition(t *testing.T) {
	w := httptest.NewRecorder()
	assert.Empty(t, w.Header().Get(headerContentDisposition))

	AddContentDisposition(w, "test.mp3")
	value := w.Header().Get(headerContentDisposition)
	assert.Equal(t, `attachment; filename="test.mp3"; filename*=UTF-8''test.mp3`, value)
}

func TestAddContentDispositionSong(t *testing.T) {
	w := httptest.NewRecorder()
	assert.Empty(t, w.Header().Get(headerContentDisposition))

	AddContentDispositionSong(w, library.Song{
		Title:    "world",
		Artist:   "hello",
		FileKey:  "cs1s7ij5lt0h1tm1rsd0.flac",
		MimeType: "audio/flac",
	})
	value := w.Header().Get(headerContentDisposition)
	assert.Equal(t, `attachment; filename="hello - world.flac"; filename*=UTF-8''hello%20-%20world.flac`, value)
	assert.Equal(t, "audio/flac", w.Header().Get("Content-Type"))
}

func TestAddContentDispositionNonASCII(t *testing.T) {
	w := httptest.NewRecorder()

	AddContentDispositionSong(w, library.Song{
		Title:   `ゆめ "dream"`,
		Artist:  "AC/DC",
		FileKey: "key.ogg",
	})
	value := w.Header().Get(headerContentDisposition)
	assert.Equal(t, `attachment; filename="AC_DC - __ _dream_.ogg"; filename*=UTF-8''AC_DC%20-%20%E3%82%86%E3%82%81%20%22dream%22.ogg`, value)
	assert.Empty(t, w.Header().Get("Content-Type"))
}
