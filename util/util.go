package util

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	library "github.com/kotone-fm/kotone"
)

const headerContentDisposition = "Content-Disposition"

// AddContentDisposition sets the Content-Disposition header so that the
// response is downloaded as filename
func AddContentDisposition(w http.ResponseWriter, filename string) {
	w.Header().Set(headerContentDisposition, contentDisposition(filename))
}

// AddContentDispositionSong sets the Content-Disposition and Content-Type
// headers for downloading the file of song, the filename is made from the
// artist and title of the song
func AddContentDispositionSong(w http.ResponseWriter, song library.Song) {
	name := song.Title
	if song.Artist != "" {
		name = song.Artist + " - " + song.Title
	}
	name = strings.NewReplacer("/", "_", "\\", "_").Replace(name)

	AddContentDisposition(w, name+path.Ext(string(song.FileKey)))
	if song.MimeType != "" {
		w.Header().Set("Content-Type", song.MimeType)
	}
}

func contentDisposition(filename string) string {
	return `attachment; filename="` + asciiFilename(filename) + `"; filename*=UTF-8''` + url.PathEscape(filename)
}

// asciiFilename replaces everything that can't go into a quoted-string
// filename parameter
func asciiFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
}
