package metadata

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	library "github.com/kotone-fm/kotone"
	"golang.org/x/text/unicode/norm"
)

var (
	// urlPattern matches anything that starts like an url, up to a space or
	// a closing bracket
	urlPattern = regexp.MustCompile(`(?i)(?:\b[a-z][a-z0-9+.-]*://|\bwww\.)[^\s)\]}>]*`)
	// domainPattern matches bare domain names with a lowercase top-level
	// domain that is common in tag spam. Top-level domains that are also
	// common words (me, to, us) are left out
	domainPattern = regexp.MustCompile(`\b[a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*\.(?:com|net|org|info|biz|ru|io|tk|xyz|cc|uk|fm|top|site|online|club|link)\b(?:/[^\s)\]}>]*)?`)
	// emptyBrackets matches bracket pairs left behind after removal
	emptyBrackets = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}|<\s*>`)
)

// edgeJunk is trimmed from both ends of a cleaned value
const edgeJunk = " -|~_:"

// Clean sanitizes the title, artist, album and genres of m. Urls, domain
// names and control characters are removed, whitespace is collapsed and the
// length limits are applied. Clean(Clean(m)) == Clean(m)
func Clean(m library.Metadata) library.Metadata {
	m.Title = CleanString(m.Title, library.LimitTitleLength)
	m.Artist = CleanString(m.Artist, library.LimitArtistLength)
	m.Album = CleanString(m.Album, library.LimitAlbumLength)
	m.Genres = CleanGenres(m.Genres)
	return m
}

// CleanMerged is Clean for MergedMetadata, the artist list is re-parsed
// from the cleaned artist. A title that cleans to nothing falls back to the
// stem of filename before the placeholder
func CleanMerged(m library.MergedMetadata, filename string) library.MergedMetadata {
	m.Metadata = Clean(m.Metadata)
	if m.Title == "" && filename != "" {
		stem := library.AudioBlob{Filename: filename}.Stem()
		m.Title = CleanString(stem, library.LimitTitleLength)
	}
	if m.Title == "" {
		m.Title = library.UnknownTitle
	}
	if m.Artist == "" {
		m.Artist = library.UnknownArtist
	}
	m.Artists = ParseArtists(m.Artist)
	return m
}

// CleanGenres cleans each genre and returns the normalized result
func CleanGenres(g library.Genres) library.Genres {
	if len(g) == 0 {
		return nil
	}

	res := make(library.Genres, 0, len(g))
	for _, genre := range g {
		// separators would change the meaning when stored
		genre = strings.Map(func(r rune) rune {
			if r == ';' || r == ',' {
				return ' '
			}
			return r
		}, genre)
		res = append(res, CleanString(genre, library.LimitGenreLength))
	}
	res = res.Normalize()
	if len(res) > library.LimitGenres {
		res = res[:library.LimitGenres]
	}
	return res
}

// CleanString sanitizes s and truncates it to at most limit runes, a limit
// of zero or less means no limit
func CleanString(s string, limit int) string {
	// every pass either leaves the string alone or makes it shorter
	for {
		next := cleanOnce(s, limit)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(s string, limit int) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError:
			return -1
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)

	s = urlPattern.ReplaceAllString(s, "")
	s = domainPattern.ReplaceAllString(s, "")
	s = emptyBrackets.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, edgeJunk)

	if limit > 0 && utf8.RuneCountInString(s) > limit {
		s = string([]rune(s)[:limit])
		s = strings.Trim(s, edgeJunk)
	}
	return s
}
