package metadata

import (
	"regexp"
	"strings"

	library "github.com/kotone-fm/kotone"
)

// artistSeparator matches everything that separates two artists in a free
// text artist field, except for the comma which is the normalized form
var artistSeparator = regexp.MustCompile(
	`(?i)\s*(?:\bfeat\.|\bft\.|\bfeaturing\b|&|\band\b|\bwith\b|;|/)\s*`,
)

// ParseArtists parses a free text artist field into a list of distinct
// artist names. The order and casing of the first appearance of an artist
// is kept.
//
// The returned list is never empty, if no artist is found a list with
// library.UnknownArtist is returned.
func ParseArtists(s string) []string {
	s = artistSeparator.ReplaceAllString(s, ",")

	var res []string
	seen := make(map[string]struct{})
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, name)
	}

	if len(res) == 0 {
		return []string{library.UnknownArtist}
	}
	return res
}

// JoinArtists renders a list of artists back into a display string
func JoinArtists(artists []string) string {
	switch len(artists) {
	case 0:
		return library.UnknownArtist
	case 1:
		return artists[0]
	}
	return strings.Join(artists[:len(artists)-1], ", ") + " & " + artists[len(artists)-1]
}
