package metadata

import (
	"context"
	"strings"

	library "github.com/kotone-fm/kotone"
	"github.com/rs/zerolog"
)

// Merge merges the extracted and user supplied metadata together, for each
// field the user supplied value is used if it is non-empty, otherwise the
// extracted value is used.
//
// If no title is found the filename without extension is used, and if that is
// empty library.UnknownTitle. If no artist is found library.UnknownArtist is
// used. Album, year and genres have no fallback.
func Merge(extracted, user library.Metadata, filename string) library.MergedMetadata {
	var m library.MergedMetadata

	m.Title = pickString(user.Title, extracted.Title)
	if m.Title == "" {
		m.Title = library.AudioBlob{Filename: filename}.Stem()
	}
	if m.Title == "" {
		m.Title = library.UnknownTitle
	}

	m.Artist = pickString(user.Artist, extracted.Artist)
	if m.Artist == "" {
		m.Artist = library.UnknownArtist
	}

	m.Album = pickString(user.Album, extracted.Album)

	m.Year = user.Year
	if m.Year <= 0 {
		m.Year = max(extracted.Year, 0)
	}

	m.Genres = user.Genres.Normalize()
	if len(m.Genres) == 0 {
		m.Genres = extracted.Genres.Normalize()
	}

	m.Duration = user.Duration
	if m.Duration <= 0 {
		m.Duration = max(extracted.Duration, 0)
	}

	m.Artists = ParseArtists(m.Artist)
	return m
}

// NeedsEnrichment returns true if m should go through an online lookup, this
// is only the case when no artist could be resolved
func NeedsEnrichment(m library.MergedMetadata) bool {
	return m.Artist == library.UnknownArtist
}

// Enrich applies the enriched metadata on top of m, every field the enriched
// metadata has a value for overrides the value in m
func Enrich(m library.MergedMetadata, enriched library.Metadata) library.MergedMetadata {
	if v := strings.TrimSpace(enriched.Title); v != "" {
		m.Title = v
	}
	if v := strings.TrimSpace(enriched.Artist); v != "" {
		m.Artist = v
	}
	if v := strings.TrimSpace(enriched.Album); v != "" {
		m.Album = v
	}
	if enriched.Year > 0 {
		m.Year = enriched.Year
	}
	if g := enriched.Genres.Normalize(); len(g) > 0 {
		m.Genres = g
	}
	if enriched.Duration > 0 && m.Duration <= 0 {
		m.Duration = enriched.Duration
	}

	m.Artists = ParseArtists(m.Artist)
	return m
}

// Lookup runs the online lookup for m if it needs enrichment and applies the
// result. A failed lookup or one without results leaves m as-is, lookup can
// be nil
func Lookup(ctx context.Context, lookup library.MetadataLookup, m library.MergedMetadata) library.MergedMetadata {
	if lookup == nil || !NeedsEnrichment(m) {
		return m
	}

	enriched, err := lookup.Lookup(ctx, m.Title, m.Artist)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("title", m.Title).
			Msg("metadata lookup failed")
		return m
	}
	if enriched == nil {
		zerolog.Ctx(ctx).Debug().Str("title", m.Title).Msg("metadata lookup found nothing")
		return m
	}

	zerolog.Ctx(ctx).Info().
		Str("title", m.Title).
		Str("enriched_title", enriched.Title).
		Str("enriched_artist", enriched.Artist).
		Msg("metadata enriched")
	return Enrich(m, *enriched)
}

// UnionGenres returns the ordered union of existing and observed, the
// comparison is case-sensitive and the result is capped at
// library.LimitGenres entries
func UnionGenres(existing, observed library.Genres) library.Genres {
	union := make(library.Genres, 0, len(existing)+len(observed))
	union = append(union, existing...)
	union = append(union, observed...)
	union = union.Normalize()
	if len(union) > library.LimitGenres {
		union = union[:library.LimitGenres]
	}
	return union
}

func pickString(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
