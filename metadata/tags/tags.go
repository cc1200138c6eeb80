// Package tags implements library.TagExtractor on top of the embedded
// container metadata of audio files
package tags

import (
	"bytes"
	"context"
	"time"

	"github.com/dhowden/tag"
	library "github.com/kotone-fm/kotone"
	"github.com/rs/zerolog"
	"github.com/tcolgate/mp3"
)

// Extractor extracts embedded metadata with github.com/dhowden/tag
type Extractor struct{}

// NewExtractor returns a new Extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

var _ library.TagExtractor = (*Extractor)(nil)

// Extract implements library.TagExtractor, it never fails and returns an
// empty Metadata if the tags couldn't be read
func (Extractor) Extract(ctx context.Context, data []byte) library.Metadata {
	var res library.Metadata
	if len(data) == 0 {
		return res
	}

	m, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("failed to read embedded tags")
	} else {
		res.Title = m.Title()
		res.Artist = m.Artist()
		if res.Artist == "" {
			res.Artist = m.AlbumArtist()
		}
		res.Album = m.Album()
		res.Year = max(m.Year(), 0)
		res.Genres = library.ParseGenres(m.Genre())
	}

	// only mp3 has a frame decoder available, other formats go without
	if err != nil || m.FileType() == tag.MP3 {
		res.Duration = MP3Duration(data)
	}
	return res
}

// MP3Duration returns the summed duration of all mp3 frames found in data, or
// zero if data does not look like mp3
func MP3Duration(data []byte) time.Duration {
	dec := mp3.NewDecoder(bytes.NewReader(skipID3v2(data)))

	var frame mp3.Frame
	var skipped int
	var total time.Duration
	for {
		err := dec.Decode(&frame, &skipped)
		if err != nil {
			// io.EOF or trailing junk, either way we're done
			return total
		}
		total += frame.Duration()
	}
}

// skipID3v2 returns data with a leading ID3v2 tag removed
func skipID3v2(data []byte) []byte {
	const headerSize = 10
	if len(data) < headerSize || string(data[:3]) != "ID3" {
		return data
	}

	// tag size is stored as a synchsafe integer
	size := int(data[6]&0x7f)<<21 |
		int(data[7]&0x7f)<<14 |
		int(data[8]&0x7f)<<7 |
		int(data[9]&0x7f)
	size += headerSize
	if data[5]&0x10 != 0 { // footer present
		size += headerSize
	}
	if size > len(data) {
		return nil
	}
	return data[size:]
}
