// Package musicbrainz implements an online metadata lookup against the
// MusicBrainz webservice
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hbollon/go-edlib"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/metadata/registry"
	"github.com/rs/zerolog"
)

const NAME = "musicbrainz"

// minTitleSimilarity is the minimum similarity between the title we search
// for and the title of a recording for it to be considered a match
const minTitleSimilarity = 0.85

// searchLimit is the amount of recordings requested per search
const searchLimit = 10

func init() {
	registry.Register(NAME, Open)
}

// Open returns a musicbrainz lookup configured by cfg
func Open(ctx context.Context, cfg config.Config) (library.MetadataLookup, error) {
	return New(cfg, http.DefaultClient), nil
}

// New returns a new MusicBrainz lookup using the client given
func New(cfg config.Config, client *http.Client) *MusicBrainz {
	return &MusicBrainz{
		cfg:    cfg,
		client: client,
	}
}

type MusicBrainz struct {
	cfg    config.Config
	client *http.Client
}

// Lookup implements library.MetadataLookup
func (mbz *MusicBrainz) Lookup(ctx context.Context, title, artist string) (*library.Metadata, error) {
	const op errors.Op = "musicbrainz/MusicBrainz.Lookup"

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.E(op, errors.InvalidArgument, errors.Info("title"))
	}
	// the placeholder is not a real artist
	if artist == library.UnknownArtist {
		artist = ""
	}

	res, err := mbz.search(ctx, title, artist)
	if err != nil {
		return nil, errors.E(op, err)
	}

	best, ok := mbz.bestMatch(res.Recordings, title)
	if !ok {
		return nil, errors.E(op, errors.LookupNoResults, errors.Info(title))
	}

	zerolog.Ctx(ctx).Debug().
		Str("recording", best.ID).
		Int("score", best.Score).
		Msg("musicbrainz match")

	return &library.Metadata{
		Title:    best.Title,
		Artist:   best.artist(),
		Album:    best.album(),
		Year:     best.year(),
		Genres:   library.Genres(best.genres()).Normalize(),
		Duration: time.Duration(best.Length) * time.Millisecond,
	}, nil
}

// bestMatch returns the recording with the highest score that passes the
// configured minimum score and is similar enough to title
func (mbz *MusicBrainz) bestMatch(recordings []recording, title string) (recording, bool) {
	minScore := mbz.cfg.Conf().MusicBrainz.MinScore

	var best recording
	var bestSim float32
	var found bool
	for _, rec := range recordings {
		if rec.Score < minScore {
			continue
		}

		sim, err := edlib.StringsSimilarity(
			strings.ToLower(title),
			strings.ToLower(rec.Title),
			edlib.JaroWinkler,
		)
		if err != nil || sim < minTitleSimilarity {
			continue
		}

		if !found || rec.Score > best.Score || (rec.Score == best.Score && sim > bestSim) {
			best, bestSim, found = rec, sim, true
		}
	}
	return best, found
}

// searchURL returns the url to search for a recording with title and artist
func (mbz *MusicBrainz) searchURL(title, artist string) string {
	query := fmt.Sprintf(`recording:"%s"`, escapeLucene(title))
	if artist != "" {
		query += fmt.Sprintf(` AND artist:"%s"`, escapeLucene(artist))
	}

	values := url.Values{}
	values.Set("query", query)
	values.Set("fmt", "json")
	values.Set("limit", fmt.Sprint(searchLimit))

	uri := mbz.cfg.Conf().MusicBrainz.Endpoint.URL().JoinPath("recording")
	uri.RawQuery = values.Encode()
	return uri.String()
}

func (mbz *MusicBrainz) search(ctx context.Context, title, artist string) (*recordingSearch, error) {
	const op errors.Op = "musicbrainz/MusicBrainz.search"
	conf := mbz.cfg.Conf()
	uri := mbz.searchURL(title, artist)

	var res recordingSearch
	err := backoff.RetryNotify(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", conf.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := mbz.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode >= 500:
			// rate limited or server trouble, try again later
			return fmt.Errorf("musicbrainz: status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("musicbrainz: status %d", resp.StatusCode))
		}

		res = recordingSearch{}
		if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, config.NewLookupBackoff(ctx, conf.MusicBrainz.MaxRetries), func(err error, d time.Duration) {
		zerolog.Ctx(ctx).Warn().Err(err).Dur("backoff", d).Msg("musicbrainz request failed, retrying")
	})
	if err != nil {
		return nil, errors.E(op, err)
	}
	return &res, nil
}

var luceneReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
)

// escapeLucene escapes s for use inside a quoted lucene phrase
func escapeLucene(s string) string {
	return luceneReplacer.Replace(s)
}
