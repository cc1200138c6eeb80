package musicbrainz

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// recordingSearch is the response of a /recording search
type recordingSearch struct {
	Created    time.Time   `json:"created"`
	Count      int         `json:"count"`
	Offset     int         `json:"offset"`
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID               string         `json:"id"`
	Score            int            `json:"score"`
	Title            string         `json:"title"`
	Length           int            `json:"length,omitempty"`
	ArtistCredit     []artistCredit `json:"artist-credit"`
	FirstReleaseDate string         `json:"first-release-date"`
	Releases         []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Status       string `json:"status"`
		Date         string `json:"date"`
		ReleaseGroup struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			PrimaryType string `json:"primary-type"`
		} `json:"release-group"`
	} `json:"releases"`
	Tags           []tag  `json:"tags"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

type tag struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

type artistCredit struct {
	Joinphrase string `json:"joinphrase"`
	Name       string `json:"name"`
	Artist     struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		SortName string `json:"sort-name"`
	} `json:"artist"`
}

// artist returns the display form of the artist credit
func (r recording) artist() string {
	var b strings.Builder
	for _, ac := range r.ArtistCredit {
		name := ac.Name
		if name == "" {
			name = ac.Artist.Name
		}
		b.WriteString(name)
		b.WriteString(ac.Joinphrase)
	}
	return strings.TrimSpace(b.String())
}

// album returns the title of the first official release the recording is on
func (r recording) album() string {
	for _, rel := range r.Releases {
		if strings.EqualFold(rel.Status, "official") {
			return rel.Title
		}
	}
	if len(r.Releases) > 0 {
		return r.Releases[0].Title
	}
	return ""
}

// year returns the year of the first release, or zero if unknown
func (r recording) year() int {
	// dates are one of YYYY, YYYY-MM or YYYY-MM-DD
	if len(r.FirstReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(r.FirstReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// genres returns the tag names of the recording ordered by vote count
func (r recording) genres() []string {
	tags := slices.Clone(r.Tags)
	slices.SortStableFunc(tags, func(a, b tag) int {
		return cmp.Compare(b.Count, a.Count)
	})

	res := make([]string, 0, len(tags))
	for _, t := range tags {
		res = append(res, t.Name)
	}
	return res
}
