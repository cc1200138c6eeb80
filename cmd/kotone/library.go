package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/fingerprint"
	"github.com/kotone-fm/kotone/ingest"
	"github.com/kotone-fm/kotone/migrations"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ingestFlags are the flags of the ingest command
type ingestFlags struct {
	title    string
	artist   string
	album    string
	year     int
	genres   string
	uploader string
}

func (f ingestFlags) metadata() library.Metadata {
	return library.Metadata{
		Title:  f.title,
		Artist: f.artist,
		Album:  f.album,
		Year:   f.year,
		Genres: library.ParseGenres(f.genres),
	}
}

func ingestCmd() cmd {
	var flags ingestFlags
	var args *flag.FlagSet

	return cmd{
		name:     "ingest",
		synopsis: "ingest audio files from disk into the library",
		usage: `ingest [flags] <file>...:
	ingest audio files from disk into the library, metadata flags apply to
	every file given
	`,
		setFlags: func(f *flag.FlagSet) {
			args = f
			f.StringVar(&flags.title, "title", "", "title of the song")
			f.StringVar(&flags.artist, "artist", "", "artist of the song")
			f.StringVar(&flags.album, "album", "", "album of the song")
			f.IntVar(&flags.year, "year", 0, "release year of the song")
			f.StringVar(&flags.genres, "genres", "", "comma separated genres of the song")
			f.StringVar(&flags.uploader, "uploader", "cli", "identity recorded as the uploader")
		},
		execute: withConfig(func(ctx context.Context, cfg config.Config) error {
			return ingestFiles(ctx, cfg, afero.NewOsFs(), flags, args.Args())
		}),
	}
}

func ingestFiles(ctx context.Context, cfg config.Config, fs afero.Fs, flags ingestFlags, files []string) error {
	const op errors.Op = "cmd/kotone/ingestFiles"

	if len(files) == 0 {
		return errors.E(op, errors.InvalidArgument, "no files given")
	}
	if err := migrations.CheckVersion(ctx, cfg); err != nil {
		return errors.E(op, err)
	}

	service, err := ingest.Open(ctx, cfg)
	if err != nil {
		return errors.E(op, err)
	}
	defer service.Close()

	var failed int
	for _, filename := range files {
		res, err := ingestFile(ctx, fs, service, flags, filename)
		if err != nil {
			failed++
			zerolog.Ctx(ctx).Error().Err(err).Str("filename", filename).Msg("failed to ingest file")
			continue
		}
		fmt.Printf("%s\t%s\t%d\t%s - %s\n", filename, res.Outcome, res.Song.ID, res.Song.Artist, res.Song.Title)
	}

	if failed > 0 {
		return WithStatusCode(errors.Errorf("failed to ingest %d of %d files", failed, len(files)), 1)
	}
	return nil
}

func ingestFile(ctx context.Context, fs afero.Fs, i *ingest.Service, flags ingestFlags, filename string) (ingest.Result, error) {
	const op errors.Op = "cmd/kotone/ingestFile"

	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return ingest.Result{}, errors.E(op, err)
	}

	blob := library.AudioBlob{
		Data:     data,
		Filename: filename,
	}
	ct, ok := blob.DetectContentType()
	if !ok {
		return ingest.Result{}, errors.E(op, errors.InvalidArgument, library.ErrUnsupportedType)
	}
	blob.ContentType = ct

	return i.Ingest(ctx, ingest.Request{
		Blob:       blob,
		Metadata:   flags.metadata(),
		UploadedBy: flags.uploader,
	})
}

var checkToolsCmd = cmd{
	name:     "check-tools",
	synopsis: "check if the fingerprinting tool is available",
	usage: `check-tools:
	check if the fingerprinting tool is available, exits with a non-zero
	status if it is not
	`,
	execute: withConfig(checkTools),
}

func checkTools(ctx context.Context, cfg config.Config) error {
	status := fingerprint.Check(cfg.Conf().Ingest.FingerprintTools)

	fmt.Printf("candidates: %s\n", strings.Join(status.Candidates, ", "))
	if !status.Available {
		fmt.Fprintf(os.Stderr, "fingerprinting tool unavailable: %s\n", status.Detail)
		fmt.Fprintln(os.Stderr, "uploads will be identified by content hash only")
		return WithStatusCode(nil, 1)
	}

	fmt.Printf("using: %s\n", status.Path)
	return nil
}
