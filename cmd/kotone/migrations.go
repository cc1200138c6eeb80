package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/google/subcommands"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/migrations"
)

const migrateUsage = `migrate <action>:
	manage the schema of the configured storage provider

actions:
	up               apply every migration that isn't applied yet
	version          print the schema version the database is at
	force <version>  record the schema as being at version without running
	                 anything, -1 clears the version
	ls               list the migrations embedded in this executable
`

// schemaMigrator is the part of *migrate.Migrate used by migrate
type schemaMigrator interface {
	Up() error
	Version() (uint, bool, error)
	Force(int) error
}

type migrateCmd struct {
	out io.Writer
}

func (m *migrateCmd) Name() string     { return "migrate" }
func (m *migrateCmd) Synopsis() string { return "apply or inspect database migrations" }
func (m *migrateCmd) Usage() string    { return migrateUsage }

func (m *migrateCmd) SetFlags(*flag.FlagSet) {}

func (m *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if m.out == nil {
		m.out = os.Stdout
	}

	action := f.Arg(0)
	var actionArgs []string
	if f.NArg() > 1 {
		actionArgs = f.Args()[1:]
	}

	return cmd{
		name: "migrate",
		execute: func(ctx context.Context, l config.Loader) error {
			return m.run(ctx, l, action, actionArgs)
		},
	}.Execute(ctx, f, args...)
}

func (m *migrateCmd) run(ctx context.Context, l config.Loader, action string, args []string) error {
	switch action {
	case "ls":
		return listMigrations(m.out)
	case "up", "version", "force":
	default:
		fmt.Fprint(os.Stderr, migrateUsage)
		return WithStatusCode(errors.Errorf("unknown migrate action %q", action), int(subcommands.ExitUsageError))
	}

	cfg, err := l()
	if err != nil {
		return err
	}

	migr, err := migrations.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer migr.Close()

	return runMigrateAction(m.out, migr, action, args)
}

func runMigrateAction(w io.Writer, m schemaMigrator, action string, args []string) error {
	switch action {
	case "up":
		before, _, err := m.Version()
		if err != nil && !errors.IsE(err, migrate.ErrNilVersion) {
			return err
		}
		err = m.Up()
		if errors.IsE(err, migrate.ErrNoChange) {
			fmt.Fprintf(w, "schema already at version %d\n", before)
			return nil
		}
		if err != nil {
			return err
		}
		after, _, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "schema migrated from version %d to %d\n", before, after)
		return nil
	case "version":
		version, dirty, err := m.Version()
		if errors.IsE(err, migrate.ErrNilVersion) {
			fmt.Fprintln(w, "no migrations applied")
			return nil
		}
		if err != nil {
			return err
		}
		if dirty {
			fmt.Fprintf(w, "schema version %d (dirty, fix it and use force)\n", version)
			return nil
		}
		fmt.Fprintf(w, "schema version %d\n", version)
		return nil
	case "force":
		if len(args) != 1 {
			return WithStatusCode(errors.New("force needs exactly one version"), int(subcommands.ExitUsageError))
		}
		version, err := strconv.Atoi(args[0])
		if err != nil || version < -1 {
			return WithStatusCode(errors.Errorf("invalid version %q", args[0]), int(subcommands.ExitUsageError))
		}
		if err = m.Force(version); err != nil {
			return err
		}
		fmt.Fprintf(w, "schema version forced to %d\n", version)
		return nil
	}
	return errors.Errorf("unknown migrate action %q", action)
}

// listMigrations prints the version and name of every embedded migration
func listMigrations(w io.Writer) error {
	names, err := migrations.List()
	if err != nil {
		return err
	}

	for _, name := range names {
		version, desc, _ := strings.Cut(strings.TrimSuffix(name, ".up.sql"), "_")
		n, err := strconv.ParseUint(version, 10, 64)
		if err != nil {
			return errors.Errorf("malformed migration filename %q", name)
		}
		fmt.Fprintf(w, "%4d  %s\n", n, desc)
	}
	return nil
}
