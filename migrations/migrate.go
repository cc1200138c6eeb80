package migrations

import (
	"context"
	"io/fs"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/migrations/mysql"
	"github.com/kotone-fm/kotone/storage/mariadb"
	"github.com/rs/zerolog"
)

// New returns a migrate instance for the storage provider configured in cfg
func New(ctx context.Context, cfg config.Config) (*migrate.Migrate, error) {
	const op errors.Op = "migrations.New"

	var err error
	var files source.Driver
	var driver database.Driver

	driverName := cfg.Conf().Providers.Storage
	switch driverName {
	case mariadb.NAME:
		files, driver, err = mysql.New(ctx, cfg)
	default:
		return nil, errors.E(op, errors.NoMigrations, errors.Info(driverName))
	}

	if err != nil {
		return nil, errors.E(op, err)
	}

	m, err := migrate.NewWithInstance(
		"iofs", files,
		driverName, driver,
	)
	if err != nil {
		return nil, errors.E(op, err)
	}
	m.Log = migrateLogger{zerolog.Ctx(ctx)}
	return m, nil
}

// CheckVersion checks if the database is migrated to the latest version
// available, it returns migrate.ErrNilVersion if no migrations have been
// applied at all
func CheckVersion(ctx context.Context, cfg config.Config) error {
	const op errors.Op = "migrations.CheckVersion"

	m, err := New(ctx, cfg)
	if err != nil {
		if errors.Is(errors.NoMigrations, err) {
			// nothing to check for providers without migrations
			return nil
		}
		return err
	}
	defer m.Close()

	current, dirty, err := m.Version()
	if err != nil {
		return errors.E(op, err)
	}
	if dirty {
		return errors.E(op, errors.Errorf("database is dirty at version %d", current))
	}

	latest, err := latestVersion()
	if err != nil {
		return errors.E(op, err)
	}
	if current != latest {
		return errors.E(op, errors.Errorf("database is at version %d, expected %d", current, latest))
	}
	return nil
}

// latestVersion returns the highest version in the embedded migration files
func latestVersion() (uint, error) {
	files, err := mysql.Source()
	if err != nil {
		return 0, err
	}
	defer files.Close()

	version, err := files.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := files.Next(version)
		if err != nil {
			if errors.IsE(err, os.ErrNotExist) {
				return version, nil
			}
			return 0, err
		}
		version = next
	}
}

// List returns the filenames of all up migrations in order
func List() ([]string, error) {
	return fs.Glob(mysql.FS, "*.up.sql")
}

// migrateLogger adapts zerolog to the migrate.Logger interface
type migrateLogger struct {
	logger *zerolog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info().Msgf(strings.TrimSpace(format), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.logger.GetLevel() <= zerolog.DebugLevel
}
