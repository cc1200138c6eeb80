package mysql

import (
	"context"
	"embed"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/storage/mariadb"
)

// MigrationsTable records the applied schema version. It is prefixed so the
// songs schema can share a database with other applications
const MigrationsTable = "kotone_schema_migrations"

//go:embed *.sql
var FS embed.FS

// Source returns the embedded migrations as a migrate source
func Source() (source.Driver, error) {
	return iofs.New(FS, ".")
}

// New returns the embedded migrations and a migrate driver for the database
// configured in cfg
func New(ctx context.Context, cfg config.Config) (source.Driver, database.Driver, error) {
	files, err := Source()
	if err != nil {
		return nil, nil, err
	}

	db, err := mariadb.ConnectDB(ctx, cfg, true)
	if err != nil {
		files.Close()
		return nil, nil, err
	}

	driver, err := mysql.WithInstance(db.DB, &mysql.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		files.Close()
		db.Close()
		return nil, nil, err
	}
	return files, driver, nil
}
