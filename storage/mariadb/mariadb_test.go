package mariadb_test

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/migrations"
	"github.com/kotone-fm/kotone/storage"
	"github.com/kotone-fm/kotone/storage/mariadb"
	storagetest "github.com/kotone-fm/kotone/storage/test"
	"github.com/rs/xid"
	"github.com/testcontainers/testcontainers-go"
	tcmariadb "github.com/testcontainers/testcontainers-go/modules/mariadb"
)

// containerSetup runs one mariadb container, every storage gets a fresh
// database inside of it with the migrations applied
type containerSetup struct {
	container *tcmariadb.MariaDBContainer
	admin     *sqlx.DB
	dsn       *mysql.Config
}

func (cs *containerSetup) Setup(ctx context.Context) error {
	testcontainers.Logger = testcontainers.TestLogger(storagetest.CtxT(ctx))

	var err error
	cs.container, err = tcmariadb.Run(ctx, "mariadb:11",
		tcmariadb.WithUsername("root"),
		tcmariadb.WithPassword(""),
	)
	if err != nil {
		return err
	}

	raw, err := cs.container.ConnectionString(ctx)
	if err != nil {
		return err
	}
	if cs.dsn, err = mysql.ParseDSN(raw); err != nil {
		return err
	}
	cs.admin, err = sqlx.ConnectContext(ctx, "mysql", raw)
	return err
}

func (cs *containerSetup) TearDown(ctx context.Context) error {
	if cs.admin != nil {
		cs.admin.Close()
	}
	if cs.container == nil {
		return nil
	}
	return cs.container.Terminate(ctx)
}

func (cs *containerSetup) CreateStorage(ctx context.Context, _ string) (library.StorageService, error) {
	name := "kotone_" + xid.New().String()
	if _, err := cs.admin.ExecContext(ctx, "CREATE DATABASE "+name); err != nil {
		return nil, err
	}

	dsn := *cs.dsn
	dsn.DBName = name

	cfg := config.TestConfig()
	c := cfg.Conf()
	c.Providers.Storage = mariadb.NAME
	c.Database.DSN = dsn.FormatDSN()
	cfg.StoreConf(c)

	if err := migrateUp(ctx, cfg); err != nil {
		return nil, err
	}
	return storage.Open(ctx, cfg)
}

func migrateUp(ctx context.Context, cfg config.Config) error {
	migr, err := migrations.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer migr.Close()
	return migr.Up()
}

func TestMariaDBStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	storagetest.RunTests(t, new(containerSetup))
}
