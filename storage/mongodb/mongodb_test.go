package mongodb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/storage"
	"github.com/kotone-fm/kotone/storage/mongodb"
	storagetest "github.com/kotone-fm/kotone/storage/test"
	"github.com/rs/xid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// transactions need a replica set, a single member one is enough
const initiateReplicaSet = `rs.initiate({_id: "rs0", members: [{_id: 0, host: "localhost:27017"}]})`
const checkPrimary = `if (!db.hello().isWritablePrimary) { quit(1) }`

type MongoDBSetup struct {
	container testcontainers.Container
	uri       string
}

func (setup *MongoDBSetup) Setup(ctx context.Context) error {
	testcontainers.Logger = testcontainers.TestLogger(storagetest.CtxT(ctx))

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return err
	}
	setup.container = container

	err = setup.mongosh(ctx, initiateReplicaSet)
	if err != nil {
		return err
	}
	// wait for the election to finish
	err = setup.mongosh(ctx, checkPrimary)
	if err != nil {
		return err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return err
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		return err
	}
	setup.uri = fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port())
	return nil
}

// mongosh runs script inside of the container until it succeeds
func (setup *MongoDBSetup) mongosh(ctx context.Context, script string) error {
	b := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Millisecond*250),
		backoff.WithMaxElapsedTime(time.Minute),
	), ctx)

	return backoff.Retry(func() error {
		code, _, err := setup.container.Exec(ctx, []string{"mongosh", "--quiet", "--eval", script})
		if err != nil {
			return err
		}
		if code != 0 {
			return fmt.Errorf("mongosh exited with code %d", code)
		}
		return nil
	}, b)
}

func (setup *MongoDBSetup) TearDown(ctx context.Context) error {
	return setup.container.Terminate(ctx)
}

func (setup *MongoDBSetup) CreateStorage(ctx context.Context, _ string) (library.StorageService, error) {
	cfg := config.TestConfig()
	bare := cfg.Conf()
	bare.Providers.Storage = mongodb.NAME
	bare.Mongo.URI = setup.uri
	// every test gets its own database
	bare.Mongo.Database = "test_" + xid.New().String()
	bare.Mongo.Timeout = config.Duration(time.Second * 30)
	cfg.StoreConf(bare)

	return storage.Open(ctx, cfg)
}

func TestMongoDBStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	storagetest.RunTests(t, new(MongoDBSetup))
}
