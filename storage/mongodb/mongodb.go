// Package mongodb implements library.StorageService on top of a MongoDB
// replica set
package mongodb

import (
	"context"
	"sync"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/kotone-fm/kotone/storage"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const NAME = "mongodb"

func init() {
	storage.Register(NAME, Connect)
}

const (
	songCollection    = "songs"
	counterCollection = "counters"
	defaultTimeout    = 10 * time.Second
)

// Connect connects to the mongodb server configured in cfg and makes sure
// the indexes required exist
func Connect(ctx context.Context, cfg config.Config) (library.StorageService, error) {
	const op errors.Op = "mongodb/Connect"

	conf := cfg.Conf().Mongo
	timeout := conf.Timeout.Std()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(conf.URI).SetTimeout(timeout)
	zerolog.Ctx(ctx).Info().Ctx(ctx).Str("database", conf.Database).Msg("trying to connect")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.E(op, errors.StorageUnknown, err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.E(op, errors.StorageUnknown, err)
	}

	db := client.Database(conf.Database)
	err = createIndexes(ctx, db)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.E(op, err)
	}

	return &StorageService{
		client: client,
		db:     db,
	}, nil
}

func createIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(songCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint_key", Value: 1}},
			Options: options.Index().SetName("fingerprint_key_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "file_key", Value: 1}},
			Options: options.Index().SetName("file_key_unique").SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	// counters can't be created inside of a transaction on older servers
	_, err = db.Collection(counterCollection).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: songCollection}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "seq", Value: int64(0)}}}},
		options.Update().SetUpsert(true),
	)
	return err
}

// StorageService implements library.StorageService with a mongodb database
type StorageService struct {
	client *mongo.Client
	db     *mongo.Database
}

func (s *StorageService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *StorageService) Song(ctx context.Context) library.SongStorage {
	return SongStorage{
		ctx: ctx,
		db:  s.db,
	}
}

func (s *StorageService) SongTx(ctx context.Context, tx library.StorageTx) (library.SongStorage, library.StorageTx, error) {
	ctx, tx, err := s.tx(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return SongStorage{
		ctx: ctx,
		db:  s.db,
	}, tx, nil
}

// tx either re-uses the session of the tx given, or starts a new session with a
// transaction if tx is nil. Passing in a StorageTx not returned by this package
// will panic
func (s *StorageService) tx(ctx context.Context, tx library.StorageTx) (context.Context, library.StorageTx, error) {
	const op errors.Op = "mongodb/StorageService.tx"

	if tx != nil {
		switch txx := tx.(type) {
		case *sessionTx:
			// disable the commit so the transaction can't be committed earlier
			// than expected by the creator
			return mongo.NewSessionContext(ctx, txx.session), &fakeTx{sessionTx: txx}, nil
		case *fakeTx:
			return mongo.NewSessionContext(ctx, txx.session), txx, nil
		default:
			panic("mongodb: invalid tx passed to tx")
		}
	}

	session, err := s.client.StartSession()
	if err != nil {
		return ctx, nil, errors.E(op, errors.TransactionBegin, err)
	}
	err = session.StartTransaction()
	if err != nil {
		session.EndSession(ctx)
		return ctx, nil, errors.E(op, errors.TransactionBegin, err)
	}

	stx := &sessionTx{
		ctx:     context.WithoutCancel(ctx),
		session: session,
	}
	return mongo.NewSessionContext(ctx, session), stx, nil
}

// sessionTx is a library.StorageTx backed by a mongodb session with an
// active transaction
type sessionTx struct {
	ctx     context.Context
	session mongo.Session

	mu   sync.Mutex
	done bool
}

func (tx *sessionTx) Commit() error {
	const op errors.Op = "mongodb/sessionTx.Commit"
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return errors.E(op, errors.TransactionCommit, "transaction already done")
	}
	tx.done = true
	defer tx.session.EndSession(tx.ctx)

	err := tx.session.CommitTransaction(tx.ctx)
	if err != nil {
		return errors.E(op, errors.TransactionCommit, err)
	}
	return nil
}

func (tx *sessionTx) Rollback() error {
	const op errors.Op = "mongodb/sessionTx.Rollback"
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return errors.E(op, errors.TransactionRollback, "transaction already done")
	}
	tx.done = true
	defer tx.session.EndSession(tx.ctx)

	err := tx.session.AbortTransaction(tx.ctx)
	if err != nil {
		return errors.E(op, errors.TransactionRollback, err)
	}
	return nil
}

// fakeTx is a sessionTx with the Commit method disabled
type fakeTx struct {
	*sessionTx
	called bool
}

// Commit does nothing
func (tx *fakeTx) Commit() error {
	if tx.called {
		return errors.E(errors.TransactionCommit, "transaction already done")
	}
	tx.called = true
	return nil
}

// Rollback only calls the real Rollback if Commit has not been called yet
func (tx *fakeTx) Rollback() error {
	if tx.called {
		return errors.E(errors.TransactionRollback, "transaction already done")
	}
	tx.called = true
	return tx.sessionTx.Rollback()
}
