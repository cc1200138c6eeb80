// Package storage contains the registry of persistent record stores
package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
)

// OpenFn is a function that returns a StorageService configured with the config given
type OpenFn func(context.Context, config.Config) (library.StorageService, error)

var providers = map[string]OpenFn{}
var instancesMu sync.Mutex
var instances = map[string]library.StorageService{}

// Register registers an OpenFn under the name given, it is not safe to
// call Register from multiple goroutines
//
// Register will panic if the name already exists
func Register(name string, fn OpenFn) {
	if _, ok := providers[name]; ok {
		panic("storage already exists with name: " + name)
	}
	providers[name] = fn
}

// Open returns a library.StorageService as configured by the config given, an
// instance is shared between callers asking for the same provider and DSN
func Open(ctx context.Context, cfg config.Config) (library.StorageService, error) {
	const op errors.Op = "storage/Open"
	logger := zerolog.Ctx(ctx)

	name := cfg.Conf().Providers.Storage
	key := name + "\x00" + instanceKey(cfg)

	instancesMu.Lock()
	defer instancesMu.Unlock()
	// see if there is already an instance available
	store, ok := instances[key]
	if ok {
		logger.Info().Str("provider", name).Msg("re-using existing storage instance")
		return store, nil
	}

	fn, ok := providers[name]
	if !ok {
		return nil, errors.E(op, errors.ProviderUnknown, errors.Info(name),
			errors.Errorf("expected any of %v", slices.Sorted(maps.Keys(providers))))
	}

	logger.Info().Str("provider", name).Msg("creating new storage instance")
	store, err := fn(ctx, cfg)
	if err != nil {
		return nil, errors.E(op, err)
	}

	instances[key] = &sharedStorage{
		StorageService: store,
		release: sync.OnceFunc(func() {
			instancesMu.Lock()
			delete(instances, key)
			instancesMu.Unlock()
		}),
	}
	return instances[key], nil
}

// instanceKey returns the part of the configuration that makes two instances
// of the same provider different
func instanceKey(cfg config.Config) string {
	c := cfg.Conf()
	switch c.Providers.Storage {
	case "mongodb":
		return c.Mongo.URI + "\x00" + c.Mongo.Database
	}
	return c.Database.DSN
}

// sharedStorage removes itself from the instance cache when closed
type sharedStorage struct {
	library.StorageService
	release func()
}

func (s *sharedStorage) Close() error {
	s.release()
	return s.StorageService.Close()
}
