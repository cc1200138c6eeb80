// Package blob contains the registry of blob store implementations
package blob

import (
	"context"
	"maps"
	"slices"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
)

// OpenFn is a function that returns a library.BlobStorage configured with the
// config given
type OpenFn func(context.Context, config.Config) (library.BlobStorage, error)

var providers = map[string]OpenFn{}

// Register registers an OpenFn under the name given, it is not safe to
// call Register from multiple goroutines
//
// Register will panic if the name already exists
func Register(name string, fn OpenFn) {
	if _, ok := providers[name]; ok {
		panic("blob store already exists with name: " + name)
	}
	providers[name] = fn
}

// Open returns the library.BlobStorage configured in cfg
func Open(ctx context.Context, cfg config.Config) (library.BlobStorage, error) {
	const op errors.Op = "blob/Open"

	name := cfg.Conf().Providers.Blob

	fn, ok := providers[name]
	if !ok {
		return nil, errors.E(op, errors.ProviderUnknown, errors.Info(name),
			errors.Errorf("expected any of %v", slices.Sorted(maps.Keys(providers))))
	}

	zerolog.Ctx(ctx).Info().Str("provider", name).Msg("opening blob store")
	store, err := fn(ctx, cfg)
	if err != nil {
		return nil, errors.E(op, err)
	}
	return store, nil
}
