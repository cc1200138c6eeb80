package registry

import (
	"context"
	"maps"
	"slices"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/rs/zerolog"
)

// Open returns the library.MetadataLookup configured in cfg, it returns nil if
// no lookup provider is configured
func Open(ctx context.Context, cfg config.Config) (library.MetadataLookup, error) {
	const op errors.Op = "registry/Open"

	name := cfg.Conf().Providers.Lookup
	if name == "" {
		zerolog.Ctx(ctx).Info().Msg("online metadata lookup disabled")
		return nil, nil
	}

	fn, ok := providers[name]
	if !ok {
		return nil, errors.E(op, errors.ProviderUnknown, errors.Info(name),
			errors.Errorf("expected any of %v", slices.Sorted(maps.Keys(providers))))
	}

	lookup, err := fn(ctx, cfg)
	if err != nil {
		return nil, errors.E(op, err)
	}

	return &timeoutLookup{
		name:    name,
		timeout: config.Value(cfg, func(c config.Config) config.Duration {
			return c.Conf().Ingest.LookupTimeout
		}),
		wrapped: lookup,
	}, nil
}

// timeoutLookup wraps another lookup with the configured timeout and turns
// errors.LookupNoResults into a nil result
type timeoutLookup struct {
	name    string
	timeout func() config.Duration
	wrapped library.MetadataLookup
}

func (tl *timeoutLookup) Lookup(ctx context.Context, title, artist string) (*library.Metadata, error) {
	const op errors.Op = "registry/timeoutLookup.Lookup"

	if timeout := tl.timeout().Std(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	m, err := tl.wrapped.Lookup(ctx, title, artist)
	if errors.Is(errors.LookupNoResults, err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.E(op, err, errors.Info(tl.name))
	}
	return m, nil
}
