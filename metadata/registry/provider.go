package registry

import (
	"context"

	library "github.com/kotone-fm/kotone"
	"github.com/kotone-fm/kotone/config"
)

// OpenFn is a function that returns a library.MetadataLookup configured with
// the config given
type OpenFn func(context.Context, config.Config) (library.MetadataLookup, error)

var providers = map[string]OpenFn{}

// Register registers an OpenFn under the name given, it is not safe to
// call Register from multiple goroutines
//
// Register will panic if the name already exists
func Register(name string, fn OpenFn) {
	if _, ok := providers[name]; ok {
		panic("provider already exists with name: " + name)
	}
	providers[name] = fn
}
