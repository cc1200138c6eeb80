// Package buildinfo exposes the version control information embedded by the
// go toolchain
package buildinfo

import (
	"runtime/debug"
)

const (
	keyRevision = "vcs.revision"
	keyTime     = "vcs.time"
	keyModified = "vcs.modified"
)

var (
	GitRef                 = getBuildInfoKey(keyRevision, "(devel)")
	GitTime                = getBuildInfoKey(keyTime, "unknown")
	GitModified            = getBuildInfoKey(keyModified, "false") == "true"
	InstrumentationName    = "github.com/kotone-fm/kotone"
	InstrumentationVersion = GitRef
	Version                = GitRef
	ShortRef               = shortRef(GitRef)
)

func shortRef(ref string) string {
	if len(ref) > 7 {
		return ref[:7]
	}
	return ref
}

func getBuildInfoKey(key string, def string) string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == key {
				return setting.Value
			}
		}
	}
	return def
}

// Dependencies returns the path and version of every module compiled in
func Dependencies() [][2]string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	deps := make([][2]string, 0, len(info.Deps))
	for _, mod := range info.Deps {
		deps = append(deps, [2]string{mod.Path, mod.Version})
	}
	return deps
}
