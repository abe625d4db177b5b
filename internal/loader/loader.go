// Package loader defines the sources a namespace can draw icon markup from:
// static in-memory tables (bundled packs), directories of SVG files, and
// caller-supplied functions.
//
// Loaders are stateless from the registry's point of view. The registry
// memoizes whatever a loader returns, so a loader is normally asked for a
// given name at most once per process.
package loader

import (
	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/log"
)

// Loader resolves a bare icon name to raw SVG markup.
// ok is false when the loader cannot serve the name. Found-but-empty content
// is reported as ("", true).
type Loader interface {
	Resolve(name string) (markup string, ok bool)
}

// Lister is implemented by loaders that can enumerate the names they serve.
type Lister interface {
	Names() ([]string, error)
}

// Describer is implemented by loaders that can name their source for
// diagnostics ("static:ionicons", "dir:/app/icons").
type Describer interface {
	Describe() string
}

// Annotator is implemented by loaders that attach metadata to the icons they
// serve.
type Annotator interface {
	Annotate(name string) []icon.Option
}

// Names enumerates l when it implements Lister. Enumeration errors are logged
// and yield no names so one broken source cannot break a listing.
func Names(l Loader) []string {
	lister, ok := l.(Lister)
	if !ok {
		return nil
	}
	names, err := lister.Names()
	if err != nil {
		log.ErrorErr(log.CatLoader, "Failed to enumerate loader", err, "loader", Describe(l))
		return nil
	}
	return names
}

// Describe returns the loader's self-description, or "custom".
func Describe(l Loader) string {
	if d, ok := l.(Describer); ok {
		return d.Describe()
	}
	return "custom"
}

// Annotate returns the loader's metadata options for name, if any.
func Annotate(l Loader, name string) []icon.Option {
	if a, ok := l.(Annotator); ok {
		return a.Annotate(name)
	}
	return nil
}
