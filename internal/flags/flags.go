// Package flags holds the feature flags that change cache semantics. Values
// come from the `flags` config map and are fixed once the registry is built.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/iconkit/internal/log"
)

// FlagInvalidateOnLoaderRegistration makes RegisterLoader drop the
// namespace's loaded icons from every cache so a newly added loader takes
// effect immediately. Off, already-resolved icons keep their original source
// until evicted or invalidated.
const FlagInvalidateOnLoaderRegistration = "invalidate-on-loader-registration"

// Definition describes a flag this build understands.
type Definition struct {
	Name        string `json:"name"`
	Default     bool   `json:"default"`
	Description string `json:"description"`
}

// Definitions is the table of known flags, sorted by name.
var Definitions = []Definition{
	{
		Name:        FlagInvalidateOnLoaderRegistration,
		Description: "registering a loader drops that namespace's loaded icons from all caches",
	},
}

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	i := slices.IndexFunc(Definitions, func(d Definition) bool { return d.Name == name })
	if i < 0 {
		return Definition{}, false
	}
	return Definitions[i], true
}

// Registry is the resolved flag state. A nil *Registry reports every flag
// at its default.
type Registry struct {
	values map[string]bool
}

// New resolves configured values over the defaults. Unknown names are kept
// but logged.
func New(configured map[string]bool) *Registry {
	values := make(map[string]bool, len(Definitions)+len(configured))
	for _, d := range Definitions {
		values[d.Name] = d.Default
	}
	for name, on := range configured {
		if _, ok := Lookup(name); !ok {
			log.Warn(log.CatConfig, "Unknown feature flag in config", "flag", name)
		}
		values[name] = on
	}
	r := &Registry{values: values}
	log.Debug(log.CatConfig, "Feature flags resolved", "enabled", r.EnabledNames())
	return r
}

// Enabled reports whether name is on. Unknown names are off.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		d, _ := Lookup(name)
		return d.Default
	}
	return r.values[name]
}

// All returns a copy of the resolved values.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return New(nil).All()
	}
	return maps.Clone(r.values)
}

// EnabledNames returns the names of every enabled flag, sorted.
func (r *Registry) EnabledNames() []string {
	var names []string
	for name, on := range r.All() {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
