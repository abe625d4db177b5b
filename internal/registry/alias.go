package registry

import (
	"maps"
	"sync"

	"github.com/zjrosen/iconkit/internal/icon"
)

// MaxAliasHops bounds how many alias substitutions a single lookup may make.
const MaxAliasHops = 2

// aliasTable maps alias strings to targets. Targets are resolved at lookup
// time, so updating one alias affects every chain that passes through it.
type aliasTable struct {
	mu      sync.RWMutex
	entries map[string]string
}

func newAliasTable() *aliasTable {
	return &aliasTable{entries: make(map[string]string)}
}

func (a *aliasTable) set(alias, target string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[alias] = target
}

func (a *aliasTable) all() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.entries)
}

func (a *aliasTable) len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// resolve parses ref and follows aliases. At each step the reference as
// written is looked up first, then its qualified "namespace:name" form.
func (a *aliasTable) resolve(ref, defaultNamespace string) (namespace, name string, hops int, err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	current := ref
	chain := []string{ref}
	for {
		namespace, name = icon.ParseReference(current, defaultNamespace)
		target, ok := a.entries[current]
		if !ok {
			target, ok = a.entries[icon.Key(namespace, name)]
		}
		if !ok {
			return namespace, name, hops, nil
		}

		hops++
		chain = append(chain, target)
		if hops > MaxAliasHops {
			return "", "", hops, &AliasCycleError{Reference: ref, Chain: chain}
		}
		current = target
	}
}
