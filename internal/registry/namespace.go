package registry

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/loader"
)

// SourceRegistered labels icons added with Register rather than served by a
// loader.
const SourceRegistered = "registered"

// namespace is one entry of the namespace table: its ordered loaders and the
// memo of icons already materialized for it. The memo is not a cache; an
// entry stays until explicitly invalidated.
type namespace struct {
	key string

	mu         sync.RWMutex
	loaders    []loader.Loader
	memo       map[string]*icon.Icon
	registered map[string]struct{}
	// gen changes whenever a memo entry is dropped or replaced. A load that
	// saw a different gen when it started must not be memoized.
	gen uint64
}

func newNamespace(key string) *namespace {
	return &namespace{
		key:        key,
		memo:       make(map[string]*icon.Icon),
		registered: make(map[string]struct{}),
	}
}

func (n *namespace) addLoader(l loader.Loader, prepend bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if prepend {
		n.loaders = slices.Insert(n.loaders, 0, l)
		return
	}
	n.loaders = append(n.loaders, l)
}

func (n *namespace) loaderSnapshot() []loader.Loader {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return slices.Clone(n.loaders)
}

func (n *namespace) memoized(name string) (*icon.Icon, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ic, ok := n.memo[name]
	return ic, ok
}

// register stores ic unconditionally, replacing any previous icon.
func (n *namespace) register(ic *icon.Icon) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.memo[ic.Name()] = ic
	n.registered[ic.Name()] = struct{}{}
	n.gen++
}

func (n *namespace) generation() uint64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gen
}

// memoize stores ic unless another icon got there first, and returns the
// icon that is now authoritative for the name. ok is false when the memo
// changed since gen was read; ic is then returned unstored.
func (n *namespace) memoize(ic *icon.Icon, gen uint64) (_ *icon.Icon, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if existing, found := n.memo[ic.Name()]; found {
		return existing, true
	}
	if n.gen != gen {
		return ic, false
	}
	n.memo[ic.Name()] = ic
	return ic, true
}

func (n *namespace) forget(name string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.memo[name]
	delete(n.memo, name)
	delete(n.registered, name)
	n.gen++
	return ok
}

// forgetLoaded drops every memoized icon that came from a loader and returns
// the dropped names. Directly registered icons are kept.
func (n *namespace) forgetLoaded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	var dropped []string
	for name := range n.memo {
		if _, ok := n.registered[name]; ok {
			continue
		}
		delete(n.memo, name)
		dropped = append(dropped, name)
	}
	n.gen++
	return dropped
}

func (n *namespace) memoLen() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.memo)
}

// load asks each loader in order and returns the first hit. Loaders are
// called without holding the lock.
func (n *namespace) load(name string) (ic *icon.Icon, source string, ok bool) {
	for _, l := range n.loaderSnapshot() {
		markup, found := l.Resolve(name)
		if !found {
			continue
		}
		return icon.New(n.key, name, markup, loader.Annotate(l, name)...), loader.Describe(l), true
	}
	return nil, "", false
}

// names yields loader names first (first loader wins on duplicates), then
// directly registered names no loader listed.
func (n *namespace) names() iter.Seq[string] {
	return func(yield func(string) bool) {
		n.mu.RLock()
		loaders := slices.Clone(n.loaders)
		registered := slices.Sorted(maps.Keys(n.registered))
		n.mu.RUnlock()

		seen := make(map[string]struct{})
		for _, l := range loaders {
			for _, name := range loader.Names(l) {
				if _, dup := seen[name]; dup {
					continue
				}
				seen[name] = struct{}{}
				if !yield(name) {
					return
				}
			}
		}
		for _, name := range registered {
			if _, dup := seen[name]; dup {
				continue
			}
			if !yield(name) {
				return
			}
		}
	}
}

// Source is one loader's view of an icon, used to compare shadowed content.
type Source struct {
	Loader string `json:"loader"`
	Markup string `json:"markup"`
	Active bool   `json:"active"`
}

// sources lists the registered icon (if any) and every loader that can serve
// name, in precedence order. The memoized icon, when present, is marked
// active.
func (n *namespace) sources(name string) []Source {
	n.mu.RLock()
	current, memoized := n.memo[name]
	_, registered := n.registered[name]
	loaders := slices.Clone(n.loaders)
	n.mu.RUnlock()

	var out []Source
	if registered {
		out = append(out, Source{Loader: SourceRegistered, Markup: current.Markup(), Active: true})
	}
	for _, l := range loaders {
		markup, ok := l.Resolve(name)
		if !ok {
			continue
		}
		active := false
		if !registered {
			if memoized {
				active = markup == current.Markup() && !slices.ContainsFunc(out, func(s Source) bool { return s.Active })
			} else {
				active = len(out) == 0
			}
		}
		out = append(out, Source{Loader: loader.Describe(l), Markup: markup, Active: active})
	}
	return out
}
