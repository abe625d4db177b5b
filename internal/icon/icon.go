// Package icon defines the immutable Icon value shared by loaders, caches and
// the renderer, plus helpers for parsing icon references.
package icon

import (
	"slices"
	"strings"
)

// Separator splits a namespace from an icon name in a reference ("ion:home").
const Separator = ":"

// Icon is one concrete icon. It is immutable after construction: every
// accessor returns a value or a copy, so a single *Icon can be shared by the
// memo set, the LRU and any number of concurrent renders.
type Icon struct {
	namespace string
	name      string
	markup    string
	category  string
	tags      []string
}

// Option configures optional Icon metadata.
type Option func(*Icon)

// WithCategory sets the icon category (e.g. "outline", "solid").
func WithCategory(category string) Option {
	return func(i *Icon) {
		i.category = category
	}
}

// WithTags attaches a set of tags. Duplicates are removed and the result is
// kept sorted.
func WithTags(tags ...string) Option {
	return func(i *Icon) {
		set := make([]string, 0, len(tags))
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				set = append(set, t)
			}
		}
		slices.Sort(set)
		i.tags = slices.Compact(set)
	}
}

// New creates an Icon.
func New(namespace, name, markup string, opts ...Option) *Icon {
	i := &Icon{
		namespace: namespace,
		name:      name,
		markup:    markup,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Namespace returns the namespace key (e.g. "ion").
func (i *Icon) Namespace() string {
	return i.namespace
}

// Name returns the icon name, unique within its namespace.
func (i *Icon) Name() string {
	return i.name
}

// Markup returns the raw SVG source.
func (i *Icon) Markup() string {
	return i.markup
}

// Category returns the optional category, or "".
func (i *Icon) Category() string {
	return i.category
}

// Tags returns a copy of the icon tags.
func (i *Icon) Tags() []string {
	return slices.Clone(i.tags)
}

// HasTag reports whether the icon carries tag.
func (i *Icon) HasTag(tag string) bool {
	_, found := slices.BinarySearch(i.tags, tag)
	return found
}

// Key returns the fully-qualified "namespace:name" identifier.
func (i *Icon) Key() string {
	return Key(i.namespace, i.name)
}

// Key joins a namespace and name into a fully-qualified reference.
func Key(namespace, name string) string {
	return namespace + Separator + name
}

// ParseReference splits a reference on the first separator. Unqualified
// references resolve to defaultNamespace.
//
//	ParseReference("hero:pencil", "ion") // "hero", "pencil"
//	ParseReference("home", "ion")        // "ion", "home"
func ParseReference(ref, defaultNamespace string) (namespace, name string) {
	if ns, n, ok := strings.Cut(ref, Separator); ok {
		return ns, n
	}
	return defaultNamespace, ref
}

// IsQualified reports whether ref carries an explicit namespace.
func IsQualified(ref string) bool {
	return strings.Contains(ref, Separator)
}
