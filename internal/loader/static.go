package loader

import (
	"maps"
	"slices"

	"github.com/zjrosen/iconkit/internal/icon"
)

// Static serves icons from a precomputed name→markup table.
type Static struct {
	source   string
	category string
	icons    map[string]string
	names    []string
}

// StaticOption configures a Static loader.
type StaticOption func(*Static)

// WithStaticCategory stamps every icon served by the table with category.
func WithStaticCategory(category string) StaticOption {
	return func(s *Static) {
		s.category = category
	}
}

// NewStatic copies icons into a new table. source names the table in
// diagnostics (usually the pack id).
func NewStatic(source string, icons map[string]string, opts ...StaticOption) *Static {
	s := &Static{
		source: source,
		icons:  maps.Clone(icons),
	}
	if s.icons == nil {
		s.icons = make(map[string]string)
	}
	s.names = slices.Sorted(maps.Keys(s.icons))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve implements Loader.
func (s *Static) Resolve(name string) (string, bool) {
	markup, ok := s.icons[name]
	return markup, ok
}

// Names implements Lister. Names are sorted.
func (s *Static) Names() ([]string, error) {
	return slices.Clone(s.names), nil
}

// Describe implements Describer.
func (s *Static) Describe() string {
	return "static:" + s.source
}

// Annotate implements Annotator.
func (s *Static) Annotate(string) []icon.Option {
	if s.category == "" {
		return nil
	}
	return []icon.Option{icon.WithCategory(s.category)}
}

// Len returns the number of icons in the table.
func (s *Static) Len() int {
	return len(s.icons)
}
