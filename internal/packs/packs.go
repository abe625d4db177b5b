// Package packs bundles icon collections into the binary and registers them
// with a registry. Packs are selected by id through an explicit Table; there
// is no runtime discovery.
package packs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/iconkit/internal/loader"
	"github.com/zjrosen/iconkit/internal/log"
	"github.com/zjrosen/iconkit/internal/registry"
)

//go:embed data
var dataFS embed.FS

// ManifestFile names the per-pack metadata file.
const ManifestFile = "pack.yaml"

// Pack errors
var (
	ErrUnknownPack        = errors.New("unknown pack")
	ErrMissingNamespace   = errors.New("pack manifest has no namespace")
	ErrDuplicatePackID    = errors.New("pack id already in table")
	ErrEmptyPackID        = errors.New("pack id is required")
	ErrNilPackConstructor = errors.New("pack constructor is nil")
)

// Manifest is the pack.yaml metadata.
type Manifest struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace"`
	Version   string `yaml:"version"`
	License   string `yaml:"license"`
	Homepage  string `yaml:"homepage"`
	// Category stamps every icon in the pack (e.g. "outline").
	Category string `yaml:"category,omitempty"`
}

// Pack is a loaded icon collection.
type Pack struct {
	ID       string
	Manifest Manifest
	icons    map[string]string
}

// Namespace returns the namespace the pack registers under.
func (p *Pack) Namespace() string {
	return p.Manifest.Namespace
}

// Len returns the number of icons in the pack.
func (p *Pack) Len() int {
	return len(p.icons)
}

// Loader builds a static-table loader over the pack's icons.
func (p *Pack) Loader() *loader.Static {
	var opts []loader.StaticOption
	if p.Manifest.Category != "" {
		opts = append(opts, loader.WithStaticCategory(p.Manifest.Category))
	}
	return loader.NewStatic(p.ID, p.icons, opts...)
}

// Register adds the pack's loader to reg under the pack namespace.
func (p *Pack) Register(reg *registry.Registry) error {
	if p.Manifest.Namespace == "" {
		return fmt.Errorf("register pack %s: %w", p.ID, ErrMissingNamespace)
	}
	reg.RegisterLoader(p.Loader(), p.Manifest.Namespace)
	log.Debug(log.CatPack, "Registered pack", "pack", p.ID, "namespace", p.Manifest.Namespace, "icons", p.Len())
	return nil
}

// Load reads a pack laid out as <dir>/pack.yaml plus <dir>/**/*.svg from fsys.
// Icon names are the slash-separated paths without the extension.
func Load(fsys fs.FS, id string) (*Pack, error) {
	data, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("read %s manifest: %w", id, err)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s manifest: %w", id, err)
	}
	if manifest.Namespace == "" {
		return nil, fmt.Errorf("load pack %s: %w", id, ErrMissingNamespace)
	}

	icons := make(map[string]string)
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != loader.Extension {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		icons[loader.NormalizeName(strings.TrimSuffix(p, loader.Extension))] = loader.NormalizeMarkup(string(content))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk pack %s: %w", id, err)
	}

	return &Pack{ID: id, Manifest: manifest, icons: icons}, nil
}

// Constructor builds a pack on demand.
type Constructor func() (*Pack, error)

// Table maps pack ids to constructors. Loaded packs are memoized.
type Table struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	loaded       map[string]*Pack
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		constructors: make(map[string]Constructor),
		loaded:       make(map[string]*Pack),
	}
}

// Add registers a constructor under id.
func (t *Table) Add(id string, c Constructor) error {
	if id == "" {
		return ErrEmptyPackID
	}
	if c == nil {
		return fmt.Errorf("%s: %w", id, ErrNilPackConstructor)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.constructors[id]; ok {
		return fmt.Errorf("%s: %w", id, ErrDuplicatePackID)
	}
	t.constructors[id] = c
	return nil
}

// IDs returns the known pack ids, sorted.
func (t *Table) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]string, 0, len(t.constructors))
	for id := range t.constructors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Get constructs (once) and returns the pack for id.
func (t *Table) Get(id string) (*Pack, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.loaded[id]; ok {
		return p, nil
	}
	c, ok := t.constructors[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownPack)
	}
	p, err := c()
	if err != nil {
		return nil, err
	}
	t.loaded[id] = p
	return p, nil
}

// RegisterAll registers the listed packs in order. Unknown ids are logged
// and skipped; other failures are returned after the remaining packs have
// been registered.
func (t *Table) RegisterAll(reg *registry.Registry, ids []string) error {
	var errs []error
	for _, id := range ids {
		p, err := t.Get(id)
		if errors.Is(err, ErrUnknownPack) {
			log.Warn(log.CatPack, "Skipping unknown pack", "pack", id, "known", t.IDs())
			continue
		}
		if err == nil {
			err = p.Register(reg)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Embedded returns a constructor for the bundled pack stored under
// data/<id>.
func Embedded(id string) Constructor {
	return func() (*Pack, error) {
		sub, err := fs.Sub(dataFS, path.Join("data", id))
		if err != nil {
			return nil, fmt.Errorf("open bundled pack %s: %w", id, err)
		}
		return Load(sub, id)
	}
}

// BuiltinIDs lists the packs compiled into the binary.
var BuiltinIDs = []string{"ionicons", "heroicons", "material", "tabler", "lucide", "fontawesome"}

// Builtin returns a table holding every bundled pack.
func Builtin() *Table {
	t := NewTable()
	for _, id := range BuiltinIDs {
		// ids are unique and constructors non-nil, so Add cannot fail.
		_ = t.Add(id, Embedded(id))
	}
	return t
}
