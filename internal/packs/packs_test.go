package packs

import (
	"context"
	"errors"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/iconkit/internal/registry"
)

func TestBuiltin_LoadsEveryPack(t *testing.T) {
	table := Builtin()
	require.Equal(t, []string{"fontawesome", "heroicons", "ionicons", "lucide", "material", "tabler"}, table.IDs())

	namespaces := map[string]string{
		"ionicons":    "ion",
		"heroicons":   "hero",
		"material":    "material",
		"tabler":      "tabler",
		"lucide":      "lucide",
		"fontawesome": "fa",
	}
	for id, ns := range namespaces {
		p, err := table.Get(id)
		require.NoError(t, err, id)
		require.Equal(t, ns, p.Namespace(), id)
		require.NotEmpty(t, p.Manifest.Name, id)
		require.NotEmpty(t, p.Manifest.License, id)
		require.Positive(t, p.Len(), id)
	}
}

func TestTable_GetMemoizes(t *testing.T) {
	calls := 0
	table := NewTable()
	require.NoError(t, table.Add("custom", func() (*Pack, error) {
		calls++
		return &Pack{ID: "custom", Manifest: Manifest{Namespace: "c"}}, nil
	}))

	first, err := table.Get("custom")
	require.NoError(t, err)
	second, err := table.Get("custom")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, calls)
}

func TestTable_AddErrors(t *testing.T) {
	table := NewTable()
	require.ErrorIs(t, table.Add("", Embedded("ionicons")), ErrEmptyPackID)
	require.ErrorIs(t, table.Add("x", nil), ErrNilPackConstructor)
	require.NoError(t, table.Add("x", Embedded("ionicons")))
	require.ErrorIs(t, table.Add("x", Embedded("ionicons")), ErrDuplicatePackID)

	_, err := table.Get("nope")
	require.ErrorIs(t, err, ErrUnknownPack)
}

func TestPack_RegisterServesIcons(t *testing.T) {
	reg := registry.New(registry.Options{CacheSize: 8})
	t.Cleanup(reg.Close)

	p, err := Builtin().Get("heroicons")
	require.NoError(t, err)
	require.NoError(t, p.Register(reg))

	ic, err := reg.Get(context.Background(), "hero:pencil", "")
	require.NoError(t, err)
	require.Contains(t, ic.Markup(), "<svg")
	require.Equal(t, "outline", ic.Category())

	names := slices.Collect(reg.ListIcons("hero"))
	require.Contains(t, names, "pencil-solid")
	require.True(t, slices.IsSorted(names))
}

func TestRegisterAll_SkipsUnknownPacks(t *testing.T) {
	reg := registry.New(registry.Options{})
	t.Cleanup(reg.Close)

	err := Builtin().RegisterAll(reg, []string{"ionicons", "not-a-pack", "lucide"})
	require.NoError(t, err)
	require.Equal(t, []string{"ion", "lucide"}, reg.ListNamespaces())
}

func TestRegisterAll_ReportsBrokenPacks(t *testing.T) {
	reg := registry.New(registry.Options{})
	t.Cleanup(reg.Close)

	boom := errors.New("boom")
	table := Builtin()
	require.NoError(t, table.Add("broken", func() (*Pack, error) { return nil, boom }))

	err := table.RegisterAll(reg, []string{"broken", "tabler"})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"tabler"}, reg.ListNamespaces(), "later packs still register")
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"pack.yaml":         {Data: []byte("name: Test\nnamespace: t\ncategory: solid\n")},
		"dot.svg":           {Data: []byte("  <svg>dot</svg>\n")},
		"nested/circle.svg": {Data: []byte("<svg>circle</svg>")},
		"README.md":         {Data: []byte("ignored")},
	}
	p, err := Load(fsys, "test")
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())

	l := p.Loader()
	markup, ok := l.Resolve("dot")
	require.True(t, ok)
	require.Equal(t, "<svg>dot</svg>", markup)
	_, ok = l.Resolve("nested/circle")
	require.True(t, ok)
	require.Equal(t, "static:test", l.Describe())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "empty")
	require.Error(t, err)

	_, err = Load(fstest.MapFS{"pack.yaml": {Data: []byte("name: x\n")}}, "nons")
	require.ErrorIs(t, err, ErrMissingNamespace)

	_, err = Load(fstest.MapFS{"pack.yaml": {Data: []byte("name: [unclosed\n")}}, "bad")
	require.ErrorContains(t, err, "parse bad manifest")

	p := &Pack{ID: "orphan"}
	reg := registry.New(registry.Options{})
	t.Cleanup(reg.Close)
	require.ErrorIs(t, p.Register(reg), ErrMissingNamespace)
}
