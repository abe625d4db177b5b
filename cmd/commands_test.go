package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/config"
	"github.com/zjrosen/iconkit/internal/presentation"
	"github.com/zjrosen/iconkit/internal/registry"
	"github.com/zjrosen/iconkit/internal/testutil"
)

func testApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	a, err := app.Build(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a polling
// test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRenderFlags_Attributes(t *testing.T) {
	f := renderFlags{
		size:      "20",
		class:     "btn",
		ariaLabel: "Edit",
		attrs:     []string{"data_role=icon", "size=10"},
	}
	attrs, err := f.attributes()
	require.NoError(t, err)

	size, _ := attrs.Get("size")
	require.Equal(t, "20", size, "explicit flag beats --attr")
	role, _ := attrs.Get("data_role")
	require.Equal(t, "icon", role)
	require.True(t, attrs.Has("css_class"))
	require.False(t, attrs.Has("fill"))

	_, err = renderFlags{attrs: []string{"novalue"}}.attributes()
	require.Error(t, err)
}

func TestRunRender(t *testing.T) {
	a := testApp(t, config.Defaults())
	var out bytes.Buffer

	require.NoError(t, runRender(context.Background(), &out, a, "hero:pencil", renderFlags{size: "16", class: "icon"}))
	got := out.String()
	require.True(t, strings.HasPrefix(got, "<svg "), got)
	require.Contains(t, got, `width="16"`)
	require.Contains(t, got, `class="icon"`)
}

func TestRunRender_JSON(t *testing.T) {
	a := testApp(t, config.Defaults())
	var out bytes.Buffer

	require.NoError(t, runRender(context.Background(), &out, a, "home", renderFlags{json: true}))
	var dto presentation.IconDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &dto))
	require.Equal(t, "ion:home", dto.Reference)
	require.NotEmpty(t, dto.Markup)
}

func TestRunRender_Missing(t *testing.T) {
	a := testApp(t, config.Defaults())
	var out bytes.Buffer

	require.NoError(t, runRender(context.Background(), &out, a, "ion:nope", renderFlags{}))
	require.Equal(t, "\n", out.String(), "silent mode prints an empty line")

	err := runRender(context.Background(), &out, a, "ion:nope", renderFlags{json: true})
	require.ErrorIs(t, err, registry.ErrNotFound)
}

func TestRunList(t *testing.T) {
	a := testApp(t, config.Defaults())

	var out bytes.Buffer
	require.NoError(t, runList(&out, a, "hero", false))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Contains(t, lines, "pencil")
	require.NotContains(t, lines, "hero:pencil")

	out.Reset()
	require.NoError(t, runList(&out, a, "", true))
	var all []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &all))
	require.Contains(t, all, "hero:pencil")
	require.Contains(t, all, "ion:home")

	out.Reset()
	require.NoError(t, runList(&out, a, "unknown", true))
	require.JSONEq(t, "[]", out.String())
}

func TestRunNamespaces(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "logo.svg"), "<svg/>")
	cfg := config.Defaults()
	cfg.Packs = []string{"heroicons"}
	cfg.IconDirs = map[string]string{"brand": dir}
	a := testApp(t, cfg)

	var out bytes.Buffer
	require.NoError(t, runNamespaces(&out, a, true))
	var dtos []presentation.NamespaceDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	require.Equal(t, "brand", dtos[0].Namespace)
	require.Equal(t, 1, dtos[0].Icons)
	require.Equal(t, []string{"dir:" + dir}, dtos[0].Loaders)
	require.Equal(t, "hero", dtos[1].Namespace)
	require.Equal(t, []string{"static:heroicons"}, dtos[1].Loaders)

	out.Reset()
	require.NoError(t, runNamespaces(&out, a, false))
	require.Contains(t, out.String(), "static:heroicons")
}

func TestRunScan(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "base.html"), "{% icon \"home\" %}\n{% icon \"hero:pencil\" %}")
	testutil.WriteFile(t, filepath.Join(root, "mail.txt"), `{{ icon "home" }}`)
	cfg := config.Defaults()

	var out bytes.Buffer
	require.NoError(t, runScan(context.Background(), &out, cfg, []string{root}, scanFlags{}))
	require.Contains(t, out.String(), "ion: home")
	require.Contains(t, out.String(), "hero: pencil")

	out.Reset()
	require.NoError(t, runScan(context.Background(), &out, cfg, []string{root}, scanFlags{unique: true}))
	require.Equal(t, "hero:pencil\nhome\n", out.String())

	out.Reset()
	require.NoError(t, runScan(context.Background(), &out, cfg, []string{root}, scanFlags{json: true, extensions: []string{".html"}}))
	var refs []presentation.ReferenceDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &refs))
	require.Len(t, refs, 2)
	require.Equal(t, 2, refs[1].Line)
}

func TestRunCollect(t *testing.T) {
	root := t.TempDir()
	templates := filepath.Join(root, "templates")
	testutil.WriteFile(t, filepath.Join(templates, "page.html"), `{% icon "home" %} {% icon "ion:missing-one" %}`)
	a := testApp(t, config.Defaults())
	out := filepath.Join(root, "static")

	var buf bytes.Buffer
	require.NoError(t, runCollect(context.Background(), &buf, a, []string{templates},
		collectFlags{central: true, output: out, json: true, concurrency: 2}))

	var dto presentation.CollectDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dto))
	require.Equal(t, []string{filepath.Join(out, "ion", "home.svg")}, dto.Written)
	require.Equal(t, []string{"ion:missing-one"}, dto.Missing)
	require.Empty(t, dto.Skipped)

	buf.Reset()
	require.NoError(t, runCollect(context.Background(), &buf, a, []string{templates},
		collectFlags{central: true, output: out}))
	require.Contains(t, buf.String(), "[EXISTS]")
	require.Contains(t, buf.String(), "Wrote 0 icons, skipped 1, missing 1")
}

func TestRunCatalog_Raw(t *testing.T) {
	cfg := config.Defaults()
	cfg.Packs = []string{"heroicons", "ionicons"}
	a := testApp(t, cfg)

	var out bytes.Buffer
	require.NoError(t, runCatalog(&out, a, 3, 80, true))
	md := out.String()
	require.True(t, strings.HasPrefix(md, "# Icon catalog"), md)
	require.Contains(t, md, "## hero")
	require.Contains(t, md, "## ion")
	require.Contains(t, md, "MIT")
	require.Contains(t, md, "more_")
}

func TestCatalogEntries_Sample(t *testing.T) {
	cfg := config.Defaults()
	cfg.Packs = []string{"heroicons"}
	a := testApp(t, cfg)

	entries := catalogEntries(a, 2)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Sample, 2)
	require.NotNil(t, entries[0].Pack)
	require.Equal(t, "heroicons", entries[0].Pack.ID)
}

func TestRunCatalog_Rendered(t *testing.T) {
	cfg := config.Defaults()
	cfg.Packs = []string{"heroicons"}
	a := testApp(t, cfg)

	var out bytes.Buffer
	require.NoError(t, runCatalog(&out, a, 5, 80, false))
	require.Contains(t, out.String(), "hero")
}

func TestRunSources(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "home.svg"), `<svg id="local"></svg>`)
	cfg := config.Defaults()
	cfg.Packs = []string{"ionicons"}
	cfg.IconDirs = map[string]string{"ion": dir}
	a := testApp(t, cfg)

	var out bytes.Buffer
	require.NoError(t, runSources(&out, a, "home", false))
	text := out.String()
	require.Contains(t, text, "ion:home")
	require.Contains(t, text, "* 1. dir:"+dir)
	require.Contains(t, text, "  2. static:ionicons")
	require.Contains(t, text, `    - <svg id="local">`)

	out.Reset()
	require.NoError(t, runSources(&out, a, "ion:home", true))
	var dtos []presentation.SourceDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	require.True(t, dtos[0].Active)

	require.ErrorIs(t, runSources(&out, a, "ion:nope", false), registry.ErrNotFound)
}

func TestRunWatch(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Defaults()
	cfg.AutoDiscover = false
	cfg.IconDirs = map[string]string{"brand": dir}
	cfg.Watch.Debounce = 50 * time.Millisecond
	a := testApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	errCh := make(chan error, 1)
	go func() { errCh <- runWatch(ctx, out, a) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Watching 1 icon directories") },
		2*time.Second, 10*time.Millisecond)

	testutil.WriteFile(t, filepath.Join(dir, "logo.svg"), "<svg/>")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "changed brand:logo") },
		3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRunWatch_NoDirs(t *testing.T) {
	cfg := config.Defaults()
	cfg.AutoDiscover = false
	a := testApp(t, cfg)

	require.Error(t, runWatch(context.Background(), &bytes.Buffer{}, a))
}

func TestScanAndCollect_Fixture(t *testing.T) {
	b := testutil.NewBuilder(t)
	b.WithTemplates("templates").Build()
	icons := testutil.NewBuilder(t).WithBrandIcons().Build()

	cfg := config.Defaults()
	cfg.IconDirs = map[string]string{"brand": icons}
	cfg.Scan.Dirs = []string{b.Path("templates")}
	a := testApp(t, cfg)

	var out bytes.Buffer
	require.NoError(t, runScan(context.Background(), &out, cfg, nil, scanFlags{unique: true}))
	require.Equal(t, "brand:logo\nhero:pencil\nhero:x-mark\nhome\nion:does-not-exist\nion:menu\n", out.String(),
		"hidden directories are skipped")

	out.Reset()
	require.NoError(t, runCollect(context.Background(), &out, a, nil, collectFlags{json: true}))
	var dto presentation.CollectDTO
	require.NoError(t, json.Unmarshal(out.Bytes(), &dto))

	static := filepath.Join(b.Path("templates"), "static", "icons")
	require.Equal(t, []string{
		filepath.Join(static, "brand", "logo.svg"),
		filepath.Join(static, "hero", "pencil.svg"),
		filepath.Join(static, "hero", "x-mark.svg"),
		filepath.Join(static, "ion", "home.svg"),
		filepath.Join(static, "ion", "menu.svg"),
	}, dto.Written)
	require.Equal(t, []string{"ion:does-not-exist"}, dto.Missing)
}
