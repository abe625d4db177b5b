package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/packs"
	"github.com/zjrosen/iconkit/internal/registry"
	"github.com/zjrosen/iconkit/internal/scanner"
)

func plainFormatter() (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFormatter(&buf, WithPlain()), &buf
}

func TestFromIcon(t *testing.T) {
	ic := icon.New("hero", "pencil", "<svg/>", icon.WithCategory("outline"), icon.WithTags("edit"))

	dto := FromIcon(ic, false)
	require.Equal(t, IconDTO{
		Reference: "hero:pencil",
		Namespace: "hero",
		Name:      "pencil",
		Category:  "outline",
		Tags:      []string{"edit"},
	}, dto)

	require.Equal(t, "<svg/>", FromIcon(ic, true).Markup)
}

func TestFromPack(t *testing.T) {
	p, err := packs.Builtin().Get("heroicons")
	require.NoError(t, err)

	dto := FromPack(p)
	require.Equal(t, "heroicons", dto.ID)
	require.Equal(t, "Heroicons", dto.Name)
	require.Equal(t, "hero", dto.Namespace)
	require.Equal(t, "MIT", dto.License)
	require.Equal(t, 7, dto.Icons)
}

func TestFromSourcesAndReferences(t *testing.T) {
	sources := FromSources([]registry.Source{
		{Loader: "dir:/icons", Markup: "<svg>a</svg>", Active: true},
		{Loader: "static:ionicons", Markup: "<svg>b</svg>"},
	})
	require.Equal(t, []SourceDTO{
		{Loader: "dir:/icons", Markup: "<svg>a</svg>", Active: true},
		{Loader: "static:ionicons", Markup: "<svg>b</svg>"},
	}, sources)

	refs := FromReferences([]scanner.Reference{{Ref: "home", File: "a.html", Line: 3}})
	require.Equal(t, []ReferenceDTO{{Ref: "home", File: "a.html", Line: 3}}, refs)
}

func TestFormatter_FormatJSON(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatJSON([]NamespaceDTO{{Namespace: "ion", Loaders: []string{"static:ionicons"}, Icons: 8}}))

	var got []NamespaceDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "ion", got[0].Namespace)
	require.Contains(t, buf.String(), "\n  {")
}

func TestFormatter_FormatLines(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatLines([]string{"ion:add", "ion:home"}))
	require.Equal(t, "ion:add\nion:home\n", buf.String())
}

func TestFormatter_FormatNamespaces(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatNamespaces([]NamespaceDTO{
		{Namespace: "ion", Loaders: []string{"dir:icons", "static:ionicons"}, Icons: 9},
		{Namespace: "hero", Loaders: []string{"static:heroicons"}, Icons: 7},
	}))
	require.Equal(t,
		"ion   9 icons  dir:icons > static:ionicons\n"+
			"hero  7 icons  static:heroicons\n",
		buf.String())
}

func TestFormatter_FormatGrouped(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatGrouped(map[string][]string{
		"ion":  {"add", "home"},
		"hero": {"pencil"},
	}))
	require.Equal(t, "hero: pencil\nion: add, home\n", buf.String())
}

func TestFormatter_FormatSources(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatSources("ion:home", []SourceDTO{
		{Loader: "dir:icons", Markup: `<svg><path d="1"/></svg>`, Active: true},
		{Loader: "static:ionicons", Markup: `<svg><path d="2"/></svg>`},
		{Loader: "static:mirror", Markup: `<svg><path d="1"/></svg>`},
	}))
	require.Equal(t,
		"ion:home\n"+
			"* 1. dir:icons\n"+
			"  2. static:ionicons\n"+
			"      <svg>\n"+
			"    - <path d=\"1\"/>\n"+
			"    + <path d=\"2\"/>\n"+
			"      </svg>\n"+
			"  3. static:mirror\n"+
			"    identical to active source\n",
		buf.String())
}

func TestFormatter_FormatCollect(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatCollect(CollectDTO{
		DryRun:  true,
		Written: []string{"static/icons/ion/home.svg"},
		Skipped: []string{"static/icons/ion/add.svg"},
		Missing: []string{"ion:nope"},
	}))
	require.Equal(t,
		"[OK] static/icons/ion/home.svg\n"+
			"[EXISTS] static/icons/ion/add.svg\n"+
			"[NOT FOUND] ion:nope\n"+
			"Would write 1 icons, skipped 1, missing 1\n",
		buf.String())
}

func TestFormatter_FormatFields(t *testing.T) {
	f, buf := plainFormatter()
	require.NoError(t, f.FormatFields([]Field{{Key: "size", Value: "3"}, {Key: "capacity", Value: "1000"}}))
	require.Equal(t, "size      3\ncapacity  1000\n", buf.String())
}
