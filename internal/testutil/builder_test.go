package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder_WritesIcons(t *testing.T) {
	b := NewBuilder(t)
	root := b.WithIcon("home").
		WithIcon("nested/star", ID("gold"), ViewBox("0 0 512 512"), Class("filled"), Body("<circle/>")).
		WithIcon("raw", Raw("<svg>raw</svg>")).
		Build()

	require.Equal(t, b.Root(), root)

	data, err := os.ReadFile(filepath.Join(root, "home.svg"))
	require.NoError(t, err)
	require.Equal(t,
		`<svg xmlns="http://www.w3.org/2000/svg" id="home" viewBox="0 0 24 24"><path d="M0 0h24v24H0z"/></svg>`,
		string(data))

	data, err = os.ReadFile(b.Path("nested/star.svg"))
	require.NoError(t, err)
	require.Equal(t,
		`<svg xmlns="http://www.w3.org/2000/svg" id="gold" viewBox="0 0 512 512" class="filled"><circle/></svg>`,
		string(data))

	data, err = os.ReadFile(b.Path("raw.svg"))
	require.NoError(t, err)
	require.Equal(t, "<svg>raw</svg>", string(data))
}

func TestBuilder_BuildIsIncremental(t *testing.T) {
	b := NewBuilder(t)
	b.WithFile("a.txt", "one").Build()
	require.NoError(t, os.WriteFile(b.Path("a.txt"), []byte("edited"), 0o644))

	b.WithFile("b.txt", "two").Build()
	data, err := os.ReadFile(b.Path("a.txt"))
	require.NoError(t, err)
	require.Equal(t, "edited", string(data), "already built files are not rewritten")
	_, err = os.Stat(b.Path("b.txt"))
	require.NoError(t, err)
}

func TestPresets(t *testing.T) {
	b := NewBuilder(t).WithBrandIcons().WithTemplates("templates")
	b.Build()

	for _, rel := range []string{
		"logo.svg",
		"logo-dark.svg",
		"social/github.svg",
		"templates/base.html",
		"templates/partials/nav.html",
		"templates/emails/welcome.txt",
		"templates/.hidden/skip.html",
		"templates/missing.html",
	} {
		_, err := os.Stat(b.Path(rel))
		require.NoError(t, err, rel)
	}
}
