package presentation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkupDiff_SplitsSingleLineTags(t *testing.T) {
	lines := MarkupDiff(`<svg><path d="1"/><circle/></svg>`, `<svg><path d="2"/><circle/></svg>`)
	require.Equal(t, []DiffLine{
		{Op: DiffEqual, Text: "<svg>"},
		{Op: DiffDeleted, Text: `<path d="1"/>`},
		{Op: DiffAdded, Text: `<path d="2"/>`},
		{Op: DiffEqual, Text: "<circle/>"},
		{Op: DiffEqual, Text: "</svg>"},
	}, lines)
	require.True(t, Changed(lines))
}

func TestMarkupDiff_MultilineKeptAsIs(t *testing.T) {
	lines := MarkupDiff("<svg>\n  <g><path/></g>\n</svg>\n", "<svg>\n  <g><path/></g>\n</svg>")
	require.False(t, Changed(lines))
	require.Len(t, lines, 3)
	require.Equal(t, "  <g><path/></g>", lines[1].Text)
}

func TestMarkupDiff_Empty(t *testing.T) {
	require.Empty(t, MarkupDiff("", ""))

	lines := MarkupDiff("", "<svg/>")
	require.Equal(t, []DiffLine{{Op: DiffAdded, Text: "<svg/>"}}, lines)
}
