// Package testutil provides fixture builders for icon directories and
// template trees.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type fileData struct {
	rel     string
	content string
}

// Builder accumulates fixture files and writes them under a temp root.
type Builder struct {
	t     *testing.T
	root  string
	files []fileData
}

// NewBuilder creates a builder rooted at a fresh t.TempDir().
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t, root: t.TempDir()}
}

// Root returns the fixture root. Files are only present after Build.
func (b *Builder) Root() string {
	return b.root
}

// Path joins rel (slash separated) onto the root.
func (b *Builder) Path(rel string) string {
	return filepath.Join(b.root, filepath.FromSlash(rel))
}

// WithIcon adds <rel>.svg. rel may contain directories ("brand/logo").
func (b *Builder) WithIcon(rel string, opts ...IconOption) *Builder {
	icon := defaultIcon(filepath.Base(rel))
	for _, opt := range opts {
		opt(&icon)
	}
	b.files = append(b.files, fileData{rel: rel + ".svg", content: icon.markup()})
	return b
}

// WithFile adds an arbitrary file.
func (b *Builder) WithFile(rel, content string) *Builder {
	b.files = append(b.files, fileData{rel: rel, content: content})
	return b
}

// Build writes every accumulated file and returns the root.
func (b *Builder) Build() string {
	b.t.Helper()
	for _, f := range b.files {
		WriteFile(b.t, b.Path(f.rel), f.content)
	}
	b.files = nil
	return b.root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
