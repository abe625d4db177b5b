package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/zjrosen/iconkit/internal/log"
)

// Extension is the file suffix a directory loader maps icon names onto.
const Extension = ".svg"

// LoaderIOError reports a filesystem failure other than "does not exist" while
// reading a candidate icon file. The directory loader never returns it from
// Resolve; it is logged and handed to the optional error handler.
type LoaderIOError struct {
	Path string
	Err  error
}

func (e *LoaderIOError) Error() string {
	return fmt.Sprintf("read icon %s: %v", e.Path, e.Err)
}

func (e *LoaderIOError) Unwrap() error {
	return e.Err
}

// Directory serves "name" from "<root>/name.svg". Names may contain "/" to
// address nested directories ("outline/pencil").
type Directory struct {
	label   string
	fsys    fs.FS
	onError func(error)
}

// DirectoryOption configures a Directory loader.
type DirectoryOption func(*Directory)

// WithErrorHandler registers fn to observe degraded reads.
func WithErrorHandler(fn func(error)) DirectoryOption {
	return func(d *Directory) {
		d.onError = fn
	}
}

// NewDirectory creates a loader over the directory at root.
func NewDirectory(root string, opts ...DirectoryOption) *Directory {
	return NewFS(os.DirFS(root), "dir:"+root, opts...)
}

// NewFS creates a directory-style loader over any fs.FS (embedded packs,
// test fixtures). label is returned by Describe.
func NewFS(fsys fs.FS, label string, opts ...DirectoryOption) *Directory {
	d := &Directory{
		label: label,
		fsys:  fsys,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resolve implements Loader. Missing files and invalid names are not found;
// any other I/O error is logged and also reported as not found.
func (d *Directory) Resolve(name string) (string, bool) {
	file := FileName(name)
	if !fs.ValidPath(file) {
		return "", false
	}

	data, err := fs.ReadFile(d.fsys, file)
	if err == nil {
		return NormalizeMarkup(string(data)), true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "", false
	}

	ioErr := &LoaderIOError{Path: file, Err: err}
	log.ErrorErr(log.CatLoader, "Degraded icon read", ioErr, "loader", d.label, "name", name)
	if d.onError != nil {
		d.onError(ioErr)
	}
	return "", false
}

// Names implements Lister. It walks the tree for *.svg files and returns their
// normalized icon names in lexical order.
func (d *Directory) Names() ([]string, error) {
	var names []string
	err := fs.WalkDir(d.fsys, ".", func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			log.ErrorErr(log.CatLoader, "Skipping unreadable path", err, "loader", d.label, "path", p)
			return nil
		}
		if entry.IsDir() {
			if p != "." && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != Extension || strings.HasPrefix(entry.Name(), ".") {
			return nil
		}
		names = append(names, NormalizeName(strings.TrimSuffix(p, Extension)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", d.label, err)
	}
	return names, nil
}

// Describe implements Describer.
func (d *Directory) Describe() string {
	return d.label
}

// NormalizeName canonicalizes an icon name (Unicode NFC) so names derived from
// file systems that store decomposed forms match names typed in templates.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}

// NormalizeMarkup trims the surrounding whitespace editors and exporters
// leave around SVG files. Every file-backed source applies it so one file
// renders the same whichever loader serves it.
func NormalizeMarkup(markup string) string {
	return strings.TrimSpace(markup)
}

// FileName maps an icon name onto its file path within a directory loader.
func FileName(name string) string {
	return NormalizeName(name) + Extension
}
