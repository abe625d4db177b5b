// Package scanner finds icon references in template files so a project can
// collect only the icons it actually uses.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/log"
)

// DefaultExtensions are the file suffixes scanned when none are configured.
var DefaultExtensions = []string{".html", ".txt"}

// Patterns recognised in templates:
//
//	{% icon "home" %}        {% icon 'hero:pencil' size=20 %}
//	{{ icon "ion:home" }}    {{ icon "x-mark" (attrs "class" "big") }}
//	{{ "ion:home" | icon }}
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\{%-?\s*icon\s+["']([^"']+)["']`),
	regexp.MustCompile(`\{\{-?\s*icon\s+"([^"]+)"`),
	regexp.MustCompile(`\{\{-?\s*"([^"]+)"\s*\|\s*icon\b`),
}

// Reference is one icon usage found in a template.
type Reference struct {
	Ref  string `json:"ref"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// ScanText returns the icon references in text, in order of appearance.
// Duplicates are kept. A tag may span several lines.
func ScanText(text string) []string {
	hits := scan(text)
	refs := make([]string, len(hits))
	for i, h := range hits {
		refs[i] = h.ref
	}
	return refs
}

type hit struct {
	pos int
	ref string
}

// scan matches every pattern against the whole text and orders the hits by
// offset.
func scan(text string) []hit {
	var hits []hit
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if ref := strings.TrimSpace(text[m[2]:m[3]]); ref != "" {
				hits = append(hits, hit{pos: m[0], ref: ref})
			}
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.pos - b.pos })
	return hits
}

// ScanFile returns every icon reference in the file at path. Line is where
// the tag starts.
func ScanFile(path string) ([]Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	text := string(data)

	var (
		refs    []Reference
		line    = 1
		counted = 0
	)
	for _, h := range scan(text) {
		line += strings.Count(text[counted:h.pos], "\n")
		counted = h.pos
		refs = append(refs, Reference{Ref: h.ref, File: path, Line: line})
	}
	return refs, nil
}

// ScanDirectory walks dir and scans every file whose extension is in exts
// (DefaultExtensions when empty). Unreadable files are logged and skipped;
// only a missing or unreadable root is an error.
func ScanDirectory(ctx context.Context, dir string, exts []string) ([]Reference, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var refs []Reference
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.ErrorErr(log.CatScan, "Skipping unreadable path", err, "path", path)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !slices.Contains(exts, filepath.Ext(path)) {
			return nil
		}

		found, err := ScanFile(path)
		if err != nil {
			log.ErrorErr(log.CatScan, "Skipping unreadable template", err, "path", path)
			return nil
		}
		refs = append(refs, found...)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	log.Debug(log.CatScan, "Scanned templates", "dir", dir, "refs", len(refs))
	return refs, nil
}

// ScanDirectories scans each directory in turn. Missing directories are
// skipped with a warning.
func ScanDirectories(ctx context.Context, dirs, exts []string) ([]Reference, error) {
	var refs []Reference
	for _, dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			log.Warn(log.CatScan, "Template directory does not exist", "dir", dir)
			continue
		}
		found, err := ScanDirectory(ctx, dir, exts)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return refs, nil
}

// Unique returns the distinct reference strings, sorted.
func Unique(refs []Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Ref)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// GroupByNamespace splits references into namespace -> sorted distinct
// names. Unqualified references land in defaultNamespace.
func GroupByNamespace(refs []string, defaultNamespace string) map[string][]string {
	grouped := make(map[string][]string)
	for _, ref := range refs {
		ns, name := icon.ParseReference(ref, defaultNamespace)
		if name == "" {
			continue
		}
		grouped[ns] = append(grouped[ns], name)
	}
	for ns, names := range grouped {
		slices.Sort(names)
		grouped[ns] = slices.Compact(names)
	}
	return grouped
}
