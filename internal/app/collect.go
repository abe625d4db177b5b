package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/iconkit/internal/loader"
	"github.com/zjrosen/iconkit/internal/log"
	"github.com/zjrosen/iconkit/internal/registry"
	"github.com/zjrosen/iconkit/internal/scanner"
)

// DefaultCollectConcurrency bounds parallel resolve-and-write jobs.
const DefaultCollectConcurrency = 8

// StaticIconsDir is where per-directory collection writes, relative to each
// template directory.
var StaticIconsDir = filepath.Join("static", "icons")

// CollectOptions configures Collect. Zero values fall back to the app
// configuration.
type CollectOptions struct {
	Dirs        []string
	Extensions  []string
	OutputDir   string
	Central     bool
	DryRun      bool
	Concurrency int
}

// CollectResult lists what a collect run did. Paths and references are
// sorted.
type CollectResult struct {
	Written []string
	Skipped []string
	Missing []string
}

type collectTarget struct {
	root string
	refs []string
}

// Collect scans templates for icon references, resolves each through the
// registry and writes <root>/<namespace>/<name>.svg. Existing files are left
// untouched. In central mode root is the output directory; otherwise each
// template directory gets its own <dir>/static/icons.
func (a *App) Collect(ctx context.Context, opts CollectOptions) (CollectResult, error) {
	dirs := opts.Dirs
	if len(dirs) == 0 {
		dirs = a.cfg.Scan.Dirs
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = a.cfg.Scan.Extensions
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultCollectConcurrency
	}

	targets, err := a.collectTargets(ctx, dirs, exts, opts)
	if err != nil {
		return CollectResult{}, err
	}

	var (
		mu      sync.Mutex
		result  CollectResult
		claimed = make(map[string]bool)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, target := range targets {
		for _, ref := range target.refs {
			g.Go(func() error {
				ic, err := a.Registry.Get(gctx, ref, "")
				if errors.Is(err, registry.ErrNotFound) || errors.Is(err, registry.ErrAliasCycle) {
					log.Warn(log.CatScan, "Cannot collect icon", "ref", ref, "error", err)
					mu.Lock()
					result.Missing = append(result.Missing, ref)
					mu.Unlock()
					return nil
				}
				if err != nil {
					return err
				}

				rel := path.Join(ic.Namespace(), loader.FileName(ic.Name()))
				if !fs.ValidPath(rel) {
					log.Warn(log.CatScan, "Refusing to collect icon outside output directory", "ref", ref, "path", rel)
					mu.Lock()
					result.Missing = append(result.Missing, ref)
					mu.Unlock()
					return nil
				}
				dest := filepath.Join(target.root, filepath.FromSlash(rel))

				mu.Lock()
				if claimed[dest] {
					mu.Unlock()
					return nil
				}
				claimed[dest] = true
				mu.Unlock()

				written, err := writeIcon(dest, ic.Markup(), opts.DryRun)
				if err != nil {
					return err
				}
				mu.Lock()
				if written {
					result.Written = append(result.Written, dest)
				} else {
					result.Skipped = append(result.Skipped, dest)
				}
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return CollectResult{}, err
	}

	slices.Sort(result.Written)
	slices.Sort(result.Skipped)
	slices.Sort(result.Missing)
	result.Missing = slices.Compact(result.Missing)

	log.Info(log.CatScan, "Collected icons",
		"written", len(result.Written),
		"skipped", len(result.Skipped),
		"missing", len(result.Missing),
		"dry_run", opts.DryRun)
	return result, nil
}

func (a *App) collectTargets(ctx context.Context, dirs, exts []string, opts CollectOptions) ([]collectTarget, error) {
	if opts.Central {
		refs, err := scanner.ScanDirectories(ctx, dirs, exts)
		if err != nil {
			return nil, err
		}
		out := opts.OutputDir
		if out == "" {
			out = a.cfg.Collect.OutputDir
		}
		if out == "" {
			return nil, errors.New("collect: output directory is required in central mode")
		}
		return []collectTarget{{root: out, refs: scanner.Unique(refs)}}, nil
	}

	var targets []collectTarget
	for _, dir := range dirs {
		refs, err := scanner.ScanDirectories(ctx, []string{dir}, exts)
		if err != nil {
			return nil, err
		}
		if len(refs) == 0 {
			continue
		}
		targets = append(targets, collectTarget{
			root: filepath.Join(dir, StaticIconsDir),
			refs: scanner.Unique(refs),
		})
	}
	return targets, nil
}

// writeIcon creates dest with markup unless it already exists. It reports
// whether the file was (or, in a dry run, would be) written.
func writeIcon(dest, markup string, dryRun bool) (bool, error) {
	if _, err := os.Stat(dest); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", dest, err)
	}
	if dryRun {
		return true, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := f.WriteString(markup); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write %s: %w", dest, err)
	}
	return true, f.Close()
}
