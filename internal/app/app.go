// Package app wires configuration into a ready-to-use icon registry and
// exposes the caller-facing operations: rendering, template helpers,
// collection of used icons and directory watching.
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/zjrosen/iconkit/internal/cachemanager"
	"github.com/zjrosen/iconkit/internal/config"
	"github.com/zjrosen/iconkit/internal/flags"
	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/infrastructure/sqlite"
	"github.com/zjrosen/iconkit/internal/loader"
	"github.com/zjrosen/iconkit/internal/log"
	"github.com/zjrosen/iconkit/internal/packs"
	"github.com/zjrosen/iconkit/internal/registry"
	"github.com/zjrosen/iconkit/internal/render"
	"github.com/zjrosen/iconkit/internal/tracing"
	"github.com/zjrosen/iconkit/internal/watcher"
)

// shutdownTimeout bounds how long Close waits for span export.
const shutdownTimeout = 5 * time.Second

// App is the assembled icon system.
type App struct {
	Registry *registry.Registry

	cfg        config.Config
	packs      *packs.Table
	renderOpts render.Options
	tracer     *tracing.Provider
	db         *sqlite.DB
	tier       cachemanager.CacheManager[string, *icon.Icon]

	mu          sync.Mutex
	watcher     *watcher.Watcher
	watcherDone chan struct{}
	watchCancel context.CancelFunc
	closed      bool
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	packs   *packs.Table
	loaders []namedLoader
}

type namedLoader struct {
	namespace string
	loader    loader.Loader
}

// WithPackTable replaces the bundled pack table.
func WithPackTable(t *packs.Table) Option {
	return func(o *buildOptions) {
		o.packs = t
	}
}

// WithLoader registers l for namespace after icon directories and before
// packs.
func WithLoader(namespace string, l loader.Loader) Option {
	return func(o *buildOptions) {
		o.loaders = append(o.loaders, namedLoader{namespace: namespace, loader: l})
	}
}

// Build creates the registry described by cfg. Icon directories are
// registered first, then host loaders, then bundled packs (when
// auto_discover is set), then aliases; earlier loaders shadow later ones.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions{packs: packs.Builtin()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		cfg:   cfg,
		packs: o.packs,
		renderOpts: render.Options{
			DefaultSize:  cfg.DefaultSize,
			DefaultClass: cfg.DefaultClass,
			AriaHidden:   cfg.AriaHidden,
		},
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracer = provider

	tier, err := a.openSecondTier()
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}
	a.tier = tier

	a.Registry = registry.New(registry.Options{
		DefaultNamespace:  cfg.DefaultNamespace,
		CacheSize:         cfg.MemoryCacheSize,
		SecondTier:        tier,
		SecondTierTTL:     cfg.SecondTier.Timeout,
		SecondTierSliding: cfg.SecondTier.Sliding,
		Tracer:            provider.Tracer(),
		Flags:             flags.New(cfg.Flags),
	})

	for _, ns := range cfg.IconDirNamespaces() {
		dir := cfg.IconDirs[ns]
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			log.Warn(log.CatLoader, "Skipping missing icon directory", "namespace", ns, "dir", dir)
			continue
		}
		a.Registry.RegisterLoader(loader.NewDirectory(dir), ns)
	}

	for _, nl := range o.loaders {
		a.Registry.RegisterLoader(nl.loader, nl.namespace)
	}

	if cfg.AutoDiscover {
		if err := a.packs.RegisterAll(a.Registry, cfg.Packs); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("register packs: %w", err)
		}
	}

	aliases := make([]string, 0, len(cfg.Aliases))
	for alias := range cfg.Aliases {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	for _, alias := range aliases {
		a.Registry.RegisterAlias(alias, cfg.Aliases[alias])
	}

	if cfg.Watch.Enabled {
		if _, err := a.Watch(context.Background(), nil); err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	log.Info(log.CatRegistry, "Icon registry ready",
		"id", a.Registry.ID(),
		"namespaces", len(a.Registry.ListNamespaces()),
		"aliases", len(aliases))
	return a, nil
}

func (a *App) openSecondTier() (cachemanager.CacheManager[string, *icon.Icon], error) {
	st := a.cfg.SecondTier
	if !st.Enabled {
		return nil, nil
	}

	timeout := st.Timeout
	if timeout <= 0 {
		timeout = cachemanager.DefaultExpiration
	}

	switch st.Backend {
	case config.BackendSQLite:
		path := st.Path
		if path == "" {
			path = config.DefaultCachePath()
		}
		db, err := sqlite.NewDB(path)
		if err != nil {
			return nil, fmt.Errorf("open icon store: %w", err)
		}
		a.db = db
		return db.IconStore(sqlite.WithDefaultExpiration(timeout)), nil
	default:
		return cachemanager.NewInMemoryCacheManager[string, *icon.Icon]("icons", timeout, cachemanager.DefaultCleanupInterval), nil
	}
}

// CacheReport describes the caches for `iconkit cache stats`.
type CacheReport struct {
	Registry   registry.Stats `json:"registry"`
	Backend    string         `json:"backend,omitempty"`
	TierItems  int            `json:"second_tier_items"`
	Maintained bool           `json:"maintained"`
}

// CacheReport snapshots the registry and, when the second tier supports it,
// counts its stored entries.
func (a *App) CacheReport(ctx context.Context) (CacheReport, error) {
	report := CacheReport{Registry: a.Registry.Stats()}
	if a.tier == nil {
		return report, nil
	}
	report.Backend = a.cfg.SecondTier.Backend
	m, ok := a.tier.(cachemanager.Maintainer)
	if !ok {
		return report, nil
	}
	n, err := m.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("count second tier: %w", err)
	}
	report.TierItems = n
	report.Maintained = true
	return report, nil
}

// PurgeExpired drops expired second-tier entries and returns how many went.
// Without a second tier it does nothing.
func (a *App) PurgeExpired(ctx context.Context) (int64, error) {
	m, ok := a.tier.(cachemanager.Maintainer)
	if !ok {
		return 0, nil
	}
	n, err := m.PurgeExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge second tier: %w", err)
	}
	log.Info(log.CatCache, "Purged expired icons", "count", n)
	return n, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Packs returns the pack table used at start-up.
func (a *App) Packs() *packs.Table {
	return a.packs
}

// Render resolves ref and renders it with attrs. With missing_icon_silent a
// not-found reference renders as "" without error; alias cycles and every
// other failure are always returned.
func (a *App) Render(ctx context.Context, ref string, attrs render.Attrs) (string, error) {
	ic, err := a.Registry.Get(ctx, ref, "")
	if err != nil {
		if a.cfg.MissingIconSilent && registry.IsNotFound(err) {
			log.Debug(log.CatRender, "Missing icon rendered empty", "ref", ref)
			return "", nil
		}
		return "", err
	}
	return render.Render(ic, attrs, a.renderOpts), nil
}

// FuncMap exposes an "icon" template function:
//
//	{{ icon "hero:pencil" "size" "20" "css_class" "btn-icon" }}
func (a *App) FuncMap() template.FuncMap {
	return template.FuncMap{
		"icon": func(ref string, kv ...string) (template.HTML, error) {
			markup, err := a.Render(context.Background(), ref, render.NewAttrs(kv...))
			if err != nil {
				return "", err
			}
			return template.HTML(markup), nil
		},
	}
}

// Watch starts watching the configured icon directories. Each change batch
// invalidates the affected icons and is then passed to onChange (which may
// be nil). Watching stops when ctx is done or the app is closed. The
// returned channel closes when the watch loop exits.
func (a *App) Watch(ctx context.Context, onChange func([]watcher.Change)) (<-chan struct{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, errors.New("app is closed")
	}
	if a.watcher != nil {
		return nil, errors.New("watcher already running")
	}

	dirs := make(map[string]string, len(a.cfg.IconDirs))
	for ns, dir := range a.cfg.IconDirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs[ns] = dir
		}
	}

	wcfg := watcher.DefaultConfig(dirs)
	if a.cfg.Watch.Debounce > 0 {
		wcfg.DebounceDur = a.cfg.Watch.Debounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		return nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.watcher = w
	a.watchCancel = cancel
	a.watcherDone = done

	go func() {
		defer close(done)
		defer func() { _ = w.Stop() }()
		for {
			select {
			case <-ctx.Done():
				return
			case batch, ok := <-changes:
				if !ok {
					return
				}
				for _, c := range batch {
					a.Registry.Invalidate(c.Key())
				}
				log.Info(log.CatWatcher, "Invalidated changed icons", "count", len(batch))
				if onChange != nil {
					onChange(batch)
				}
			}
		}
	}()

	log.Info(log.CatWatcher, "Watching icon directories", "dirs", len(dirs))
	return done, nil
}

// Close stops the watcher, closes the registry and flushes traces.
func (a *App) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	cancel, done := a.watchCancel, a.watcherDone
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	var errs []error
	if a.Registry != nil {
		a.Registry.Close()
	}
	if a.tracer != nil {
		ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancelShutdown()
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
