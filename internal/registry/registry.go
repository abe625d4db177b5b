// Package registry resolves icon references. It owns the namespace table, the
// alias table and the bounded LRU, and materializes each icon from its
// loaders at most once per process.
//
// Lookup order on Get: LRU, then the namespace memo, then the optional second
// tier, then the namespace's loaders in registration order.
package registry

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/iconkit/internal/cachemanager"
	"github.com/zjrosen/iconkit/internal/flags"
	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/loader"
	"github.com/zjrosen/iconkit/internal/log"
	"github.com/zjrosen/iconkit/internal/pubsub"
	"github.com/zjrosen/iconkit/internal/tracing"
)

// DefaultNamespace is used when Options.DefaultNamespace is empty.
const DefaultNamespace = "ion"

// DefaultCacheSize is the LRU capacity used by config defaults.
const DefaultCacheSize = 1000

// Options configures a Registry.
type Options struct {
	// DefaultNamespace qualifies bare references when Get is called with an
	// empty default.
	DefaultNamespace string

	// CacheSize bounds the LRU. Zero disables it.
	CacheSize int

	// SecondTier is consulted after the memo and before the loaders. Nil
	// disables it.
	SecondTier    cachemanager.CacheManager[string, *icon.Icon]
	SecondTierTTL time.Duration

	// SecondTierSliding extends an entry's lifetime on every hit.
	SecondTierSliding bool

	// Tracer records spans for lookups that miss the LRU. Nil uses a no-op
	// tracer.
	Tracer trace.Tracer

	// Flags toggles optional behavior (see flags.FlagInvalidateOnLoaderRegistration).
	Flags *flags.Registry
}

// Event is the payload published on the registry broker.
type Event struct {
	Namespace string
	Name      string
	Source    string
}

// Key returns the fully-qualified reference the event concerns.
func (e Event) Key() string {
	return icon.Key(e.Namespace, e.Name)
}

// Registry is safe for concurrent use. Construct one per host process and
// pass it to callers explicitly.
type Registry struct {
	id               string
	defaultNamespace string
	flags            *flags.Registry
	tracer           trace.Tracer

	mu         sync.RWMutex
	namespaces map[string]*namespace

	aliases *aliasTable
	lru     *cachemanager.LRU[string, *icon.Icon]
	tier    *cachemanager.ReadThroughCache[string, *icon.Icon, loadRequest]
	tierTTL time.Duration
	flight  singleflight.Group
	events  *pubsub.Broker[Event]
}

// loadRequest is the input handed through the second tier to the loaders.
// source is set when a loader, not the second tier, produced the icon.
type loadRequest struct {
	entry  *namespace
	name   string
	source *string
}

// New creates an empty registry.
func New(opts Options) *Registry {
	r := &Registry{
		id:               uuid.NewString(),
		defaultNamespace: opts.DefaultNamespace,
		flags:            opts.Flags,
		tracer:           opts.Tracer,
		namespaces:       make(map[string]*namespace),
		aliases:          newAliasTable(),
		tierTTL:          opts.SecondTierTTL,
		events:           pubsub.NewBroker[Event](),
	}
	if r.defaultNamespace == "" {
		r.defaultNamespace = DefaultNamespace
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("iconkit")
	}
	r.lru = cachemanager.NewLRU[string, *icon.Icon](opts.CacheSize, cachemanager.WithEvictionCallback(r.onEvict))
	var tierOpts []cachemanager.ReadThroughOption
	if opts.SecondTierSliding {
		tierOpts = append(tierOpts, cachemanager.Sliding())
	}
	r.tier = cachemanager.NewReadThroughCache[string, *icon.Icon, loadRequest](opts.SecondTier, r.loadFromLoaders, tierOpts...)

	log.Debug(log.CatRegistry, "Registry created",
		"id", r.id,
		"default_namespace", r.defaultNamespace,
		"cache_size", r.lru.Cap(),
		"second_tier", r.tier.Enabled())
	return r
}

// ID identifies this registry instance in logs and events.
func (r *Registry) ID() string {
	return r.id
}

// DefaultNamespace returns the namespace used for bare references.
func (r *Registry) DefaultNamespace() string {
	return r.defaultNamespace
}

// Events exposes register, invalidate and eviction notifications.
func (r *Registry) Events() *pubsub.Broker[Event] {
	return r.events
}

// Close shuts down the event broker. Lookups keep working.
func (r *Registry) Close() {
	r.events.Close()
}

// Get resolves reference to an icon. defaultNamespace qualifies a bare
// reference; empty means the registry default.
//
// Errors match ErrNotFound (*NotFoundError) or ErrAliasCycle
// (*AliasCycleError). Deciding whether a miss is silent is up to the caller.
func (r *Registry) Get(ctx context.Context, reference, defaultNamespace string) (*icon.Icon, error) {
	if defaultNamespace == "" {
		defaultNamespace = r.defaultNamespace
	}

	ns, name, _, err := r.aliases.resolve(reference, defaultNamespace)
	if err != nil {
		log.Warn(log.CatRegistry, "Alias resolution failed", "reference", reference, "error", err)
		return nil, err
	}

	fq := icon.Key(ns, name)
	if ic, ok := r.lru.Get(fq); ok {
		return ic, nil
	}

	entry := r.namespace(ns)
	if entry == nil {
		return nil, &NotFoundError{Namespace: ns, Name: name, UnknownNamespace: true}
	}

	v, err, shared := r.flight.Do(fq, func() (any, error) {
		return r.materialize(ctx, entry, name, fq)
	})
	if err != nil {
		return nil, err
	}
	ic := v.(*icon.Icon)
	if shared {
		log.Debug(log.CatRegistry, "Shared in-flight lookup", "key", fq)
	}

	r.cache(entry, fq, ic)
	return ic, nil
}

// materialize runs on an LRU miss. It is the only traced path.
func (r *Registry) materialize(ctx context.Context, entry *namespace, name, fq string) (*icon.Icon, error) {
	ctx, span := r.tracer.Start(ctx, tracing.SpanMaterialize, trace.WithAttributes(
		attribute.String(tracing.AttrIconNamespace, entry.key),
		attribute.String(tracing.AttrIconName, name),
	))
	defer span.End()

	if ic, ok := entry.memoized(name); ok {
		span.AddEvent(tracing.EventMemoHit)
		span.SetAttributes(attribute.String(tracing.AttrCacheTier, tracing.TierMemo))
		return ic, nil
	}

	gen := entry.generation()
	var source string
	ic, err := r.tier.Get(ctx, fq, loadRequest{entry: entry, name: name, source: &source}, r.tierTTL)
	if err != nil {
		span.AddEvent(tracing.EventLoaderMiss)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if source == "" {
		span.AddEvent(tracing.EventSecondTierHit)
		span.SetAttributes(attribute.String(tracing.AttrCacheTier, tracing.TierSecond))
	} else {
		span.SetAttributes(
			attribute.String(tracing.AttrCacheTier, tracing.TierLoader),
			attribute.String(tracing.AttrIconSource, source),
		)
	}
	span.SetAttributes(attribute.Int(tracing.AttrIconBytes, len(ic.Markup())))

	stored, ok := entry.memoize(ic, gen)
	if !ok {
		// Invalidated mid-load: the second tier may hold the old content too.
		log.Debug(log.CatRegistry, "Discarded load raced by invalidation", "key", fq)
		r.dropSecondTier(fq)
	}
	return stored, nil
}

func (r *Registry) loadFromLoaders(_ context.Context, req loadRequest) (*icon.Icon, error) {
	ic, source, ok := req.entry.load(req.name)
	if !ok {
		return nil, &NotFoundError{Namespace: req.entry.key, Name: req.name}
	}
	*req.source = source
	log.Debug(log.CatRegistry, "Materialized icon", "key", ic.Key(), "source", source)
	return ic, nil
}

// cache puts ic in the LRU, then drops it again if a concurrent Register or
// Invalidate replaced the memo entry in the meantime.
func (r *Registry) cache(entry *namespace, fq string, ic *icon.Icon) {
	r.lru.Put(fq, ic)
	if current, ok := entry.memoized(ic.Name()); !ok || current != ic {
		r.lru.Invalidate(fq)
	}
}

// Register stores markup directly under namespace:name, bypassing loaders,
// and drops any cached copy so the next Get sees it. An empty namespace
// means the default namespace.
func (r *Registry) Register(name, markup, namespace string, opts ...icon.Option) *icon.Icon {
	if namespace == "" {
		namespace = r.defaultNamespace
	}
	ic := icon.New(namespace, name, markup, opts...)
	entry := r.ensureNamespace(namespace)
	entry.register(ic)

	fq := ic.Key()
	r.lru.Invalidate(fq)
	r.dropSecondTier(fq)

	log.Debug(log.CatRegistry, "Registered icon", "key", fq, "bytes", len(markup))
	r.events.Publish(pubsub.RegisteredEvent, Event{Namespace: namespace, Name: name, Source: SourceRegistered})
	return ic
}

// LoaderOption configures RegisterLoader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	prepend bool
}

// Prepend gives the loader precedence over those already registered.
func Prepend() LoaderOption {
	return func(o *loaderOptions) {
		o.prepend = true
	}
}

// RegisterLoader adds l to namespace, creating the namespace if needed.
//
// Icons already resolved keep their original source: a new higher-precedence
// loader does not shadow them until they are invalidated. Enabling
// flags.FlagInvalidateOnLoaderRegistration drops them instead.
func (r *Registry) RegisterLoader(l loader.Loader, namespace string, opts ...LoaderOption) {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}
	if namespace == "" {
		namespace = r.defaultNamespace
	}

	entry := r.ensureNamespace(namespace)
	entry.addLoader(l, o.prepend)
	log.Debug(log.CatRegistry, "Registered loader",
		"namespace", namespace,
		"loader", loader.Describe(l),
		"prepend", o.prepend)

	if r.flags.Enabled(flags.FlagInvalidateOnLoaderRegistration) {
		dropped := entry.forgetLoaded()
		keys := make([]string, 0, len(dropped))
		for _, name := range dropped {
			keys = append(keys, icon.Key(namespace, name))
		}
		prefix := namespace + icon.Separator
		n := r.lru.InvalidateFunc(func(key string) bool {
			if !strings.HasPrefix(key, prefix) {
				return false
			}
			_, registered := entry.memoized(strings.TrimPrefix(key, prefix))
			return !registered
		})
		r.dropSecondTier(keys...)
		log.Info(log.CatRegistry, "Invalidated namespace after loader registration",
			"namespace", namespace, "memo", len(dropped), "cache", n)
	}
	r.events.Publish(pubsub.LoaderAddedEvent, Event{Namespace: namespace, Source: loader.Describe(l)})
}

// RegisterAlias maps alias to target ("namespace:name"). Cycles are not
// checked here; Get reports them.
func (r *Registry) RegisterAlias(alias, target string) {
	r.aliases.set(alias, target)
	log.Debug(log.CatRegistry, "Registered alias", "alias", alias, "target", target)
}

// Aliases returns a copy of the alias table.
func (r *Registry) Aliases() map[string]string {
	return r.aliases.all()
}

// Resolve applies default namespace and alias rules to reference without
// loading anything, returning the fully-qualified key.
func (r *Registry) Resolve(reference, defaultNamespace string) (string, error) {
	if defaultNamespace == "" {
		defaultNamespace = r.defaultNamespace
	}
	ns, name, _, err := r.aliases.resolve(reference, defaultNamespace)
	if err != nil {
		return "", err
	}
	return icon.Key(ns, name), nil
}

// Invalidate forgets one icon everywhere it may be held (memo, LRU, second
// tier). Aliases are not followed. It reports whether anything was dropped.
func (r *Registry) Invalidate(reference string) bool {
	ns, name := icon.ParseReference(reference, r.defaultNamespace)
	fq := icon.Key(ns, name)

	dropped := r.lru.Invalidate(fq)
	if entry := r.namespace(ns); entry != nil {
		dropped = entry.forget(name) || dropped
	}
	r.dropSecondTier(fq)

	if dropped {
		log.Debug(log.CatRegistry, "Invalidated icon", "key", fq)
		r.events.Publish(pubsub.InvalidatedEvent, Event{Namespace: ns, Name: name})
	}
	return dropped
}

// ListIcons lazily enumerates names. With a namespace it yields bare names:
// loader listings first (first loader wins on duplicates), then directly
// registered names. With an empty namespace it yields fully-qualified names
// across every namespace in sorted order. The LRU is never consulted.
func (r *Registry) ListIcons(namespace string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if namespace != "" {
			entry := r.namespace(namespace)
			if entry == nil {
				return
			}
			for name := range entry.names() {
				if !yield(name) {
					return
				}
			}
			return
		}

		for _, key := range r.ListNamespaces() {
			entry := r.namespace(key)
			if entry == nil {
				continue
			}
			for name := range entry.names() {
				if !yield(icon.Key(key, name)) {
					return
				}
			}
		}
	}
}

// ListNamespaces returns the registered namespace keys, sorted.
func (r *Registry) ListNamespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.namespaces))
	for key := range r.namespaces {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Loaders describes the loaders of namespace in precedence order.
func (r *Registry) Loaders(namespace string) []string {
	entry := r.namespace(namespace)
	if entry == nil {
		return nil
	}
	loaders := entry.loaderSnapshot()
	out := make([]string, 0, len(loaders))
	for _, l := range loaders {
		out = append(out, loader.Describe(l))
	}
	return out
}

// Sources returns every candidate content for reference, in precedence
// order, without touching any cache.
func (r *Registry) Sources(reference, defaultNamespace string) ([]Source, error) {
	if defaultNamespace == "" {
		defaultNamespace = r.defaultNamespace
	}
	ns, name, _, err := r.aliases.resolve(reference, defaultNamespace)
	if err != nil {
		return nil, err
	}
	entry := r.namespace(ns)
	if entry == nil {
		return nil, &NotFoundError{Namespace: ns, Name: name, UnknownNamespace: true}
	}
	sources := entry.sources(name)
	if len(sources) == 0 {
		return nil, &NotFoundError{Namespace: ns, Name: name}
	}
	return sources, nil
}

// Stats summarizes the registry for diagnostics.
type Stats struct {
	ID         string                 `json:"id"`
	Cache      cachemanager.Stats     `json:"cache"`
	Namespaces int                    `json:"namespaces"`
	Memoized   int                    `json:"memoized"`
	Aliases    int                    `json:"aliases"`
	SecondTier bool                   `json:"second_tier"`
	Tier       cachemanager.TierStats `json:"second_tier_stats"`
}

// Stats returns a point-in-time snapshot.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	entries := make([]*namespace, 0, len(r.namespaces))
	for _, entry := range r.namespaces {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	memoized := 0
	for _, entry := range entries {
		memoized += entry.memoLen()
	}
	return Stats{
		ID:         r.id,
		Cache:      r.lru.Stats(),
		Namespaces: len(entries),
		Memoized:   memoized,
		Aliases:    r.aliases.len(),
		SecondTier: r.tier.Enabled(),
		Tier:       r.tier.Stats(),
	}
}

// ClearCaches empties the LRU and the second tier and drops every loaded
// icon from the namespace memos. Loaders, aliases and directly registered
// icons stay.
func (r *Registry) ClearCaches(ctx context.Context) error {
	r.mu.RLock()
	entries := make([]*namespace, 0, len(r.namespaces))
	for _, entry := range r.namespaces {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	dropped := 0
	for _, entry := range entries {
		dropped += len(entry.forgetLoaded())
	}
	r.lru.Purge()
	if err := r.tier.Flush(ctx); err != nil {
		return fmt.Errorf("flush second tier: %w", err)
	}
	log.Info(log.CatCache, "Cleared icon caches", "namespaces", len(entries), "dropped", dropped)
	return nil
}

// CacheKeys returns the LRU keys from most to least recently used.
func (r *Registry) CacheKeys() []string {
	return r.lru.Keys()
}

func (r *Registry) namespace(key string) *namespace {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namespaces[key]
}

func (r *Registry) ensureNamespace(key string) *namespace {
	if entry := r.namespace(key); entry != nil {
		return entry
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.namespaces[key]; ok {
		return entry
	}
	entry := newNamespace(key)
	r.namespaces[key] = entry
	log.Debug(log.CatRegistry, "Created namespace", "namespace", key)
	return entry
}

func (r *Registry) dropSecondTier(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := r.tier.Delete(context.Background(), keys...); err != nil {
		log.ErrorErr(log.CatCache, "Failed to delete from second tier", err, "keys", keys)
	}
}

func (r *Registry) onEvict(key string, ic *icon.Icon) {
	log.Debug(log.CatCache, "Evicted icon", "key", key)
	r.events.Publish(pubsub.EvictedEvent, Event{Namespace: ic.Namespace(), Name: ic.Name()})
}

// IsNotFound reports whether err is a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
