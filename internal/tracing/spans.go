package tracing

// Span attribute keys for icon resolution.
const (
	AttrIconNamespace = "icon.namespace"
	AttrIconName      = "icon.name"
	AttrIconSource    = "icon.source"
	AttrIconBytes     = "icon.bytes"
	AttrCacheTier     = "cache.tier"
	AttrAliasHops     = "alias.hops"
)

// Span names.
const (
	SpanMaterialize = "registry.materialize"
	SpanLoaderCall  = "loader.resolve"
)

// Event names recorded on materialize spans.
const (
	EventMemoHit       = "memo.hit"
	EventSecondTierHit = "second_tier.hit"
	EventLoaderMiss    = "loader.miss"
)

// Cache tiers reported through AttrCacheTier.
const (
	TierMemo   = "memo"
	TierSecond = "second"
	TierLoader = "loader"
)
