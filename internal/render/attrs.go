package render

import (
	"fmt"
	"strings"
)

// Attr is one rendering attribute as supplied by the caller.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered attribute bag. Unrecognized keys are emitted in the
// order they were set.
type Attrs []Attr

// NewAttrs builds an attribute bag from alternating key/value pairs. A
// trailing key without a value is ignored.
func NewAttrs(kv ...string) Attrs {
	attrs := make(Attrs, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs = attrs.Set(kv[i], kv[i+1])
	}
	return attrs
}

// ParseAttrs parses "key=value" strings (CLI --attr flags).
func ParseAttrs(pairs []string) (Attrs, error) {
	attrs := make(Attrs, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid attribute %q: expected key=value", pair)
		}
		if !ValidName(attributeName(key)) {
			return nil, fmt.Errorf("invalid attribute name %q", key)
		}
		attrs = attrs.Set(key, value)
	}
	return attrs, nil
}

// Set replaces the value of key or appends it. The receiver's backing array
// may be reused, so always use the returned value.
func (a Attrs) Set(key, value string) Attrs {
	for i := range a {
		if a[i].Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Get returns the value for key.
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Has reports whether key is set.
func (a Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}
