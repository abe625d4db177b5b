// Package render turns an icon and a bag of per-call attributes into final
// SVG markup. Rendering is pure: the icon is never modified and every call
// returns a fresh string.
package render

import (
	"html"
	"regexp"
	"strings"

	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/log"
)

// Options carries configured rendering defaults.
type Options struct {
	// DefaultSize applies to width and height when neither size nor the
	// individual dimension is supplied. Empty leaves the markup's own size.
	DefaultSize string
	// DefaultClass is prepended to any class the caller supplies.
	DefaultClass string
	// AriaHidden is the aria-hidden value used when the caller supplies
	// neither aria_hidden nor aria_label.
	AriaHidden bool
}

var (
	svgOpenRE  = regexp.MustCompile(`(?is)<svg\b[^>]*>`)
	attrNameRE = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_.:]*$`)
	attrRE     = regexp.MustCompile(`([^\s=/>]+)(?:\s*=\s*("[^"]*"|'[^']*'|[^\s"'>/]+))?`)
)

type element struct {
	keys   []string
	values map[string]string
}

func (e *element) set(key, value string) {
	if _, ok := e.values[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
}

func (e *element) get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Render applies attrs to the root <svg> element of ic's markup.
//
// Recognized keys: size, width, height, css_class (or class), color, fill,
// stroke, aria_label, aria_hidden. Keys starting with data_ become data-*
// attributes; any other key is passed through with underscores turned into
// hyphens. Markup without an <svg> element is returned unchanged.
func Render(ic *icon.Icon, attrs Attrs, opts Options) string {
	markup := ic.Markup()
	loc := svgOpenRE.FindStringIndex(markup)
	if loc == nil {
		return markup
	}

	tag := markup[loc[0]:loc[1]]
	selfClosing := strings.HasSuffix(strings.TrimSpace(strings.TrimSuffix(tag, ">")), "/")
	el := parseElement(tag)
	apply(el, attrs, opts)

	var b strings.Builder
	b.Grow(len(markup) + 64)
	b.WriteString(markup[:loc[0]])
	b.WriteString("<svg")
	for _, key := range el.keys {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteString(`="`)
		b.WriteString(el.values[key])
		b.WriteByte('"')
	}
	if selfClosing {
		b.WriteString("/>")
	} else {
		b.WriteByte('>')
	}
	b.WriteString(markup[loc[1]:])
	return b.String()
}

// parseElement reads the existing attributes of an <svg ...> tag. Values are
// kept in their escaped form.
func parseElement(tag string) *element {
	el := &element{values: make(map[string]string)}
	inner := strings.TrimSuffix(tag, ">")
	inner = strings.TrimSuffix(strings.TrimSpace(inner), "/")
	inner = inner[len("<svg"):]

	for _, m := range attrRE.FindAllStringSubmatch(inner, -1) {
		value := m[2]
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') {
			value = value[1 : len(value)-1]
		}
		if m[2] != "" && m[2][0] == '\'' {
			value = strings.ReplaceAll(value, `"`, "&quot;")
		}
		el.set(m[1], value)
	}
	return el
}

func apply(el *element, attrs Attrs, opts Options) {
	esc := html.EscapeString

	size, hasSize := attrs.Get("size")
	if !hasSize && opts.DefaultSize != "" {
		size, hasSize = opts.DefaultSize, true
	}
	for _, dim := range []string{"width", "height"} {
		if v, ok := attrs.Get(dim); ok {
			el.set(dim, esc(v))
		} else if hasSize {
			el.set(dim, esc(size))
		}
	}

	var classes []string
	if opts.DefaultClass != "" {
		classes = append(classes, opts.DefaultClass)
	}
	if existing, ok := el.get("class"); ok && existing != "" {
		classes = append(classes, existing)
	}
	for _, key := range []string{"class", "css_class"} {
		if v, ok := attrs.Get(key); ok && v != "" {
			classes = append(classes, esc(v))
		}
	}
	if len(classes) > 0 {
		el.set("class", mergeClasses(classes))
	}

	if color, ok := attrs.Get("color"); ok && color != "" {
		style, _ := el.get("style")
		style = strings.TrimSpace(style)
		if style != "" && !strings.HasSuffix(style, ";") {
			style += ";"
		}
		if style != "" {
			style += " "
		}
		el.set("style", style+"color: "+esc(color))
	}

	for _, key := range []string{"fill", "stroke"} {
		if v, ok := attrs.Get(key); ok {
			el.set(key, esc(v))
		}
	}

	label, hasLabel := attrs.Get("aria_label")
	if hasLabel {
		el.set("aria-label", esc(label))
	}
	switch hidden, ok := attrs.Get("aria_hidden"); {
	case ok:
		el.set("aria-hidden", esc(normalizeBool(hidden)))
	case hasLabel:
		el.set("aria-hidden", "false")
	default:
		if _, present := el.get("aria-hidden"); !present && opts.AriaHidden {
			el.set("aria-hidden", "true")
		}
	}

	for _, attr := range attrs {
		if recognized(attr.Key) {
			continue
		}
		name := attributeName(attr.Key)
		if !ValidName(name) {
			log.Warn(log.CatRender, "Dropped invalid attribute name", "key", attr.Key)
			continue
		}
		el.set(name, esc(attr.Value))
	}
}

func recognized(key string) bool {
	switch key {
	case "size", "width", "height", "class", "css_class", "color", "fill", "stroke", "aria_label", "aria_hidden":
		return true
	}
	return false
}

// attributeName maps a caller key to an SVG attribute name: data_foo_bar
// becomes data-foo-bar, stroke_width becomes stroke-width.
func attributeName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// ValidName reports whether name is usable as an XML attribute name.
func ValidName(name string) bool {
	return attrNameRE.MatchString(name)
}

func mergeClasses(parts []string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range parts {
		for _, class := range strings.Fields(part) {
			if _, dup := seen[class]; dup {
				continue
			}
			seen[class] = struct{}{}
			out = append(out, class)
		}
	}
	return strings.Join(out, " ")
}

func normalizeBool(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return "true"
	case "false", "0", "no", "off":
		return "false"
	}
	return v
}
