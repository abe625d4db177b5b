package testutil

import (
	"fmt"
	"strings"
)

// iconData holds the attributes of a generated SVG fixture.
type iconData struct {
	id      string
	viewBox string
	class   string
	body    string
	raw     string
}

func defaultIcon(id string) iconData {
	return iconData{
		id:      id,
		viewBox: "0 0 24 24",
		body:    `<path d="M0 0h24v24H0z"/>`,
	}
}

func (d iconData) markup() string {
	if d.raw != "" {
		return d.raw
	}
	attrs := []string{`xmlns="http://www.w3.org/2000/svg"`}
	if d.id != "" {
		attrs = append(attrs, fmt.Sprintf(`id="%s"`, d.id))
	}
	if d.viewBox != "" {
		attrs = append(attrs, fmt.Sprintf(`viewBox="%s"`, d.viewBox))
	}
	if d.class != "" {
		attrs = append(attrs, fmt.Sprintf(`class="%s"`, d.class))
	}
	return fmt.Sprintf("<svg %s>%s</svg>", strings.Join(attrs, " "), d.body)
}

// IconOption configures a generated icon.
type IconOption func(*iconData)

// ID sets the root id attribute (default: the file's base name).
func ID(id string) IconOption {
	return func(d *iconData) { d.id = id }
}

// ViewBox sets the viewBox attribute.
func ViewBox(v string) IconOption {
	return func(d *iconData) { d.viewBox = v }
}

// Class sets the root class attribute.
func Class(c string) IconOption {
	return func(d *iconData) { d.class = c }
}

// Body replaces the inner markup.
func Body(body string) IconOption {
	return func(d *iconData) { d.body = body }
}

// Raw writes markup verbatim, ignoring every other option.
func Raw(markup string) IconOption {
	return func(d *iconData) { d.raw = markup }
}
