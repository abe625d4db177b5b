package presentation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// CatalogEntry is one namespace in the catalog with a sample of its names.
type CatalogEntry struct {
	Namespace NamespaceDTO
	Pack      *PackDTO
	Sample    []string
}

// noMarginStyle is a JSON style that removes document margins.
// It inherits from auto (dark/light detection) but overrides margin to 0.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// CatalogMarkdown builds the markdown catalog of namespaces.
func CatalogMarkdown(entries []CatalogEntry) string {
	var b strings.Builder
	b.WriteString("# Icon catalog\n\n")
	b.WriteString("| Namespace | Icons | Pack | License | Loaders |\n")
	b.WriteString("| --- | ---: | --- | --- | --- |\n")
	for _, e := range entries {
		pack, license := "-", "-"
		if e.Pack != nil {
			pack = e.Pack.Name
			if e.Pack.Version != "" {
				pack += " " + e.Pack.Version
			}
			if e.Pack.License != "" {
				license = e.Pack.License
			}
		}
		fmt.Fprintf(&b, "| `%s` | %d | %s | %s | %s |\n",
			e.Namespace.Namespace, e.Namespace.Icons, pack, license, strings.Join(e.Namespace.Loaders, ", "))
	}

	for _, e := range entries {
		fmt.Fprintf(&b, "\n## %s\n\n", e.Namespace.Namespace)
		if e.Pack != nil && e.Pack.Homepage != "" {
			fmt.Fprintf(&b, "%s: <%s>\n\n", e.Pack.Name, e.Pack.Homepage)
		}
		if len(e.Sample) == 0 {
			b.WriteString("_No listable icons._\n")
			continue
		}
		refs := make([]string, len(e.Sample))
		for i, name := range e.Sample {
			refs[i] = "`" + e.Namespace.Namespace + ":" + name + "`"
		}
		b.WriteString(strings.Join(refs, " "))
		if more := e.Namespace.Icons - len(e.Sample); more > 0 {
			fmt.Fprintf(&b, " _and %d more_", more)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkdown renders markdown for a terminal of the given width.
func RenderMarkdown(markdown string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
