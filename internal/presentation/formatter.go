package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	styles Styles
	plain  bool
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithPlain disables styling regardless of the terminal.
func WithPlain() FormatterOption {
	return func(f *Formatter) {
		f.plain = true
	}
}

// WithStyles overrides the default palette.
func WithStyles(s Styles) FormatterOption {
	return func(f *Formatter) {
		f.styles = s
	}
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		writer: writer,
		styles: DefaultStyles(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Formatter) paint(style lipgloss.Style, s string) string {
	if f.plain {
		return s
	}
	return style.Render(s)
}

// FormatJSON writes v as indented JSON
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatLines writes one item per line
func (f *Formatter) FormatLines(items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(f.writer, item); err != nil {
			return err
		}
	}
	return nil
}

// FormatNamespaces writes a namespace table with loader chains
func (f *Formatter) FormatNamespaces(namespaces []NamespaceDTO) error {
	width := 0
	for _, ns := range namespaces {
		width = max(width, len(ns.Namespace))
	}
	for _, ns := range namespaces {
		name := f.paint(f.styles.Key, fmt.Sprintf("%-*s", width, ns.Namespace))
		count := f.paint(f.styles.Muted, fmt.Sprintf("%d icons", ns.Icons))
		if _, err := fmt.Fprintf(f.writer, "%s  %s  %s\n", name, count, strings.Join(ns.Loaders, " > ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatGrouped writes namespace -> names, namespaces sorted
func (f *Formatter) FormatGrouped(grouped map[string][]string) error {
	keys := make([]string, 0, len(grouped))
	for ns := range grouped {
		keys = append(keys, ns)
	}
	slices.Sort(keys)
	for _, ns := range keys {
		header := f.paint(f.styles.Key, ns+":")
		if _, err := fmt.Fprintf(f.writer, "%s %s\n", header, strings.Join(grouped[ns], ", ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatSources writes every loader's view of ref and a diff of each
// shadowed source against the active one.
func (f *Formatter) FormatSources(ref string, sources []SourceDTO) error {
	if _, err := fmt.Fprintln(f.writer, f.paint(f.styles.Header, ref)); err != nil {
		return err
	}

	active := -1
	for i, s := range sources {
		if s.Active {
			active = i
			break
		}
	}
	if active < 0 && len(sources) > 0 {
		active = 0
	}

	for i, s := range sources {
		label := s.Loader
		marker := " "
		if i == active {
			marker = "*"
			label = f.paint(f.styles.Active, label)
		}
		if _, err := fmt.Fprintf(f.writer, "%s %d. %s\n", marker, i+1, label); err != nil {
			return err
		}
		if i == active {
			continue
		}

		lines := MarkupDiff(sources[active].Markup, s.Markup)
		if !Changed(lines) {
			if _, err := fmt.Fprintln(f.writer, f.paint(f.styles.Muted, "    identical to active source")); err != nil {
				return err
			}
			continue
		}
		for _, l := range lines {
			var text string
			switch l.Op {
			case DiffDeleted:
				text = f.paint(f.styles.Deleted, "    - "+l.Text)
			case DiffAdded:
				text = f.paint(f.styles.Added, "    + "+l.Text)
			default:
				text = f.paint(f.styles.Muted, "      "+l.Text)
			}
			if _, err := fmt.Fprintln(f.writer, text); err != nil {
				return err
			}
		}
	}
	return nil
}

// CollectDTO summarizes a collect run
type CollectDTO struct {
	DryRun  bool     `json:"dry_run"`
	Written []string `json:"written"`
	Skipped []string `json:"skipped"`
	Missing []string `json:"missing"`
}

// FormatCollect writes a collect summary
func (f *Formatter) FormatCollect(c CollectDTO) error {
	verb := "Wrote"
	if c.DryRun {
		verb = "Would write"
	}
	for _, p := range c.Written {
		if _, err := fmt.Fprintf(f.writer, "%s %s\n", f.paint(f.styles.Added, "[OK]"), p); err != nil {
			return err
		}
	}
	for _, p := range c.Skipped {
		if _, err := fmt.Fprintf(f.writer, "%s %s\n", f.paint(f.styles.Muted, "[EXISTS]"), p); err != nil {
			return err
		}
	}
	for _, ref := range c.Missing {
		if _, err := fmt.Fprintf(f.writer, "%s %s\n", f.paint(f.styles.Deleted, "[NOT FOUND]"), ref); err != nil {
			return err
		}
	}
	summary := fmt.Sprintf("%s %d icons, skipped %d, missing %d", verb, len(c.Written), len(c.Skipped), len(c.Missing))
	style := f.styles.Header
	if len(c.Missing) > 0 {
		style = f.styles.Warning
	}
	_, err := fmt.Fprintln(f.writer, f.paint(style, summary))
	return err
}

// Field is one row of FormatFields output.
type Field struct {
	Key   string
	Value string
}

// FormatFields writes aligned "key  value" rows
func (f *Formatter) FormatFields(fields []Field) error {
	width := 0
	for _, field := range fields {
		width = max(width, len(field.Key))
	}
	for _, field := range fields {
		key := f.paint(f.styles.Key, fmt.Sprintf("%-*s", width, field.Key))
		if _, err := fmt.Fprintf(f.writer, "%s  %s\n", key, field.Value); err != nil {
			return err
		}
	}
	return nil
}
