package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/iconkit/internal/app"
	"github.com/zjrosen/iconkit/internal/presentation"
	"github.com/zjrosen/iconkit/internal/render"
)

type renderFlags struct {
	size      string
	width     string
	height    string
	class     string
	color     string
	fill      string
	stroke    string
	ariaLabel string
	attrs     []string
	json      bool
}

var renderOpts renderFlags

var renderCmd = &cobra.Command{
	Use:   "render <ref>",
	Short: "Render an icon as inline SVG",
	Long: `Render an icon reference as inline SVG markup.

References are "namespace:name" or a bare name resolved in the default
namespace. Aliases from the config file are honored.

Examples:
  # Render with defaults
  iconkit render hero:pencil

  # Size and classes
  iconkit render home --size 20 --class "btn-icon"

  # Accessible label (sets aria-hidden="false")
  iconkit render ion:trash --aria-label "Delete"

  # Arbitrary attributes; underscores become dashes
  iconkit render tabler:star --attr stroke_width=1.5 --attr data_role=rating

  # Resolved icon metadata as JSON
  iconkit render edit --json | jq .reference`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()
		return runRender(cmd.Context(), cmd.OutOrStdout(), a, args[0], renderOpts)
	},
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.size, "size", "", "width and height")
	f.StringVar(&renderOpts.width, "width", "", "width (overrides --size)")
	f.StringVar(&renderOpts.height, "height", "", "height (overrides --size)")
	f.StringVar(&renderOpts.class, "class", "", "CSS classes appended to the icon's own")
	f.StringVar(&renderOpts.color, "color", "", "CSS color added to the style attribute")
	f.StringVar(&renderOpts.fill, "fill", "", "fill attribute")
	f.StringVar(&renderOpts.stroke, "stroke", "", "stroke attribute")
	f.StringVar(&renderOpts.ariaLabel, "aria-label", "", "accessible label")
	f.StringArrayVarP(&renderOpts.attrs, "attr", "a", nil, "extra attribute as key=value (repeatable)")
	f.BoolVar(&renderOpts.json, "json", false, "print the resolved icon as JSON")
	rootCmd.AddCommand(renderCmd)
}

func (f renderFlags) attributes() (render.Attrs, error) {
	attrs, err := render.ParseAttrs(f.attrs)
	if err != nil {
		return nil, err
	}
	for _, kv := range [][2]string{
		{"size", f.size},
		{"width", f.width},
		{"height", f.height},
		{"css_class", f.class},
		{"color", f.color},
		{"fill", f.fill},
		{"stroke", f.stroke},
		{"aria_label", f.ariaLabel},
	} {
		if kv[1] != "" {
			attrs = attrs.Set(kv[0], kv[1])
		}
	}
	return attrs, nil
}

func runRender(ctx context.Context, w io.Writer, a *app.App, ref string, opts renderFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.json {
		ic, err := a.Registry.Get(ctx, ref, "")
		if err != nil {
			return err
		}
		return presentation.NewFormatter(w).FormatJSON(presentation.FromIcon(ic, true))
	}

	attrs, err := opts.attributes()
	if err != nil {
		return err
	}
	markup, err := a.Render(ctx, ref, attrs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, markup)
	return err
}
