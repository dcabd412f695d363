package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/badge"
	"github.com/sofmeright/bandbox/src/logging"
)

type badgeOptions struct {
	source    sourceOptions
	output    string
	font      string
	fontFile  string
	fontSize  float64
	embedFont bool
}

func newBadgeCmd(root *rootOptions) *cobra.Command {
	opts := &badgeOptions{}

	cmd := &cobra.Command{
		Use:   "badge [path]",
		Short: "Analyse a tree and write an SVG status badge",
		Long: `Run the analysis and write a "bandbox | passed/total rules" badge.
Green when every rule passes, yellow at three quarters or more, red below
that, grey when any rule errored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rs, err := analysis(cmd, args, root.cfg, &opts.source)
			if err != nil {
				return err
			}

			metrics, err := loadBadgeFont(opts)
			if err != nil {
				return err
			}
			engine := badge.New(metrics)
			engine.EmbedFont = opts.embedFont

			b := badge.ForResults(rs)
			svg := engine.Generate(b)

			if opts.output == "-" {
				return writeOut(cmd.OutOrStdout(), []byte(svg))
			}
			if err := os.WriteFile(opts.output, []byte(svg), 0o644); err != nil {
				return fmt.Errorf("writing badge: %w", err)
			}
			logger := logging.GetLogger("cli")
			logger.Info().
				Str("path", opts.output).
				Str("value", b.Value).
				Msg("badge written")
			return nil
		},
	}

	f := cmd.Flags()
	opts.source.register(f)
	f.StringVarP(&opts.output, "output", "o", "bandbox.svg", "output path (- for stdout)")
	f.StringVar(&opts.font, "font", badge.DefaultFont, fmt.Sprintf("built-in font %v", badge.FontNames()))
	f.StringVar(&opts.fontFile, "font-file", "", "TTF/OTF font file, overrides --font")
	f.Float64Var(&opts.fontSize, "font-size", 11, "font size in points")
	f.BoolVar(&opts.embedFont, "embed-font", false, "embed the font in the SVG")
	return cmd
}

func loadBadgeFont(opts *badgeOptions) (*badge.FontMetrics, error) {
	if opts.fontFile != "" {
		return badge.LoadFontFile(opts.fontFile, opts.fontSize)
	}
	return badge.LoadBuiltinFont(opts.font, opts.fontSize)
}
