package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/config"
	"github.com/sofmeright/bandbox/src/lint"
	"github.com/sofmeright/bandbox/src/lint/rules"
	"github.com/sofmeright/bandbox/src/logging"
	"github.com/sofmeright/bandbox/src/output"
	"github.com/sofmeright/bandbox/src/tree"
)

type analyseOptions struct {
	source         sourceOptions
	includeRoot    bool
	summarise      bool
	summariseSize  int
	showTree       bool
	hideFileCounts bool
	skip           []string
	format         string
	junit          string
	strict         bool
}

func newAnalyseCmd(root *rootOptions) *cobra.Command {
	opts := &analyseOptions{}

	cmd := &cobra.Command{
		Use:     "analyse [path]",
		Aliases: []string{"analyze"},
		Short:   "Run every organisation rule over a directory tree",
		Long: `Scan path (default: the current directory), build its organisation tree and
run every enabled rule. Each rule reports ok, fail with the offending paths,
or error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyse(cmd, args, root.cfg, opts)
		},
	}

	f := cmd.Flags()
	opts.source.register(f)
	f.BoolVar(&opts.includeRoot, "include-root", false, "report the top-level directory itself when empty")
	f.BoolVarP(&opts.summarise, "summarise", "S", false, "truncate long finding lists")
	f.IntVarP(&opts.summariseSize, "summarise-size", "s", 5, "findings shown per rule when summarising")
	f.BoolVarP(&opts.showTree, "show-tree", "T", false, "print the tree before the report")
	f.BoolVar(&opts.hideFileCounts, "hide-file-counts", false, "omit per-extension counts from the tree")
	f.StringSliceVar(&opts.skip, "skip", nil, "rule IDs to skip (comma-separated)")
	f.StringVar(&opts.format, "format", config.FormatText, "report format: text or json")
	f.StringVar(&opts.junit, "junit", "", "also write a JUnit XML report to this path")
	f.BoolVar(&opts.strict, "strict", false, "exit non-zero when any rule fails or errors")

	config.BindFlag(f, "include-root", "rules.include_root")
	config.BindFlag(f, "summarise", "report.summarise")
	config.BindFlag(f, "summarise-size", "report.summarise_size")
	config.BindFlag(f, "skip", "rules.disabled")
	config.BindFlag(f, "format", "report.format")
	config.BindFlag(f, "junit", "report.junit")
	config.BindInverseFlag(f, "hide-file-counts", "report.show_file_counts")

	return cmd
}

// analysis runs the engine over the tree selected by src.
func analysis(cmd *cobra.Command, args []string, cfg *config.Config, src *sourceOptions) (*tree.Tree, lint.Results, error) {
	ctx := cmd.Context()
	done := logging.LogOperationStart(logging.GetLogger("cli"), "analyse")
	defer done()

	compiled, err := compileRules(ctx, cfg)
	if err != nil {
		return nil, lint.Results{}, err
	}
	t, err := src.buildTree(cmd, args, cfg.Report.ShowFileCounts)
	if err != nil {
		return nil, lint.Results{}, err
	}
	engine, err := lint.NewEngine(rules.All(), cfg.Rules.Disabled, 0)
	if err != nil {
		return nil, lint.Results{}, err
	}
	rs, err := engine.Run(ctx, t, compiled)
	if err != nil {
		return nil, lint.Results{}, err
	}
	return t, rs, nil
}

func runAnalyse(cmd *cobra.Command, args []string, cfg *config.Config, opts *analyseOptions) error {
	logger := logging.GetLogger("cli")

	t, rs, err := analysis(cmd, args, cfg, &opts.source)
	if err != nil {
		return err
	}

	// Render fully before writing so a closed pipe cuts the report in one place.
	var buf bytes.Buffer
	if opts.showTree {
		if err := tree.Render(&buf, t); err != nil {
			return err
		}
		buf.WriteString("\n")
	}

	payloads := output.ClassifyAll(rs, cfg.Report.Summarise, cfg.Report.SummariseSize)
	switch cfg.Report.Format {
	case config.FormatJSON:
		if err := output.WriteJSON(&buf, rs, payloads); err != nil {
			return err
		}
	default:
		output.WriteText(&buf, payloads, output.TextOptions{
			Title:   reportTitle(args),
			Elapsed: rs.Elapsed,
			Color:   writerColor(cmd.OutOrStdout()),
		})
	}

	if cfg.Report.JUnit != "" {
		if err := output.WriteJUnit(cfg.Report.JUnit, rs); err != nil {
			return err
		}
		logger.Info().Str("path", cfg.Report.JUnit).Msg("wrote junit report")
	}

	if err := writeOut(cmd.OutOrStdout(), buf.Bytes()); err != nil {
		return err
	}

	if opts.strict && !rs.Clean() {
		ok, fail, errored := rs.Counts()
		return fmt.Errorf("%d of %d rules did not pass", fail+errored, ok+fail+errored)
	}
	return nil
}

func reportTitle(args []string) string {
	if len(args) == 0 {
		return "bandbox"
	}
	return "bandbox · " + filepath.Base(filepath.Clean(args[0]))
}

// writerColor reports whether w is a terminal that should get colour.
func writerColor(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return output.UseColor(f)
	}
	return false
}

// writeOut writes p to w, dropping broken pipe errors.
func writeOut(w io.Writer, p []byte) error {
	if _, err := w.Write(p); err != nil && !errors.Is(err, syscall.EPIPE) {
		return err
	}
	return nil
}
