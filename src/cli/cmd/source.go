package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sofmeright/bandbox/src/config"
	bberrors "github.com/sofmeright/bandbox/src/errors"
	"github.com/sofmeright/bandbox/src/logging"
	"github.com/sofmeright/bandbox/src/scan"
	"github.com/sofmeright/bandbox/src/tree"
)

const (
	sourceFS  = "fs"
	sourceGit = "git"
)

// sourceOptions selects where entries come from and how they are rooted.
type sourceOptions struct {
	prefix    string
	kind      string
	inputFile string
}

func (o *sourceOptions) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.prefix, "prefix", "p", "", "path prefix removed from every entry (default: parent of the scan root)")
	flags.StringVar(&o.kind, "source", sourceFS, "entry source: fs or git")
	flags.StringVarP(&o.inputFile, "input-file", "f", "", "read entries from a listing file instead of scanning (- for stdin)")
}

// buildTree scans the selected source and returns the organisation tree.
func (o *sourceOptions) buildTree(cmd *cobra.Command, args []string, showCounts bool) (*tree.Tree, error) {
	ctx := cmd.Context()
	logger := logging.GetLogger("cli")

	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	var (
		src      scan.Source
		prefix   string
		scanRoot string
	)
	switch {
	case o.inputFile != "":
		r, closeFn, err := openInput(cmd, o.inputFile)
		if err != nil {
			return nil, err
		}
		defer closeFn()

		base := ""
		if len(args) > 0 {
			base, err = absSlash(root)
			if err != nil {
				return nil, err
			}
			prefix = parentSlash(base)
			scanRoot = base
		}
		src = scan.List{Reader: r, Base: base}
	case o.kind == sourceFS || o.kind == "":
		abs, err := absSlash(root)
		if err != nil {
			return nil, err
		}
		prefix, scanRoot = parentSlash(abs), abs
		src = scan.FS{Root: root}
	case o.kind == sourceGit:
		abs, err := absSlash(root)
		if err != nil {
			return nil, err
		}
		prefix, scanRoot = parentSlash(abs), abs
		src = scan.Git{Root: root}
	default:
		return nil, bberrors.Newf(bberrors.ErrConfigInvalid, "unknown source %q (expected fs or git)", o.kind).
			WithDetail("key", "source")
	}

	if cmd.Flags().Changed("prefix") {
		prefix = filepath.ToSlash(o.prefix)
	}

	logger.Debug().Str("root", root).Str("prefix", prefix).Str("source", o.kind).Msg("building tree")
	return tree.Build(ctx, src, prefix, tree.Options{ShowFileCounts: showCounts, Root: scanRoot})
}

func openInput(cmd *cobra.Command, name string) (io.Reader, func(), error) {
	if name == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, bberrors.Wrapf(err, bberrors.ErrPath, "opening input file %q", name)
	}
	return f, func() { _ = f.Close() }, nil
}

func absSlash(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", bberrors.Wrapf(err, bberrors.ErrPath, "resolving %q", p)
	}
	return filepath.ToSlash(abs), nil
}

// parentSlash returns the slash-form parent of p, so that p's own name
// stays the top-level tree element.
func parentSlash(p string) string {
	parent := filepath.ToSlash(filepath.Dir(filepath.FromSlash(p)))
	if parent == "/" || parent == "." {
		return ""
	}
	return parent
}

// compileRules resolves the remote extension list, if configured, and
// compiles the rule configuration.
func compileRules(ctx context.Context, cfg *config.Config) (*config.Rules, error) {
	resolved := *cfg
	resolved.Rules.KnownExtensions = append([]string(nil), cfg.Rules.KnownExtensions...)

	if url := cfg.Rules.KnownExtensionsURL; url != "" {
		logger := logging.GetLogger("cli")
		fetchCtx, cancel := context.WithTimeout(ctx, config.DefaultFetchTimeout)
		exts, err := config.FetchKnownExtensions(fetchCtx, http.DefaultClient, url)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("using local known extensions only")
		} else {
			logger.Debug().Int("count", len(exts)).Str("url", url).Msg("fetched known extensions")
			resolved.MergeKnownExtensions(exts)
		}
	}

	rules, err := config.Compile(&resolved)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}
	return rules, nil
}
