package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/config"
	"github.com/sofmeright/bandbox/src/logging"
	"github.com/sofmeright/bandbox/src/output"
)

// rootOptions is the state shared by every subcommand.
type rootOptions struct {
	cfgFile string
	verbose int
	cfg     *config.Config
}

// NewRootCommand builds the bandbox command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "bandbox",
		Short: "Audit how a dataset's files and directories are organised",
		Long: `bandbox scans a directory tree and reports structural and naming problems:
empty directories, generic names, too many files per directory, mixed file
types, dates and accession identifiers embedded in names, odd characters and
unknown extensions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(opts.verbose, cmd.ErrOrStderr(), !output.UseColor(os.Stderr))

			// Skip config loading for commands that don't need it.
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(config.LoadOptions{File: opts.cfgFile, Flags: cmd.Flags()})
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := cfg.CheckRequires(); err != nil {
				return err
			}
			logger := logging.GetLogger("cli")
			logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")
			opts.cfg = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default: .bandbox.yml, .bandbox.yaml or .bandbox.toml)")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")

	rootCmd.AddCommand(
		newAnalyseCmd(opts),
		newViewCmd(opts),
		newRulesCmd(opts),
		newConfigCmd(opts),
		newBadgeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "bandbox:", err)
		return err
	}
	return nil
}
