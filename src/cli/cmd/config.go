package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/config"
	bberrors "github.com/sofmeright/bandbox/src/errors"
)

const defaultConfigName = ".bandbox.toml"

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create configuration",
	}
	cmd.AddCommand(newConfigShowCmd(root), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(root.cfg, format)
			if err != nil {
				return err
			}
			if root.cfg.File != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "# loaded from %s\n", root.cfg.File)
			}
			return writeOut(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output syntax: yaml or toml")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file populated with the defaults",
		Long: `Write the default configuration to path (default: .bandbox.toml). A .yml or
.yaml path gets YAML, anything else TOML.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigName
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return bberrors.Newf(bberrors.ErrConfigLoad, "%s already exists (use --force to overwrite)", path)
			}

			data, err := initDocument(path)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s\n", path)
			fmt.Fprintf(out, "known extensions are not refreshed from the network; to opt in set rules.known_extensions_url to\n  %s\n",
				config.CommunityExtensionsURL)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func initDocument(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		cfg, err := config.Default()
		if err != nil {
			return nil, err
		}
		return config.Marshal(cfg, "yaml")
	default:
		return config.DefaultsTOML(), nil
	}
}
