package cmd

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/config"
	"github.com/sofmeright/bandbox/src/logging"
	"github.com/sofmeright/bandbox/src/tree"
)

func newViewCmd(root *rootOptions) *cobra.Command {
	var (
		src            sourceOptions
		hideFileCounts bool
	)

	cmd := &cobra.Command{
		Use:   "view [path]",
		Short: "Print the organisation tree without running rules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := src.buildTree(cmd, args, root.cfg.Report.ShowFileCounts)
			if err != nil {
				return err
			}
			logTreeData(t)

			var buf bytes.Buffer
			if err := tree.Render(&buf, t); err != nil {
				return err
			}
			return writeOut(cmd.OutOrStdout(), buf.Bytes())
		},
	}

	src.register(cmd.Flags())
	cmd.Flags().BoolVar(&hideFileCounts, "hide-file-counts", false, "omit per-extension counts")
	config.BindInverseFlag(cmd.Flags(), "hide-file-counts", "report.show_file_counts")
	return cmd
}

// logTreeData dumps the nested tree structure at debug level.
func logTreeData(t *tree.Tree) {
	logger := logging.GetLogger("cli")
	e := logger.Debug()
	if !e.Enabled() {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		e.Err(err).Msg("encoding tree data")
		return
	}
	e.RawJSON("tree", data).Msg("tree data")
}
