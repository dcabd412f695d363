package cmd

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sofmeright/bandbox/src/lint/rules"
)

func newRulesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			disabled := root.cfg.Rules.Disabled

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "ID", "Description", "Enabled"})
			for i, r := range rules.All() {
				enabled := "yes"
				if slices.Contains(disabled, r.ID) {
					enabled = "no"
				}
				t.AppendRow(table.Row{i + 1, r.ID, r.Description, enabled})
			}
			t.Render()
			return nil
		},
	}
}
