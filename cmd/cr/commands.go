package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/komsit37/creditrisk/pkg/cr/classify"
	"github.com/komsit37/creditrisk/pkg/cr/columns"
	"github.com/komsit37/creditrisk/pkg/cr/types"
)

func (a *app) newTable() table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(a.stdout)
	if a.cfg.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	return tw
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "classify INDUSTRY...",
		Short:   "Show the category, Z-Score variant and caveat for industry labels",
		Example: `  cr classify "Auto Manufacturers" "Banks - Regional" "Software - Infrastructure"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := classify.New(a.cfg.Keywords)
			tw := a.newTable()
			tw.AppendHeader(table.Row{"Industry", "Category", "Variant", "Keyword", "Caveat"})
			for _, label := range args {
				// Liabilities are irrelevant to the category; a positive
				// placeholder keeps MertonReason out of the output.
				p := c.Classify(label, types.Value(1))
				_, kw := c.Category(label)
				tw.AppendRow(table.Row{label, p.Category, p.Variant, kw, p.Caveat})
			}
			tw.Render()
			return nil
		},
	}
}

func (a *app) setsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List summary column sets and columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := a.newTable()
			tw.AppendHeader(table.Row{"Set", "Columns"})
			for _, name := range columns.AvailableSets() {
				tw.AppendRow(table.Row{"@" + name, strings.Join(columns.Sets[name], ", ")})
			}
			tw.AppendSeparator()
			tw.AppendRow(table.Row{"(all)", strings.Join(columns.Available(), ", ")})
			tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
			tw.Render()
			return nil
		},
	}
}
