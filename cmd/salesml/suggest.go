package main

import (
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/salesml/internal/config"
	"github.com/YuminosukeSato/salesml/pkg/log"
	"github.com/YuminosukeSato/salesml/report"
	"github.com/YuminosukeSato/salesml/sales"
)

func newSuggestCmd(a *app) *cobra.Command {
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest the item most often sold with the worst seller",
		Long: `suggest reads a table of bills (one column per item, one row per bill),
finds the best and worst selling items and prints the remaining items and the
item most often bought together with the worst seller.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.suggest(cmd)
		},
	}

	f := cmd.Flags()
	f.String("sales-path", def.SalesPath, "CSV of item quantities per bill (.xz accepted)")
	f.String("chart-out", def.ChartOut, "write an HTML bar chart of the item totals to this file")
	f.StringP("output", "o", def.Output, "output format: text or json")
	return cmd
}

func (a *app) suggest(cmd *cobra.Command) error {
	cfg := a.cfg
	table, err := sales.Load(cfg.SalesPath)
	if err != nil {
		return err
	}
	summary, err := sales.Analyze(table)
	if err != nil {
		return err
	}

	if cfg.ChartOut != "" {
		if err := report.SaveSalesChart(cfg.ChartOut, summary); err != nil {
			return err
		}
		log.GetLoggerWithName("cli").Info("Chart written", log.PathKey, cfg.ChartOut)
	}
	return report.WriteSales(cmd.OutOrStdout(), cfg.Output, summary)
}
