package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/analyze"
	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/render"
	"github.com/gaugeworks/riverdata/internal/util"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Statistics over fetched gage series",
}

// ─── analyze summary ──────────────────────────────────────────────────────────

var (
	analyzeKey    string
	analyzePeriod string
)

var analyzeSummaryCmd = &cobra.Command{
	Use:   "summary <SITE_CODE>",
	Short: "Descriptive statistics for a gage's readings",
	Long: `Compute count, missing-data share, mean, spread, and percentiles over
the value column of a series.

By default the series is fetched live. Pass --key to analyze a series that was
previously persisted with 'riverdata fetch sites --store'.`,
	Example: `  riverdata analyze summary 09380000
  riverdata analyze summary 09380000 --period P30D
  riverdata analyze summary 09380000 --key "site:09380000|period:P7D"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		site := args[0]
		start := time.Now()
		format := resolveFormat(deps.Config.Format)

		var series model.TimeSeries
		noData := math.NaN()
		storeHit := false

		if analyzeKey != "" {
			if err := deps.RequireStore(); err != nil {
				return err
			}
			defer deps.Close()
			data, ok, err := deps.Store.GetSeries(analyzeKey)
			if err != nil {
				return fmt.Errorf("reading series: %w", err)
			}
			if !ok {
				return fmt.Errorf("no stored series under key %q (try 'riverdata store keys')", analyzeKey)
			}
			series = data.Series
			if meta, found, _ := deps.Store.GetGageMeta(data.SiteCode); found {
				noData = meta.NoDataValue
			}
			storeHit = true
		} else {
			g := deps.Client.NewGageRequest(site)
			if analyzePeriod != "" {
				g.TimePeriod = analyzePeriod
			} else {
				g.TimePeriod = deps.Config.Period
			}
			if err := g.FetchAndExtract(cmd.Context(), false); err != nil {
				return err
			}
			series = g.TimeSeries
			if g.Meta != nil {
				noData = g.Meta.NoDataValue
			}
		}

		summary := analyze.Summarize(site, series, noData)

		if format == render.FormatTable {
			printSimpleTable(cmd.OutOrStdout(), []string{"STAT", "VALUE"}, func(add func(...string)) {
				add("site", summary.SiteCode)
				add("count", fmt.Sprintf("%d", summary.Count))
				add("missing", fmt.Sprintf("%d (%.1f%%)", summary.Missing, summary.MissingPct))
				add("mean", util.FormatValue(summary.Mean))
				add("std", util.FormatValue(summary.Std))
				add("min", util.FormatValue(summary.Min))
				add("p25", util.FormatValue(summary.P25))
				add("median", util.FormatValue(summary.Median))
				add("p75", util.FormatValue(summary.P75))
				add("max", util.FormatValue(summary.Max))
				add("first", fmt.Sprintf("%s @ %s", util.FormatValue(summary.First), summary.FirstTime))
				add("last", fmt.Sprintf("%s @ %s", util.FormatValue(summary.Last), summary.LastTime))
				add("change", util.FormatValue(summary.Change))
			})
			return nil
		}

		result := &model.Result{
			Kind:        model.KindSummary,
			GeneratedAt: time.Now(),
			Command:     fmt.Sprintf("analyze summary %s", site),
			Data:        summary,
			Stats: model.ResultStats{
				DurationMs: time.Since(start).Milliseconds(),
				Items:      summary.Count,
				StoreHit:   storeHit,
			},
		}
		return render.RenderTo(globalFlags.Out, result, format)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeSummaryCmd)

	analyzeSummaryCmd.Flags().StringVar(&analyzeKey, "key", "", "analyze a stored series by key instead of fetching")
	analyzeSummaryCmd.Flags().StringVar(&analyzePeriod, "period", "", "time period shorthand for the live fetch")
}
