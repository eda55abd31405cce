package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/nwis"
	"github.com/gaugeworks/riverdata/internal/render"
	"github.com/gaugeworks/riverdata/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Batch-fetch and optionally persist gage data",
	Long: `Convenience commands for fetching several gages in one call.

Use --store to persist extracted series to the local database for offline
analysis with 'riverdata analyze'.`,
}

// ─── fetch sites ──────────────────────────────────────────────────────────────

var (
	fetchPeriod string
	fetchStart  string
	fetchEnd    string
	fetchStore  bool
)

var fetchSitesCmd = &cobra.Command{
	Use:   "sites <SITE_CODE...>",
	Short: "Bulk-fetch time series for multiple gages",
	Example: `  riverdata fetch sites 09380000 01646500
  riverdata fetch sites 09380000 01646500 --period P1D
  riverdata fetch sites 09380000 --store`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		start := time.Now()
		sites := normaliseSites(args)
		format := resolveFormat(deps.Config.Format)

		period := fetchPeriod
		if period == "" && fetchStart == "" && fetchEnd == "" {
			period = deps.Config.Period
		}

		configure := func(string) fetchSpec {
			spec := fetchSpec{period: period, extra: make(map[string]string, 2)}
			if fetchStart != "" {
				spec.start = fetchStart
				spec.extra[nwis.ParamStartDT] = fetchStart
			}
			if fetchEnd != "" {
				spec.end = fetchEnd
				spec.extra[nwis.ParamEndDT] = fetchEnd
			}
			return spec
		}

		datas, warnings := batchFetch(cmd.Context(), deps, sites, configure)

		// Persist to the local store if requested. Series and metadata are
		// written in two batch passes so a partial failure is visible per
		// bucket, not per site.
		if fetchStore {
			if err := deps.RequireStore(); err != nil {
				return err
			}
			defer deps.Close()

			for _, data := range datas {
				key := store.SeriesKey(data.SiteCode, period, fetchStart, fetchEnd)
				if err := deps.Store.PutSeries(key, data); err != nil {
					return fmt.Errorf("storing series %s: %w", data.SiteCode, err)
				}
			}
			for _, data := range datas {
				if data.Meta == nil {
					continue
				}
				if err := deps.Store.PutGageMeta(*data.Meta); err != nil {
					return fmt.Errorf("storing gage meta %s: %w", data.SiteCode, err)
				}
			}
			if !deps.Config.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Stored %d series (%s)\n", len(datas), deps.Store.Path())
			}
		}

		for _, data := range datas {
			result := &model.Result{
				Kind:        model.KindSeriesData,
				GeneratedAt: time.Now(),
				Command:     fmt.Sprintf("fetch sites %s", data.SiteCode),
				Data:        data,
				Warnings:    warnings,
				Stats: model.ResultStats{
					DurationMs: time.Since(start).Milliseconds(),
					Items:      len(data.Series),
				},
			}
			if fetchStore && format == render.FormatTable {
				continue // stored, not printed, unless a machine format is asked for
			}
			if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
				return err
			}
		}
		if len(warnings) > 0 {
			render.PrintFooter(cmd.OutOrStdout(), &model.Result{Warnings: warnings}, deps.Config.Verbose)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchSitesCmd)

	fetchSitesCmd.Flags().StringVar(&fetchPeriod, "period", "", "time period shorthand (e.g. P7D)")
	fetchSitesCmd.Flags().StringVar(&fetchStart, "start", "", "range start (startDT)")
	fetchSitesCmd.Flags().StringVar(&fetchEnd, "end", "", "range end (endDT)")
	fetchSitesCmd.Flags().BoolVar(&fetchStore, "store", false, "persist extracted series to the local database")
}
