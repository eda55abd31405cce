package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/nwis"
	"github.com/gaugeworks/riverdata/internal/render"
	"github.com/gaugeworks/riverdata/internal/util"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Retrieve instantaneous gage readings",
	Long: `Fetch instantaneous values for one or more gages.

The time window is either a period shorthand (ISO-8601 duration, e.g. P7D for
the last seven days) or an explicit --start/--end range. When both are given,
the period wins; no error is raised.`,
}

var (
	flowPeriod string
	flowStart  string
	flowEnd    string
	flowParams []string
)

// ─── flow get ─────────────────────────────────────────────────────────────────

var flowGetCmd = &cobra.Command{
	Use:   "get <SITE_CODE...>",
	Short: "Fetch the time series for one or more gages",
	Example: `  riverdata flow get 09380000
  riverdata flow get 09380000 --period P1D
  riverdata flow get 09380000 --start 2024-01-01 --end 2024-01-31
  riverdata flow get 09380000 --param parameterCd=00065 --format csv --out stage.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		extra, err := parseParamFlags(flowParams)
		if err != nil {
			return err
		}

		start := time.Now()
		sites := normaliseSites(args)
		format := resolveFormat(deps.Config.Format)

		configure := func(string) fetchSpec {
			spec := fetchSpec{extra: make(map[string]string, len(extra)+2)}
			for k, v := range extra {
				spec.extra[k] = v
			}
			if flowStart != "" || flowEnd != "" {
				// Explicit range mode: suppress the period and pass the
				// range straight through as query parameters.
				spec.period = ""
				spec.start = flowStart
				spec.end = flowEnd
				if flowStart != "" {
					spec.extra[nwis.ParamStartDT] = flowStart
				}
				if flowEnd != "" {
					spec.extra[nwis.ParamEndDT] = flowEnd
				}
			} else {
				spec.period = flowPeriod
				if spec.period == "" {
					spec.period = deps.Config.Period
				}
			}
			return spec
		}

		if len(sites) == 1 {
			g := deps.Client.NewGageRequest(sites[0])
			spec := configure(sites[0])
			g.TimePeriod = spec.period
			g.StartDate = spec.start
			g.EndDate = spec.end
			for k, v := range spec.extra {
				g.ExtraParams[k] = v
			}
			if err := g.FetchAndExtract(cmd.Context(), false); err != nil {
				return err
			}
			data := g.Data()
			result := &model.Result{
				Kind:        model.KindSeriesData,
				GeneratedAt: time.Now(),
				Command:     fmt.Sprintf("flow get %s", sites[0]),
				Data:        data,
				Stats: model.ResultStats{
					DurationMs: time.Since(start).Milliseconds(),
					Items:      len(data.Series),
				},
			}
			if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
				return err
			}
			render.PrintFooter(cmd.OutOrStdout(), result, deps.Config.Verbose)
			return nil
		}

		// Multiple sites: fetch concurrently, output sequentially
		datas, warnings := batchFetch(cmd.Context(), deps, sites, configure)

		for _, data := range datas {
			result := &model.Result{
				Kind:        model.KindSeriesData,
				GeneratedAt: time.Now(),
				Command:     fmt.Sprintf("flow get %s", data.SiteCode),
				Data:        data,
				Warnings:    warnings,
				Stats: model.ResultStats{
					DurationMs: time.Since(start).Milliseconds(),
					Items:      len(data.Series),
				},
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

// ─── flow latest ──────────────────────────────────────────────────────────────

var flowLatestCmd = &cobra.Command{
	Use:   "latest <SITE_CODE...>",
	Short: "Show the most recent reading for one or more gages",
	Example: `  riverdata flow latest 09380000
  riverdata flow latest 09380000 01646500`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		sites := normaliseSites(args)

		type latestRow struct {
			Site  string
			Time  string
			Value string
			Unit  string
		}
		var rows []latestRow
		var warnings []string

		for _, site := range sites {
			g, err := nwis.RetrieveFlow(cmd.Context(), deps.Client, site, false)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", site, err))
				continue
			}
			if len(g.TimeSeries) == 0 {
				warnings = append(warnings, fmt.Sprintf("%s: no readings in window", site))
				continue
			}
			rec := g.TimeSeries[len(g.TimeSeries)-1]
			row := latestRow{
				Site:  site,
				Time:  util.RecordString(rec, "dateTime"),
				Value: util.RecordString(rec, "value"),
			}
			if g.Meta != nil {
				row.Unit = g.Meta.Unit
			}
			rows = append(rows, row)
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"SITE", "TIME", "VALUE", "UNIT"}, func(add func(...string)) {
			for _, r := range rows {
				add(r.Site, r.Time, r.Value, r.Unit)
			}
		})
		for _, w := range warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "⚠  %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flowCmd)
	flowCmd.AddCommand(flowGetCmd)
	flowCmd.AddCommand(flowLatestCmd)

	flowGetCmd.Flags().StringVar(&flowPeriod, "period", "", "time period shorthand (ISO-8601 duration, e.g. P7D)")
	flowGetCmd.Flags().StringVar(&flowStart, "start", "", "range start (startDT), e.g. 2024-01-01")
	flowGetCmd.Flags().StringVar(&flowEnd, "end", "", "range end (endDT), e.g. 2024-01-31")
	flowGetCmd.Flags().StringArrayVar(&flowParams, "param", nil, "extra query parameter key=value (repeatable)")
}
