package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/render"
)

var gageCmd = &cobra.Command{
	Use:   "gage",
	Short: "Inspect gage site metadata",
}

// ─── gage info ────────────────────────────────────────────────────────────────

var gageInfoCmd = &cobra.Command{
	Use:   "info <SITE_CODE>",
	Short: "Show site and variable metadata for a gage",
	Long: `Fetch a minimal window from the IV service and report the site name,
location, and measured variable carried alongside the readings.`,
	Example: `  riverdata gage info 09380000
  riverdata gage info 09380000 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		start := time.Now()
		format := resolveFormat(deps.Config.Format)

		// The tightest window the period shorthand allows; we only want
		// the header blocks, not the readings.
		g := deps.Client.NewGageRequest(args[0])
		g.TimePeriod = "PT1H"
		if err := g.FetchAndExtract(cmd.Context(), false); err != nil {
			return err
		}
		if g.Meta == nil {
			return fmt.Errorf("no metadata in response for site %s", args[0])
		}

		result := &model.Result{
			Kind:        model.KindGageMeta,
			GeneratedAt: time.Now(),
			Command:     fmt.Sprintf("gage info %s", args[0]),
			Data:        g.Meta,
			Stats: model.ResultStats{
				DurationMs: time.Since(start).Milliseconds(),
				Items:      1,
			},
		}
		if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
			return err
		}
		render.PrintFooter(cmd.OutOrStdout(), result, deps.Config.Verbose)
		return nil
	},
}

// ─── gage table ───────────────────────────────────────────────────────────────

var gageTablePeriod string

var gageTableCmd = &cobra.Command{
	Use:   "table <SITE_CODE>",
	Short: "Fetch a gage's readings as an explicit two-dimensional table",
	Long: `Like 'flow get', but materializes the readings through the tabular
frame facility: one row per record, columns being the union of record fields
in first-seen order.`,
	Example: `  riverdata gage table 09380000
  riverdata gage table 09380000 --period P1D --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}

		start := time.Now()
		format := resolveFormat(deps.Config.Format)

		g := deps.Client.NewGageRequest(args[0])
		if gageTablePeriod != "" {
			g.TimePeriod = gageTablePeriod
		} else {
			g.TimePeriod = deps.Config.Period
		}
		if err := g.FetchAndExtract(cmd.Context(), true); err != nil {
			return err
		}

		result := &model.Result{
			Kind:        model.KindTable,
			GeneratedAt: time.Now(),
			Command:     fmt.Sprintf("gage table %s", args[0]),
			Data:        g.Table,
			Stats: model.ResultStats{
				DurationMs: time.Since(start).Milliseconds(),
				Items:      len(g.Table.Rows),
			},
		}
		if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
			return err
		}
		render.PrintFooter(cmd.OutOrStdout(), result, deps.Config.Verbose)
		return nil
	},
}

// ─── gage merge ───────────────────────────────────────────────────────────────

var gageMergeCmd = &cobra.Command{
	Use:    "merge",
	Hidden: true,
	Short:  "Merge multiple retrievals for one gage (not supported)",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		g := deps.Client.NewGageRequest("")
		return g.MergeWith(nil)
	},
}

func init() {
	rootCmd.AddCommand(gageCmd)
	gageCmd.AddCommand(gageInfoCmd)
	gageCmd.AddCommand(gageTableCmd)
	gageCmd.AddCommand(gageMergeCmd)

	gageTableCmd.Flags().StringVar(&gageTablePeriod, "period", "", "time period shorthand (default from config)")
}
