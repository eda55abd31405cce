package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/render"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect locally accumulated data",
	Long: `Commands for inspecting what data has been accumulated in the local database.

Use 'riverdata fetch sites --store' to accumulate data.
Use 'riverdata cache stats' for bucket-level storage stats.`,
}

// ─── store list ───────────────────────────────────────────────────────────────

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List gages accumulated in the local database",
	Example: `  riverdata store list
  riverdata store list --format csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		metas, err := deps.Store.ListGageMeta()
		if err != nil {
			return fmt.Errorf("reading store: %w", err)
		}

		if len(metas) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No gages in local database.")
			fmt.Fprintln(cmd.OutOrStdout(), "  Use: riverdata fetch sites <SITE_CODE...> --store")
			return nil
		}

		// Sort by site code for deterministic output
		sort.Slice(metas, func(i, j int) bool { return metas[i].SiteCode < metas[j].SiteCode })

		// Count stored windows per site
		keys, _ := deps.Store.ListSeriesKeys("")
		keyCounts := make(map[string]int)
		for _, k := range keys {
			if id := extractSiteFromKey(k); id != "" {
				keyCounts[id]++
			}
		}

		format := resolveFormat(deps.Config.Format)
		if format != render.FormatTable {
			result := &model.Result{
				Kind:        model.KindGageMeta,
				GeneratedAt: time.Now(),
				Command:     "store list",
				Data:        metas,
				Stats:       model.ResultStats{Items: len(metas), StoreHit: true},
			}
			return render.RenderTo(globalFlags.Out, result, format)
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"SITE", "NAME", "VARIABLE", "WINDOWS"}, func(add func(...string)) {
			for _, m := range metas {
				add(m.SiteCode, m.SiteName, m.VariableCode, fmt.Sprintf("%d", keyCounts[m.SiteCode]))
			}
		})
		return nil
	},
}

// ─── store keys ───────────────────────────────────────────────────────────────

var storeKeysSite string

var storeKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List stored series keys",
	Example: `  riverdata store keys
  riverdata store keys --site 09380000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		keys, err := deps.Store.ListSeriesKeys(storeKeysSite)
		if err != nil {
			return fmt.Errorf("listing keys: %w", err)
		}
		if len(keys) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored series.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

// ─── store show ───────────────────────────────────────────────────────────────

var storeShowCmd = &cobra.Command{
	Use:     "show <KEY>",
	Short:   "Print a stored series by its key",
	Example: `  riverdata store show "site:09380000|period:P7D"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		if err := deps.RequireStore(); err != nil {
			return err
		}
		defer deps.Close()

		data, ok, err := deps.Store.GetSeries(args[0])
		if err != nil {
			return fmt.Errorf("reading series: %w", err)
		}
		if !ok {
			return fmt.Errorf("no stored series under key %q (try 'riverdata store keys')", args[0])
		}

		if meta, found, _ := deps.Store.GetGageMeta(data.SiteCode); found {
			data.Meta = &meta
		}

		result := &model.Result{
			Kind:        model.KindSeriesData,
			GeneratedAt: time.Now(),
			Command:     fmt.Sprintf("store show %s", args[0]),
			Data:        data,
			Stats:       model.ResultStats{Items: len(data.Series), StoreHit: true},
		}
		format := resolveFormat(deps.Config.Format)
		if err := render.RenderTo(globalFlags.Out, result, format); err != nil {
			return err
		}
		render.PrintFooter(cmd.OutOrStdout(), result, deps.Config.Verbose)
		return nil
	},
}

// extractSiteFromKey pulls the site code out of a series key
// ("site:<code>|...").
func extractSiteFromKey(key string) string {
	rest, ok := strings.CutPrefix(key, "site:")
	if !ok {
		return ""
	}
	if i := strings.IndexByte(rest, '|'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeKeysCmd)
	storeCmd.AddCommand(storeShowCmd)

	storeKeysCmd.Flags().StringVar(&storeKeysSite, "site", "", "only keys for this site code")
}
