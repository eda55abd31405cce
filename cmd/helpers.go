package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/gaugeworks/riverdata/internal/app"
	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/render"
)

// normaliseSites trims whitespace and removes duplicate site codes while
// preserving order.
func normaliseSites(sites []string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// resolveFormat returns the effective format string, falling back to "table".
func resolveFormat(cfgFormat string) string {
	if globalFlags.Format != "" {
		return globalFlags.Format
	}
	if cfgFormat != "" {
		return cfgFormat
	}
	return render.FormatTable
}

// parseParamFlags parses repeated --param key=value flags into a map.
func parseParamFlags(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		params[key] = value
	}
	return params, nil
}

// siteResult pairs one site's fetched data with any error it produced.
type siteResult struct {
	data *model.SeriesData
	err  error
}

// batchFetch retrieves the given sites concurrently, one independent request
// object per site, and returns results in input order plus per-site errors
// flattened into warnings.
func batchFetch(ctx context.Context, deps *app.Deps, sites []string, configure func(site string) fetchSpec) ([]*model.SeriesData, []string) {
	const concurrency = 4

	sem := make(chan struct{}, concurrency)
	results := make([]siteResult, len(sites))
	var wg sync.WaitGroup

	for i, site := range sites {
		i, site := i, site
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			spec := configure(site)
			g := deps.Client.NewGageRequest(site)
			g.TimePeriod = spec.period
			g.StartDate = spec.start
			g.EndDate = spec.end
			for k, v := range spec.extra {
				g.ExtraParams[k] = v
			}
			if err := g.FetchAndExtract(ctx, false); err != nil {
				results[i] = siteResult{err: err}
				return
			}
			results[i] = siteResult{data: g.Data()}
		}()
	}
	wg.Wait()

	var datas []*model.SeriesData
	var warnings []string
	for i, r := range results {
		if r.err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", sites[i], r.err))
		} else if r.data != nil {
			datas = append(datas, r.data)
		}
	}
	return datas, warnings
}

// fetchSpec carries the per-site window configuration for batchFetch.
type fetchSpec struct {
	period string
	start  string
	end    string
	extra  map[string]string
}

// printSimpleTable renders a simple table with headers using tablewriter.
// The add callback is called with row values as variadic strings.
func printSimpleTable(w io.Writer, headers []string, fill func(add func(...string))) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)

	fill(func(cols ...string) {
		tw.Append(cols)
	})
	tw.Render()
}

// humanBytes formats a byte count for display.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
