// Package render converts Result values into human-readable or
// machine-parseable output. Each format is a separate function; the top-level
// Render dispatcher selects based on the format string.
package render

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/gaugeworks/riverdata/internal/frame"
	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/util"
)

// Format constants matching --format flag values.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatTSV   = "tsv"
	FormatMD    = "md"
)

// Render writes result to w in the specified format.
func Render(w io.Writer, result *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, result)
	case FormatJSONL:
		return renderJSONL(w, result)
	case FormatCSV:
		return renderDelimited(w, result, ',')
	case FormatTSV:
		return renderDelimited(w, result, '\t')
	case FormatMD:
		return renderMarkdown(w, result)
	default:
		return renderTable(w, result)
	}
}

// RenderTo writes to stdout by default; if path is non-empty, writes to file.
func RenderTo(path string, result *model.Result, format string) error {
	if path == "" {
		return Render(os.Stdout, result, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	return Render(f, result, format)
}

// ─── JSON ─────────────────────────────────────────────────────────────────────

func renderJSON(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// ─── JSONL ────────────────────────────────────────────────────────────────────

func renderJSONL(w io.Writer, result *model.Result) error {
	enc := json.NewEncoder(w)
	switch result.Kind {
	case model.KindSeriesData:
		sd, ok := result.Data.(*model.SeriesData)
		if !ok {
			return renderJSON(w, result)
		}
		for _, rec := range sd.Series {
			row := make(map[string]any, len(rec)+1)
			row["site_code"] = sd.SiteCode
			for k, v := range rec {
				row[k] = v
			}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	default:
		return enc.Encode(result.Data)
	}
}

// ─── Table ────────────────────────────────────────────────────────────────────

func renderTable(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindSeriesData:
		sd, ok := result.Data.(*model.SeriesData)
		if !ok {
			return fmt.Errorf("unexpected data type for series_data")
		}
		return renderSeriesTable(w, sd)
	case model.KindTable:
		t, ok := result.Data.(*model.Table)
		if !ok {
			return fmt.Errorf("unexpected data type for table")
		}
		writeTable(w, t.Columns, t.Rows)
		return nil
	case model.KindGageMeta:
		meta, ok := result.Data.(*model.GageMeta)
		if !ok {
			if metas, ok2 := result.Data.([]model.GageMeta); ok2 {
				return renderGageMetaSliceTable(w, metas)
			}
			return fmt.Errorf("unexpected data type for gage_meta")
		}
		return renderGageMetaTable(w, meta)
	default:
		// Fallback: JSON
		return renderJSON(w, result)
	}
}

func renderSeriesTable(w io.Writer, sd *model.SeriesData) error {
	t, err := frame.New().Build(sd.Series)
	if err != nil {
		return err
	}
	if sd.Meta != nil && sd.Meta.SiteName != "" {
		fmt.Fprintf(w, "%s  (%s", sd.Meta.SiteName, sd.SiteCode)
		if sd.Meta.VariableName != "" {
			fmt.Fprintf(w, ", %s", sd.Meta.VariableName)
		}
		fmt.Fprintln(w, ")")
	}
	writeTable(w, t.Columns, t.Rows)
	return nil
}

func renderGageMetaTable(w io.Writer, m *model.GageMeta) error {
	rows := [][]string{
		{"Site Code", m.SiteCode},
		{"Site Name", m.SiteName},
		{"Latitude", util.FormatValue(m.Latitude)},
		{"Longitude", util.FormatValue(m.Longitude)},
		{"Variable", m.VariableCode},
		{"Variable Name", m.VariableName},
		{"Unit", m.Unit},
		{"No-Data Value", util.FormatValue(m.NoDataValue)},
	}
	writeTable(w, []string{"FIELD", "VALUE"}, rows)
	return nil
}

func renderGageMetaSliceTable(w io.Writer, metas []model.GageMeta) error {
	rows := make([][]string, len(metas))
	for i, m := range metas {
		name := m.SiteName
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		rows[i] = []string{m.SiteCode, name, m.VariableCode, m.Unit}
	}
	writeTable(w, []string{"SITE", "NAME", "VARIABLE", "UNIT"}, rows)
	return nil
}

// writeTable renders headers and rows through tablewriter with the standard
// riverdata table style.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	tw := tablewriter.NewWriter(w)
	tw.SetHeader(headers)
	tw.SetBorder(true)
	tw.SetRowLine(false)
	tw.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetAutoWrapText(false)
	for _, r := range rows {
		tw.Append(r)
	}
	tw.Render()
}

// ─── CSV / TSV ────────────────────────────────────────────────────────────────

func renderDelimited(w io.Writer, result *model.Result, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep

	switch result.Kind {
	case model.KindSeriesData:
		sd, ok := result.Data.(*model.SeriesData)
		if !ok {
			return fmt.Errorf("unexpected data type for series_data")
		}
		t, err := frame.New().Build(sd.Series)
		if err != nil {
			return err
		}
		_ = cw.Write(t.Columns)
		for _, row := range t.Rows {
			_ = cw.Write(row)
		}
	case model.KindTable:
		t, ok := result.Data.(*model.Table)
		if !ok {
			return fmt.Errorf("unexpected data type for table")
		}
		_ = cw.Write(t.Columns)
		for _, row := range t.Rows {
			_ = cw.Write(row)
		}
	case model.KindGageMeta:
		if metas, ok := result.Data.([]model.GageMeta); ok {
			_ = cw.Write([]string{"site_code", "site_name", "latitude", "longitude", "variable_code", "variable_name", "unit"})
			for _, m := range metas {
				_ = cw.Write([]string{
					m.SiteCode, m.SiteName,
					util.FormatValue(m.Latitude), util.FormatValue(m.Longitude),
					m.VariableCode, m.VariableName, m.Unit,
				})
			}
		} else if m, ok := result.Data.(*model.GageMeta); ok {
			_ = cw.Write([]string{"field", "value"})
			_ = cw.Write([]string{"site_code", m.SiteCode})
			_ = cw.Write([]string{"site_name", m.SiteName})
			_ = cw.Write([]string{"variable_code", m.VariableCode})
			_ = cw.Write([]string{"variable_name", m.VariableName})
			_ = cw.Write([]string{"unit", m.Unit})
		}
	default:
		// Fallback: serialize as JSON on a single line
		b, _ := json.Marshal(result.Data)
		_ = cw.Write([]string{string(b)})
	}

	cw.Flush()
	return cw.Error()
}

// ─── Markdown ─────────────────────────────────────────────────────────────────

func renderMarkdown(w io.Writer, result *model.Result) error {
	switch result.Kind {
	case model.KindSeriesData:
		sd, ok := result.Data.(*model.SeriesData)
		if !ok {
			return renderJSON(w, result)
		}
		t, err := frame.New().Build(sd.Series)
		if err != nil {
			return err
		}
		writeMarkdownTable(w, t.Columns, t.Rows)
		return nil
	case model.KindTable:
		t, ok := result.Data.(*model.Table)
		if !ok {
			return renderJSON(w, result)
		}
		writeMarkdownTable(w, t.Columns, t.Rows)
		return nil
	default:
		return renderJSON(w, result)
	}
}

func writeMarkdownTable(w io.Writer, headers []string, rows [][]string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range seps {
		seps[i] = "----"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = mdEscape(c)
		}
		fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
}

// ─── Warnings / Stats Footer ─────────────────────────────────────────────────

// PrintFooter writes warnings and stats to w when verbose mode is on.
func PrintFooter(w io.Writer, result *model.Result, verbose bool) {
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "⚠  %s\n", warn)
	}
	if verbose {
		src := "live"
		if result.Stats.StoreHit {
			src = "store"
		}
		fmt.Fprintf(w, "\n[%s • %d items • %dms • %s]\n",
			result.GeneratedAt.Format(time.RFC3339),
			result.Stats.Items,
			result.Stats.DurationMs,
			src,
		)
	}
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
