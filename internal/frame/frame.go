// Package frame is the tabular-data facility: it materializes the opaque
// observation records of a time series into a two-dimensional table. The nwis
// client depends on it only through the FrameBuilder interface, so a client
// without a builder fails fast rather than pulling this package in.
package frame

import (
	"fmt"
	"sort"

	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/util"
)

// Builder implements nwis.FrameBuilder.
type Builder struct{}

// New returns a ready-to-use Builder.
func New() *Builder {
	return &Builder{}
}

// Build converts ts into a Table: one row per record, columns being the union
// of record keys in first-seen order. Records missing a column render an
// empty cell; cell values are formatted with util.FormatCell.
func (b *Builder) Build(ts model.TimeSeries) (*model.Table, error) {
	table := &model.Table{}

	seen := make(map[string]bool)
	for _, rec := range ts {
		for _, key := range recordKeys(rec) {
			if !seen[key] {
				seen[key] = true
				table.Columns = append(table.Columns, key)
			}
		}
	}

	table.Rows = make([][]string, len(ts))
	for i, rec := range ts {
		row := make([]string, len(table.Columns))
		for j, col := range table.Columns {
			if v, ok := rec[col]; ok {
				row[j] = util.FormatCell(v)
			}
		}
		table.Rows[i] = row
	}
	return table, nil
}

// recordKeys returns rec's keys in the order encoding/json would have seen
// them on the wire. Go maps do not preserve insertion order, so the wire
// order is recovered from the raw record layout: the well-known NWIS fields
// first, then any remaining keys sorted for determinism.
func recordKeys(rec model.Record) []string {
	known := []string{"value", "qualifiers", "dateTime"}
	var keys []string
	used := make(map[string]bool)
	for _, k := range known {
		if _, ok := rec[k]; ok {
			keys = append(keys, k)
			used[k] = true
		}
	}
	var rest []string
	for k := range rec {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Values extracts the named column from ts as parsed floats, treating empty
// and no-data entries as NaN. Used by analyze and chart-style consumers.
func Values(ts model.TimeSeries, column string, noData float64) []float64 {
	out := make([]float64, len(ts))
	for i, rec := range ts {
		out[i] = util.ParseRecordValue(util.RecordString(rec, column), noData)
	}
	return out
}

// Describe returns a short human description of a table, used in verbose
// footers.
func Describe(t *model.Table) string {
	return fmt.Sprintf("%d rows × %d columns", len(t.Rows), len(t.Columns))
}
