// Package model defines the canonical data types used throughout riverdata.
// These types are the single source of truth for the NWIS entities riverdata
// consumes and the result envelope that every command returns.
package model

import (
	"time"
)

// ─── Time Series Types ────────────────────────────────────────────────────────

// Record is a single observation as delivered by the NWIS service.
// Field names and value types are opaque to riverdata and pass through
// unchanged; a typical record looks like
//
//	{"value": "1.2", "qualifiers": ["A"], "dateTime": "2020-01-01T00:00:00.000-06:00"}
type Record = map[string]any

// TimeSeries is the ordered sequence of observation records returned by the
// service for one site. Order is exactly the order on the wire.
type TimeSeries = []Record

// Table is a two-dimensional materialization of a TimeSeries: one row per
// record, columns in first-seen key order.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column returns the values of the named column, or nil if the column is
// not present.
func (t *Table) Column(name string) []string {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}

// ─── NWIS Entity Types ────────────────────────────────────────────────────────

// GageMeta holds site and variable metadata extracted from the sourceInfo
// and variable blocks of an IV response.
type GageMeta struct {
	SiteCode     string    `json:"site_code"`
	SiteName     string    `json:"site_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	VariableCode string    `json:"variable_code"`
	VariableName string    `json:"variable_name"`
	Unit         string    `json:"unit"`
	NoDataValue  float64   `json:"no_data_value"`
	FetchedAt    time.Time `json:"fetched_at,omitempty"`
}

// SeriesData bundles one site's extracted time series with its metadata.
type SeriesData struct {
	SiteCode string     `json:"site_code"`
	Meta     *GageMeta  `json:"meta,omitempty"`
	Series   TimeSeries `json:"series"`
}

// ─── Result Envelope ─────────────────────────────────────────────────────────

// ResultStats carries performance and store metadata for a command result.
type ResultStats struct {
	StoreHit   bool  `json:"store_hit"`
	DurationMs int64 `json:"duration_ms"`
	Items      int   `json:"items"`
}

// Result is the uniform envelope returned by every command.
// The Data field holds the typed payload; Kind identifies what is in it.
// Renderers switch on Kind to format output appropriately.
type Result struct {
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Command     string      `json:"command"`
	Data        interface{} `json:"data"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       ResultStats `json:"stats"`
}

// Kind constants for Result.Kind.
const (
	KindSeriesData = "series_data"
	KindGageMeta   = "gage_meta"
	KindTable      = "table"
	KindSummary    = "summary"
)
