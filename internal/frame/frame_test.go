package frame_test

import (
	"math"
	"testing"

	"github.com/gaugeworks/riverdata/internal/frame"
	"github.com/gaugeworks/riverdata/internal/model"
)

func sampleSeries() model.TimeSeries {
	return model.TimeSeries{
		{"value": "1.2", "qualifiers": []any{"A"}, "dateTime": "2020-01-01T00:00Z"},
		{"value": "1.3", "qualifiers": []any{"A", "e"}, "dateTime": "2020-01-01T00:15Z"},
	}
}

func TestBuildColumnsInWireOrder(t *testing.T) {
	table, err := frame.New().Build(sampleSeries())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"value", "qualifiers", "dateTime"}
	if len(table.Columns) != len(want) {
		t.Fatalf("columns: expected %v, got %v", want, table.Columns)
	}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Errorf("columns[%d]: expected %q, got %q", i, col, table.Columns[i])
		}
	}
}

func TestBuildRows(t *testing.T) {
	table, err := frame.New().Build(sampleSeries())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows: expected 2, got %d", len(table.Rows))
	}
	if got := table.Rows[0][0]; got != "1.2" {
		t.Errorf("rows[0][0]: expected 1.2, got %q", got)
	}
	if got := table.Rows[1][1]; got != "A,e" {
		t.Errorf("rows[1][1]: expected joined qualifiers, got %q", got)
	}
	if got := table.Rows[1][2]; got != "2020-01-01T00:15Z" {
		t.Errorf("rows[1][2]: expected timestamp, got %q", got)
	}
}

func TestBuildRaggedRecords(t *testing.T) {
	ts := model.TimeSeries{
		{"value": "1.2", "dateTime": "2020-01-01T00:00Z"},
		{"value": "1.3", "dateTime": "2020-01-01T00:15Z", "extra": "x"},
	}
	table, err := frame.New().Build(ts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(table.Columns) != 3 {
		t.Fatalf("columns: expected union of keys, got %v", table.Columns)
	}
	// The first record has no "extra"; its cell is empty, not dropped.
	if got := table.Rows[0][2]; got != "" {
		t.Errorf("rows[0][2]: expected empty cell, got %q", got)
	}
	if got := table.Rows[1][2]; got != "x" {
		t.Errorf("rows[1][2]: expected x, got %q", got)
	}
}

func TestBuildEmptySeries(t *testing.T) {
	table, err := frame.New().Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(table.Columns) != 0 || len(table.Rows) != 0 {
		t.Errorf("empty series should yield an empty table, got %v", table)
	}
}

func TestValues(t *testing.T) {
	ts := model.TimeSeries{
		{"value": "1.5"},
		{"value": ""},
		{"value": "-999999"},
		{"value": "2.25"},
	}
	got := frame.Values(ts, "value", -999999)
	if len(got) != 4 {
		t.Fatalf("expected 4 values, got %d", len(got))
	}
	if got[0] != 1.5 || got[3] != 2.25 {
		t.Errorf("parsed values wrong: %v", got)
	}
	if !math.IsNaN(got[1]) {
		t.Errorf("empty value should be NaN, got %v", got[1])
	}
	if !math.IsNaN(got[2]) {
		t.Errorf("no-data sentinel should be NaN, got %v", got[2])
	}
}

func TestDescribe(t *testing.T) {
	table, _ := frame.New().Build(sampleSeries())
	if got := frame.Describe(table); got != "2 rows × 3 columns" {
		t.Errorf("Describe: got %q", got)
	}
}
