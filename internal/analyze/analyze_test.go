package analyze_test

import (
	"math"
	"testing"

	"github.com/gaugeworks/riverdata/internal/analyze"
	"github.com/gaugeworks/riverdata/internal/model"
)

func rec(value, dateTime string) model.Record {
	return model.Record{"value": value, "dateTime": dateTime}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSummarizeBasicStats(t *testing.T) {
	ts := model.TimeSeries{
		rec("1", "2020-01-01T00:00Z"),
		rec("2", "2020-01-01T00:15Z"),
		rec("3", "2020-01-01T00:30Z"),
		rec("4", "2020-01-01T00:45Z"),
		rec("5", "2020-01-01T01:00Z"),
	}
	s := analyze.Summarize("09380000", ts, math.NaN())

	if s.SiteCode != "09380000" {
		t.Errorf("SiteCode: got %q", s.SiteCode)
	}
	if s.Count != 5 || s.Missing != 0 {
		t.Errorf("Count/Missing: got %d/%d", s.Count, s.Missing)
	}
	if !almostEqual(s.Mean, 3) {
		t.Errorf("Mean: got %v", s.Mean)
	}
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("Min/Max: got %v/%v", s.Min, s.Max)
	}
	if !almostEqual(s.Median, 3) || !almostEqual(s.P25, 2) || !almostEqual(s.P75, 4) {
		t.Errorf("percentiles: median=%v p25=%v p75=%v", s.Median, s.P25, s.P75)
	}
	// Sample standard deviation of 1..5 is sqrt(2.5).
	if !almostEqual(s.Std, math.Sqrt(2.5)) {
		t.Errorf("Std: got %v", s.Std)
	}
	if s.First != 1 || s.Last != 5 {
		t.Errorf("First/Last: got %v/%v", s.First, s.Last)
	}
	if !almostEqual(s.Change, 4) || !almostEqual(s.ChangePct, 400) {
		t.Errorf("Change/ChangePct: got %v/%v", s.Change, s.ChangePct)
	}
	if s.FirstTime != "2020-01-01T00:00Z" || s.LastTime != "2020-01-01T01:00Z" {
		t.Errorf("First/LastTime: got %q/%q", s.FirstTime, s.LastTime)
	}
}

func TestSummarizeMissingValues(t *testing.T) {
	ts := model.TimeSeries{
		rec("10", "2020-01-01T00:00Z"),
		rec("", "2020-01-01T00:15Z"),
		rec("-999999", "2020-01-01T00:30Z"),
		rec("20", "2020-01-01T00:45Z"),
	}
	s := analyze.Summarize("09380000", ts, -999999)

	if s.Count != 4 || s.Missing != 2 {
		t.Errorf("Count/Missing: got %d/%d", s.Count, s.Missing)
	}
	if !almostEqual(s.MissingPct, 50) {
		t.Errorf("MissingPct: got %v", s.MissingPct)
	}
	if !almostEqual(s.Mean, 15) {
		t.Errorf("Mean should skip missing: got %v", s.Mean)
	}
	if s.First != 10 || s.Last != 20 {
		t.Errorf("First/Last should skip missing: got %v/%v", s.First, s.Last)
	}
}

func TestSummarizeEmptySeries(t *testing.T) {
	s := analyze.Summarize("09380000", nil, math.NaN())
	if s.Count != 0 || s.Missing != 0 {
		t.Errorf("Count/Missing: got %d/%d", s.Count, s.Missing)
	}
	if s.Mean != 0 || s.FirstTime != "" {
		t.Errorf("empty series should be all-zero: %+v", s)
	}
}

func TestSummarizeAllMissing(t *testing.T) {
	ts := model.TimeSeries{
		rec("", "2020-01-01T00:00Z"),
		rec("Ice", "2020-01-01T00:15Z"),
	}
	s := analyze.Summarize("09380000", ts, math.NaN())

	if s.Missing != 2 {
		t.Errorf("Missing: got %d", s.Missing)
	}
	if !math.IsNaN(s.Mean) || !math.IsNaN(s.Min) || !math.IsNaN(s.Median) {
		t.Errorf("all-missing series should yield NaN stats: %+v", s)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	ts := model.TimeSeries{rec("7.5", "2020-01-01T00:00Z")}
	s := analyze.Summarize("09380000", ts, math.NaN())

	if s.Mean != 7.5 || s.Median != 7.5 || s.Min != 7.5 || s.Max != 7.5 {
		t.Errorf("single value stats: %+v", s)
	}
	if s.Std != 0 {
		t.Errorf("Std of one sample: got %v", s.Std)
	}
	if s.Change != 0 {
		t.Errorf("Change: got %v", s.Change)
	}
}

func TestSummarizeZeroFirstValue(t *testing.T) {
	ts := model.TimeSeries{
		rec("0", "2020-01-01T00:00Z"),
		rec("5", "2020-01-01T00:15Z"),
	}
	s := analyze.Summarize("09380000", ts, math.NaN())
	if !math.IsNaN(s.ChangePct) {
		t.Errorf("ChangePct with zero baseline should be NaN, got %v", s.ChangePct)
	}
	if s.Change != 5 {
		t.Errorf("Change: got %v", s.Change)
	}
}
