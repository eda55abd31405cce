// Package analyze computes statistical summaries over extracted time series.
// All functions are pure; no I/O.
package analyze

import (
	"math"
	"sort"

	"github.com/gaugeworks/riverdata/internal/frame"
	"github.com/gaugeworks/riverdata/internal/model"
	"github.com/gaugeworks/riverdata/internal/util"
)

// ─── Summary ──────────────────────────────────────────────────────────────────

// Summary holds descriptive statistics for one gage's series.
type Summary struct {
	SiteCode   string  `json:"site_code"`
	Count      int     `json:"count"`       // total records
	Missing    int     `json:"missing"`     // unparseable or no-data values
	MissingPct float64 `json:"missing_pct"` // percent missing
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Min        float64 `json:"min"`
	P25        float64 `json:"p25"`
	Median     float64 `json:"median"`
	P75        float64 `json:"p75"`
	Max        float64 `json:"max"`
	First      float64 `json:"first"`      // first non-missing value
	Last       float64 `json:"last"`       // last non-missing value
	FirstTime  string  `json:"first_time"` // dateTime of the first record
	LastTime   string  `json:"last_time"`  // dateTime of the last record
	Change     float64 `json:"change"`     // Last - First
	ChangePct  float64 `json:"change_pct"` // (Last-First)/First * 100
}

// Summarize computes descriptive statistics over the "value" column of ts.
// noData is the service's sentinel for missing readings (NaN to disable).
// Missing values are excluded from all numeric computations but counted.
func Summarize(siteCode string, ts model.TimeSeries, noData float64) Summary {
	s := Summary{SiteCode: siteCode, Count: len(ts)}
	if len(ts) == 0 {
		return s
	}

	s.FirstTime = util.RecordString(ts[0], "dateTime")
	s.LastTime = util.RecordString(ts[len(ts)-1], "dateTime")

	all := frame.Values(ts, "value", noData)
	var vals []float64
	for _, v := range all {
		if math.IsNaN(v) {
			s.Missing++
		} else {
			vals = append(vals, v)
		}
	}
	s.MissingPct = float64(s.Missing) / float64(s.Count) * 100

	if len(vals) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Max = nan, nan, nan, nan
		s.Median, s.P25, s.P75 = nan, nan, nan
		s.First, s.Last, s.Change, s.ChangePct = nan, nan, nan, nan
		return s
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Mean = sumF(vals) / float64(len(vals))
	s.Std = stddevF(vals, s.Mean)
	s.Median = percentile(sorted, 50)
	s.P25 = percentile(sorted, 25)
	s.P75 = percentile(sorted, 75)

	s.First = vals[0]
	s.Last = vals[len(vals)-1]
	s.Change = s.Last - s.First
	if s.First != 0 {
		s.ChangePct = s.Change / s.First * 100
	} else {
		s.ChangePct = math.NaN()
	}
	return s
}

// ─── Numeric Helpers ──────────────────────────────────────────────────────────

func sumF(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func stddevF(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// percentile computes the p-th percentile of sorted values using linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
