package nwis

import (
	"encoding/json"
	"time"

	"github.com/gaugeworks/riverdata/internal/model"
)

// ivEnvelope mirrors the slice of the WaterML-JSON response riverdata
// consumes. Pointer fields distinguish an absent segment from an empty one so
// extraction can name exactly what is missing.
type ivEnvelope struct {
	Value *struct {
		TimeSeries []ivSeries `json:"timeSeries"`
	} `json:"value"`
}

type ivSeries struct {
	SourceInfo struct {
		SiteName string `json:"siteName"`
		SiteCode []struct {
			Value string `json:"value"`
		} `json:"siteCode"`
		GeoLocation struct {
			GeogLocation struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"geogLocation"`
		} `json:"geoLocation"`
	} `json:"sourceInfo"`
	Variable struct {
		VariableCode []struct {
			Value string `json:"value"`
		} `json:"variableCode"`
		VariableName string `json:"variableName"`
		Unit         struct {
			UnitCode string `json:"unitCode"`
		} `json:"unit"`
		NoDataValue float64 `json:"noDataValue"`
	} `json:"variable"`
	Values []struct {
		Value *[]model.Record `json:"value"`
	} `json:"values"`
}

// extractTimeSeries parses body and walks value.timeSeries[0].values[0].value,
// returning the observation records in wire order plus the site and variable
// metadata carried alongside them. Any parse failure or missing segment
// yields *MalformedResponseError.
func extractTimeSeries(body []byte) (model.TimeSeries, *model.GageMeta, error) {
	var env ivEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, &MalformedResponseError{Reason: "body is not the expected JSON shape", Err: err}
	}
	if env.Value == nil {
		return nil, nil, &MalformedResponseError{Reason: "missing value object"}
	}
	if len(env.Value.TimeSeries) == 0 {
		return nil, nil, &MalformedResponseError{Reason: "missing value.timeSeries[0]"}
	}
	ts := env.Value.TimeSeries[0]
	if len(ts.Values) == 0 {
		return nil, nil, &MalformedResponseError{Reason: "missing value.timeSeries[0].values[0]"}
	}
	if ts.Values[0].Value == nil {
		return nil, nil, &MalformedResponseError{Reason: "missing value.timeSeries[0].values[0].value"}
	}
	return *ts.Values[0].Value, metaFromSeries(ts), nil
}

// metaFromSeries flattens the sourceInfo and variable blocks into a GageMeta.
func metaFromSeries(ts ivSeries) *model.GageMeta {
	meta := &model.GageMeta{
		SiteName:     ts.SourceInfo.SiteName,
		Latitude:     ts.SourceInfo.GeoLocation.GeogLocation.Latitude,
		Longitude:    ts.SourceInfo.GeoLocation.GeogLocation.Longitude,
		VariableName: ts.Variable.VariableName,
		Unit:         ts.Variable.Unit.UnitCode,
		NoDataValue:  ts.Variable.NoDataValue,
		FetchedAt:    time.Now().UTC(),
	}
	if len(ts.SourceInfo.SiteCode) > 0 {
		meta.SiteCode = ts.SourceInfo.SiteCode[0].Value
	}
	if len(ts.Variable.VariableCode) > 0 {
		meta.VariableCode = ts.Variable.VariableCode[0].Value
	}
	return meta
}
