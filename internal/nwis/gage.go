package nwis

import (
	"context"
	"net/url"

	"github.com/gaugeworks/riverdata/internal/model"
)

// DefaultPeriod is the time window used when a request does not specify one:
// the last seven days, in the ISO-8601 duration shorthand the service accepts.
const DefaultPeriod = "P7D"

// Canonical parameter names. Request fields and ExtraParams keys share the
// wire names, so a field is satisfied either way during validation.
const (
	ParamSites   = "sites"
	ParamStartDT = "startDT"
	ParamEndDT   = "endDT"
	ParamPeriod  = "period"
	ParamFormat  = "format"
)

// GageRequest is one configured query against the IV service for a single
// gage. A request is built, executed, and read by one caller; it is not safe
// for concurrent use. Results from the most recent successful fetch live on
// the request until the next call overwrites them.
type GageRequest struct {
	// SiteCode identifies the gage. Required before any network call.
	SiteCode string

	// TimePeriod is the period shorthand (e.g. "P7D"). When set it wins
	// over any date range — silently, with no error for ambiguous
	// configurations. Set it to "" to query an explicit range.
	TimePeriod string

	// StartDate and EndDate bound an explicit range, used only when the
	// period fallback does not fire. Formats are passed through unvalidated.
	StartDate string
	EndDate   string

	// ExtraParams holds caller-supplied query parameters, case sensitive,
	// merged verbatim into the query. Never nil; mutated in place by the
	// request-building step, which inserts format, sites, and possibly
	// period keys.
	ExtraParams map[string]string

	// RawResponse is the most recently fetched body. Overwritten on each
	// successful read, owned exclusively by this request.
	RawResponse []byte

	// TimeSeries is the sequence extracted from the most recent successful
	// fetch. Never merged across calls.
	TimeSeries model.TimeSeries

	// Meta is the site/variable metadata extracted alongside TimeSeries.
	Meta *model.GageMeta

	// Table is the on-demand tabular materialization of TimeSeries.
	Table *model.Table

	client *Client
}

// NewGageRequest creates a request for siteCode with the default time period.
// Every request owns an independent empty ExtraParams map.
func (c *Client) NewGageRequest(siteCode string) *GageRequest {
	return &GageRequest{
		SiteCode:    siteCode,
		TimePeriod:  DefaultPeriod,
		ExtraParams: make(map[string]string),
		client:      c,
	}
}

// fieldValue maps a canonical parameter name to the request field carrying it.
func (g *GageRequest) fieldValue(name string) string {
	switch name {
	case ParamSites:
		return g.SiteCode
	case ParamStartDT:
		return g.StartDate
	case ParamEndDT:
		return g.EndDate
	case ParamPeriod:
		return g.TimePeriod
	default:
		return ""
	}
}

// Validate checks that each named field is set on the request or present as
// a key in ExtraParams, returning *MissingParameterError for the first field
// that is neither. With no arguments it checks the site code. No side effects.
func (g *GageRequest) Validate(fields ...string) error {
	if len(fields) == 0 {
		fields = []string{ParamSites}
	}
	for _, f := range fields {
		if g.fieldValue(f) != "" {
			continue
		}
		if _, ok := g.ExtraParams[f]; ok {
			continue
		}
		return &MissingParameterError{Param: f}
	}
	return nil
}

// buildParams assembles the final query parameters, mutating ExtraParams in
// place: format and sites are always set, and period is set whenever the
// period shorthand is present — it takes priority over an explicit range,
// silently, with no error for the ambiguous configuration. Without a period
// the range must be complete, but the dates are not copied into the outgoing
// parameters; the caller is expected to have supplied startDT/endDT keys in
// ExtraParams directly.
func (g *GageRequest) buildParams() (url.Values, error) {
	if g.ExtraParams == nil {
		g.ExtraParams = make(map[string]string)
	}

	g.ExtraParams[ParamFormat] = "json"
	if g.SiteCode != "" {
		g.ExtraParams[ParamSites] = g.SiteCode
	}

	if g.TimePeriod != "" {
		g.ExtraParams[ParamPeriod] = g.TimePeriod
	} else if err := g.Validate(ParamStartDT, ParamEndDT); err != nil {
		return nil, err
	}

	params := url.Values{}
	for k, v := range g.ExtraParams {
		params.Set(k, v)
	}
	return params, nil
}

// FetchAndExtract runs the full validate, fetch, parse, extract pipeline.
// When wantTable is true the client's frame builder must be configured; that
// precondition is checked before any validation or network activity.
//
// On success RawResponse, TimeSeries, Meta, and (when requested) Table are
// overwritten. On failure each field keeps its previous value: nothing is
// overwritten until the step that produces it has succeeded.
func (g *GageRequest) FetchAndExtract(ctx context.Context, wantTable bool) error {
	if wantTable && g.client.frames == nil {
		return &UnavailableDependencyError{Dependency: "tabular frame builder"}
	}

	if err := g.Validate(); err != nil {
		return err
	}

	params, err := g.buildParams()
	if err != nil {
		return err
	}

	body, err := g.client.get(ctx, params)
	if err != nil {
		return err
	}
	g.RawResponse = body

	series, meta, err := extractTimeSeries(body)
	if err != nil {
		return err
	}
	g.TimeSeries = series
	g.Meta = meta

	if wantTable {
		table, err := g.client.frames.Build(series)
		if err != nil {
			return err
		}
		g.Table = table
	}
	return nil
}

// MergeWith is the extension point for combining a second retrieval of the
// same gage (a partial query continued later) into this request's series.
// It is intentionally unimplemented.
func (g *GageRequest) MergeWith(other *GageRequest) error {
	return ErrMergeUnsupported
}

// Data returns the extracted series bundled with its metadata.
func (g *GageRequest) Data() *model.SeriesData {
	return &model.SeriesData{
		SiteCode: g.SiteCode,
		Meta:     g.Meta,
		Series:   g.TimeSeries,
	}
}

// RetrieveFlow is the one-call shortcut for the common case: default time
// window, site code only. It fails before constructing any request when the
// site code is empty or when a table is requested without a frame builder,
// and otherwise returns the executed request with its results populated.
func RetrieveFlow(ctx context.Context, c *Client, siteCode string, wantTable bool) (*GageRequest, error) {
	if siteCode == "" {
		return nil, &MissingParameterError{Param: ParamSites}
	}
	if wantTable && c.frames == nil {
		return nil, &UnavailableDependencyError{Dependency: "tabular frame builder"}
	}
	g := c.NewGageRequest(siteCode)
	if err := g.FetchAndExtract(ctx, wantTable); err != nil {
		return nil, err
	}
	return g, nil
}
