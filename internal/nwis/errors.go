package nwis

import (
	"errors"
	"fmt"
)

// ErrMergeUnsupported is returned by GageRequest.MergeWith. Merging multiple
// retrievals into one series is a named extension point, not a feature.
var ErrMergeUnsupported = errors.New("nwis: merging multiple retrievals is not supported")

// MissingParameterError reports the first required field that is neither set
// on the request nor present as a key in ExtraParams. Recoverable: supply the
// field and retry.
type MissingParameterError struct {
	Param string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("nwis: required parameter %q must be set or provided in extra params", e.Param)
}

// UnavailableDependencyError reports that an optional collaborator was
// requested but not configured on the client.
type UnavailableDependencyError struct {
	Dependency string
}

func (e *UnavailableDependencyError) Error() string {
	return fmt.Sprintf("nwis: %s is not available; configure it or request the plain time series", e.Dependency)
}

// NetworkError wraps a transport-level failure (connection refused, timeout,
// DNS). The caller may retry.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("nwis: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-2xx response, carrying the status code and
// raw body so the caller can decide whether to retry.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("nwis: HTTP %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError reports a body that failed to parse as JSON or that
// parsed but lacks the expected value.timeSeries[0].values[0].value shape.
// Not retryable without a different query.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nwis: malformed response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("nwis: malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
