package provider

import (
	"errors"
	"fmt"
)

// Kind classifies a retrieval failure.
type Kind string

const (
	KindNone              Kind = ""
	KindNetwork           Kind = "network"
	KindMalformedResponse Kind = "malformed_response"
	KindNoMatchingData    Kind = "no_matching_data"
	KindConfiguration     Kind = "configuration"
	KindInvalidIdentifier Kind = "invalid_identifier"
	KindUnknown           Kind = "unknown"
)

// NetworkError is returned on a non-2xx status, a timeout, or a transport
// failure. It is the only retryable kind.
type NetworkError struct {
	URL        string
	StatusCode int  // 0 when no response was received
	Timeout    bool // the per-attempt deadline fired
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("request to %s timed out", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s returned status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("request to %s failed", e.URL)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when the body is not valid JSON or lacks
// the expected shape.
type MalformedResponseError struct {
	Detail string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Detail, e.Err)
	}
	return "malformed response: " + e.Detail
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// NoMatchingDataError is returned when no observation survives the
// year/numeric filter.
type NoMatchingDataError struct {
	CIK        string
	CutoffYear int
}

func (e *NoMatchingDataError) Error() string {
	return fmt.Sprintf("no numeric observations after %d for CIK %s", e.CutoffYear, e.CIK)
}

// ConfigurationError is returned when a required setting is missing. It is
// raised before any network call.
type ConfigurationError struct {
	Setting string
	Detail  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Setting, e.Detail)
}

// InvalidIdentifierError is returned when the identifier cannot be normalized
// to a CIK.
type InvalidIdentifierError struct {
	Input string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid CIK %q: expected up to 10 digits", e.Input)
}

// KindOf classifies err by the first typed error in its chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		netErr    *NetworkError
		malformed *MalformedResponseError
		noData    *NoMatchingDataError
		cfgErr    *ConfigurationError
		idErr     *InvalidIdentifierError
	)
	switch {
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &malformed):
		return KindMalformedResponse
	case errors.As(err, &noData):
		return KindNoMatchingData
	case errors.As(err, &cfgErr):
		return KindConfiguration
	case errors.As(err, &idErr):
		return KindInvalidIdentifier
	default:
		return KindUnknown
	}
}

// IsRetryable reports whether err may succeed on another attempt.
func IsRetryable(err error) bool {
	return KindOf(err) == KindNetwork
}

// UserMessage converts err into the single human-readable message shown in
// the error slot.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindNetwork:
		var netErr *NetworkError
		errors.As(err, &netErr)
		if netErr.Timeout {
			return "Error: the SEC data service did not respond in time. Please try again later."
		}
		if netErr.StatusCode == 404 {
			return "Error: no shares outstanding data was found for this CIK."
		}
		return "Error: could not reach the SEC data service. Please try again later."
	case KindMalformedResponse:
		return "Error: the SEC data service returned data in an unexpected format."
	case KindNoMatchingData:
		var noData *NoMatchingDataError
		errors.As(err, &noData)
		return fmt.Sprintf("Error: no shares outstanding data reported after %d.", noData.CutoffYear)
	case KindConfiguration:
		return "Error: the data relay is not configured."
	case KindInvalidIdentifier:
		var idErr *InvalidIdentifierError
		errors.As(err, &idErr)
		return fmt.Sprintf("Error: %q is not a valid CIK.", idErr.Input)
	default:
		return "Error: " + err.Error()
	}
}
