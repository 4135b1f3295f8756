// Package provider defines the transport abstraction and the error taxonomy
// shared by the shares-outstanding retrieval path. Concrete transports live
// with the data provider that uses them (see internal/providers/sec).
package provider

import (
	"context"
	"net/http"
)

// ProviderInfo holds metadata about the data provider.
type ProviderInfo struct {
	Name        string `json:"name"`        // e.g., "sec"
	Description string `json:"description"` // human-readable description
	Website     string `json:"website"`
	Metric      string `json:"metric"`    // e.g., "dei/EntityCommonStockSharesOutstanding"
	Transport   string `json:"transport"` // active transport name
}

// Transport reaches the remote API for one normalized CIK and returns the
// raw response body.
//
// Implementations must report every failure to obtain a body (non-2xx
// status, timeout, transport error) as *NetworkError, and must not
// interpret the body.
type Transport interface {
	// Name identifies the transport variant, e.g. "direct" or "relay".
	Name() string

	// Get fetches the body for the zero-padded CIK.
	Get(ctx context.Context, cik string) ([]byte, error)
}

// HTTPStatus maps an error to the HTTP status the API reports for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNone:
		return http.StatusOK
	case KindInvalidIdentifier:
		return http.StatusBadRequest
	case KindNoMatchingData:
		return http.StatusNotFound
	case KindNetwork, KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
