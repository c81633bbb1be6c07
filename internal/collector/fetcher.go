package collector

import (
	"context"
	"fmt"

	"MeasureInGoods/internal/model"
)

// CapabilitiesPath is the catalog resource on the API.
const CapabilitiesPath = "/metadata/capabilities"

// Fetcher defines the interface for fetching series data.
type Fetcher interface {
	FetchSeries(ctx context.Context, path, name string) (*model.Series, error)
	FetchCapabilities(ctx context.Context) (*model.Capabilities, error)
	Name() string
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status %d", e.Code)
}
