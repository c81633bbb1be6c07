package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"MeasureInGoods/internal/model"
	"MeasureInGoods/internal/normalizer"
)

const maxErrorBody = 4 << 10

// APIFetcher implements Fetcher against the pricing REST API.
type APIFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewAPIFetcher creates a new fetcher with optional proxy support.
func NewAPIFetcher(baseURL, proxyURL string, timeout time.Duration) *APIFetcher {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *APIFetcher) Name() string { return "api" }

func (f *APIFetcher) FetchSeries(ctx context.Context, path, name string) (*model.Series, error) {
	body, err := f.get(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := normalizer.ParseSeries(body, name)
	if err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}
	return s, nil
}

func (f *APIFetcher) FetchCapabilities(ctx context.Context) (*model.Capabilities, error) {
	body, err := f.get(ctx, CapabilitiesPath)
	if err != nil {
		return nil, err
	}
	var caps model.Capabilities
	if err := json.Unmarshal(body, &caps); err != nil {
		return nil, fmt.Errorf("decode capabilities: %w", err)
	}
	return &caps, nil
}

func (f *APIFetcher) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
