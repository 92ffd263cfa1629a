package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when upstream has no address for the coordinates.
var ErrNotFound = errors.New("geocode: not found")

// Client defines the contract for converting coordinates into an
// address-like string. Lookup failures are an optional-enrichment concern:
// callers treat any error as "no value".
type Client interface {
	ReverseLookup(ctx context.Context, lat, lng float64) (string, error)
}

// HTTPClient implements Client over HTTP against a what3words-style
// reverse-geocode service.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPClient constructs a new HTTP-backed reverse-geocode client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *log.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = log.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse geocode url: %w", err)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// ReverseLookup resolves coordinates to a three-word address string.
func (c *HTTPClient) ReverseLookup(ctx context.Context, lat, lng float64) (string, error) {
	rel := &url.URL{Path: "/reverse"}
	q := rel.Query()
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lng", fmt.Sprintf("%.6f", lng))
	rel.RawQuery = q.Encode()
	endpoint := c.baseURL.ResolveReference(rel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return "", fmt.Errorf("decode geocode response: %w", err)
		}
		if payload.Words == "" {
			return "", ErrNotFound
		}
		return formatAddress(payload), nil
	case http.StatusNotFound:
		return "", ErrNotFound
	default:
		c.logger.Printf("geocode: unexpected status %d for (%f, %f)", resp.StatusCode, lat, lng)
		return "", fmt.Errorf("geocode: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	Words        string `json:"words"`
	NearestPlace string `json:"nearestPlace"`
}

func formatAddress(payload apiResponse) string {
	addr := "///" + payload.Words
	if payload.NearestPlace != "" {
		addr += " (" + payload.NearestPlace + ")"
	}
	return addr
}

// Disabled returns a Client that never resolves anything, used when no
// geocode service is configured.
func Disabled() Client {
	return disabledClient{}
}

type disabledClient struct{}

func (disabledClient) ReverseLookup(context.Context, float64, float64) (string, error) {
	return "", ErrNotFound
}
