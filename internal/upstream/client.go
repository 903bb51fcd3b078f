// Package upstream probes downstream AI provider endpoints. The providers
// themselves are opaque backends; this client only answers "is it
// reachable", with a hard timeout so no caller ever hangs on a provider.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/storyweave/storyweave-api/internal/provider"
)

// ErrUpstreamUnavailable marks a transient provider failure: connection
// error, timeout, or 5xx. Safe for the caller to retry.
var ErrUpstreamUnavailable = errors.New("upstream provider unavailable")

const defaultProbeTimeout = 5 * time.Second

// Client checks provider reachability.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a probe client with the default timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultProbeTimeout},
	}
}

// CheckReachable sends a minimal request to the credential's base URL.
// Providers without a configured base URL are skipped (nil). A network
// failure, timeout, or 5xx response maps to ErrUpstreamUnavailable;
// any other HTTP status counts as reachable (4xx from an unauthenticated
// probe still proves the endpoint is up).
func (c *Client) CheckReachable(ctx context.Context, cred provider.Credential) error {
	if cred.BaseURL() == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cred.BaseURL(), nil)
	if err != nil {
		return fmt.Errorf("building probe request for %s: %w", cred.ID(), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpstreamUnavailable, cred.ID(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %d", ErrUpstreamUnavailable, cred.ID(), resp.StatusCode)
	}
	return nil
}
