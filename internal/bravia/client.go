package bravia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
)

// Service endpoint paths under /sony on the television.
const (
	// ServiceSystem hosts power control methods.
	ServiceSystem = "system"

	// ServiceAVContent hosts content listing and tuning methods.
	ServiceAVContent = "avContent"
)

// pskHeader carries the pre-shared key on every call.
const pskHeader = "X-Auth-PSK"

// contentListPageSize is the maximum number of entries requested from
// getContentList in one call. Broadcast favourites lists are small, so a
// single page is always enough.
const contentListPageSize = 200

// Client performs authenticated JSON-over-HTTP calls to one television.
//
// The client is stateless apart from a request ID counter; it performs no
// retries and holds no connection guarantees. Retry policy belongs to
// callers, which know whether a failure matters (a user-initiated power
// toggle) or not (a background poll).
type Client struct {
	baseURL string
	psk     string
	http    *http.Client
	nextID  atomic.Int64
}

// NewClient creates a client for the television at host:port.
//
// The psk is the pre-shared key configured in the television's network
// settings; it is attached to every request.
func NewClient(host string, port int, psk string) *Client {
	return &Client{
		baseURL: fmt.Sprintf("http://%s:%d/sony", host, port),
		psk:     psk,
		http:    &http.Client{},
	}
}

// Call issues one JSON-RPC style call to a service endpoint and returns
// the raw result array.
//
// Failure modes:
//   - ErrTransport: the HTTP round trip failed (connection refused, reset)
//   - ErrProtocol: HTTP status >= 400, non-JSON body, or a JSON-RPC error
//
// The body is fully built before sending so Content-Length is always set.
func (c *Client) Call(ctx context.Context, service, method, version string, params []any) ([]json.RawMessage, error) {
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(request{
		ID:      int(c.nextID.Add(1)),
		Method:  method,
		Version: version,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}

	url := c.baseURL + "/" + service
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(pskHeader, c.psk)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only response body

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned HTTP %d", ErrProtocol, method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrTransport, method, err)
	}

	var envelope response
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s returned non-JSON body: %v", ErrProtocol, method, err)
	}

	if len(envelope.Error) > 0 {
		return nil, fmt.Errorf("%w: %s returned error %s", ErrProtocol, method, condense(envelope.Error))
	}

	return envelope.Result, nil
}

// condense renders a JSON-RPC error array for log/error messages.
func condense(raw []json.RawMessage) string {
	parts := make([]byte, 0, 64)
	for i, r := range raw {
		if i > 0 {
			parts = append(parts, ' ')
		}
		parts = append(parts, r...)
	}
	return string(parts)
}

// GetPowerStatus reports whether the panel is currently on.
//
// The television distinguishes "active" from "standby"; anything other
// than active counts as off.
func (c *Client) GetPowerStatus(ctx context.Context) (bool, error) {
	result, err := c.Call(ctx, ServiceSystem, "getPowerStatus", "1.0", nil)
	if err != nil {
		return false, err
	}
	if len(result) == 0 {
		return false, fmt.Errorf("%w: getPowerStatus returned empty result", ErrProtocol)
	}

	var status powerStatus
	if err := json.Unmarshal(result[0], &status); err != nil {
		return false, fmt.Errorf("%w: decoding power status: %v", ErrProtocol, err)
	}
	return status.Status == powerStatusActive, nil
}

// SetPowerStatus turns the panel on or off.
func (c *Client) SetPowerStatus(ctx context.Context, on bool) error {
	_, err := c.Call(ctx, ServiceSystem, "setPowerStatus", "1.0",
		[]any{map[string]any{"status": on}})
	return err
}

// GetContentList returns the tunable content entries for one source
// (e.g. "tv:dvbt"). An empty list is a valid response.
func (c *Client) GetContentList(ctx context.Context, source string) ([]ContentItem, error) {
	result, err := c.Call(ctx, ServiceAVContent, "getContentList", "1.0",
		[]any{map[string]any{
			"source": source,
			"stIdx":  0,
			"cnt":    contentListPageSize,
		}})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}

	var items []ContentItem
	if err := json.Unmarshal(result[0], &items); err != nil {
		return nil, fmt.Errorf("%w: decoding content list: %v", ErrProtocol, err)
	}
	return items, nil
}

// SetPlayContent tunes the television to the given content URI.
func (c *Client) SetPlayContent(ctx context.Context, uri string) error {
	_, err := c.Call(ctx, ServiceAVContent, "setPlayContent", "1.0",
		[]any{map[string]any{"uri": uri}})
	return err
}
