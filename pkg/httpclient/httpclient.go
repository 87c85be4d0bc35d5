// Package httpclient provides a generic helper for JSON REST endpoints.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetResource fetches baseURL+endpoint and decodes the JSON body into T.
// The response status must be one of okStatuses.
func GetResource[T any](ctx context.Context, client *http.Client, baseURL, endpoint string, okStatuses []int) (T, error) {
	return GetResourceHeader[T](ctx, client, baseURL, endpoint, nil, okStatuses)
}

// GetResourceHeader is GetResource with extra request headers.
func GetResourceHeader[T any](ctx context.Context, client *http.Client, baseURL, endpoint string, header http.Header, okStatuses []int) (T, error) {
	var resource T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return resource, fmt.Errorf("couldn't create request for %s: %w", endpoint, err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return resource, fmt.Errorf("couldn't get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	ok := false
	for _, status := range okStatuses {
		if resp.StatusCode == status {
			ok = true
			break
		}
	}
	if !ok {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resource, fmt.Errorf("unexpected status %d for %s: %s", resp.StatusCode, endpoint, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return resource, fmt.Errorf("couldn't decode %s response: %w", endpoint, err)
	}

	return resource, nil
}
