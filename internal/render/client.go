// Package render is a thin client for the Render hosting API: owners
// (workspaces), services, and per-service bandwidth metrics.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/velora-hq/onboardai/internal/service"
)

const (
	DefaultBaseURL = "https://api.render.com/v1"

	requestTimeout = 15 * time.Second
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Owners lists workspaces.
func (c *Client) Owners(ctx context.Context) ([]service.WorkspaceOwner, error) {
	items, err := c.getList(ctx, "/owners", nil)
	if err != nil {
		return nil, err
	}

	owners := make([]service.WorkspaceOwner, 0, len(items))
	for _, entry := range items {
		item := unwrap(entry, "owner")
		if item == nil {
			continue
		}
		owners = append(owners, service.WorkspaceOwner{
			ID:   asString(item["id"]),
			Name: asString(item["name"]),
		})
	}
	return owners, nil
}

// Services lists services, optionally filtered by owner.
func (c *Client) Services(ctx context.Context, ownerID string) ([]service.HostedService, error) {
	params := url.Values{}
	if ownerID != "" {
		params.Set("ownerId", ownerID)
	}

	items, err := c.getList(ctx, "/services", params)
	if err != nil {
		return nil, err
	}

	services := make([]service.HostedService, 0, len(items))
	for _, entry := range items {
		item := unwrap(entry, "service")
		if item == nil {
			continue
		}
		svc := service.HostedService{
			ID:   asString(item["id"]),
			Name: asString(item["name"]),
			Type: asString(item["type"]),
		}
		if details, ok := item["serviceDetails"].(map[string]any); ok {
			svc.URL = asString(details["url"])
		}
		services = append(services, svc)
	}
	return services, nil
}

// Bandwidth fetches bandwidth metrics for one service. The serviceId
// field is stripped since the caller already carries it.
func (c *Client) Bandwidth(ctx context.Context, serviceID string) (map[string]any, error) {
	params := url.Values{}
	params.Set("serviceId", serviceID)

	data, err := c.get(ctx, "/metrics/bandwidth", params)
	if err != nil {
		return nil, err
	}

	var metrics map[string]any
	if err := json.Unmarshal(data, &metrics); err == nil {
		delete(metrics, "serviceId")
		return metrics, nil
	}

	var series []any
	if err := json.Unmarshal(data, &series); err == nil {
		return map[string]any{"data": series}, nil
	}
	return nil, fmt.Errorf("unexpected bandwidth response shape")
}

// getList handles the two list shapes the API returns: a bare array,
// or an object with an items key.
func (c *Client) getList(ctx context.Context, path string, params url.Values) ([]any, error) {
	data, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var list []any
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped map[string]any
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if items, ok := wrapped["items"].([]any); ok {
			return items, nil
		}
	}
	return nil, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render API returned %d", resp.StatusCode)
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode render response: %w", err)
	}
	return data, nil
}

// unwrap handles Render's cursor-list shape where each entry nests the
// resource under its type name.
func unwrap(entry any, key string) map[string]any {
	item, ok := entry.(map[string]any)
	if !ok {
		return nil
	}
	if nested, ok := item[key].(map[string]any); ok {
		return nested
	}
	return item
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
