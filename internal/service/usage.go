package service

import (
	"context"
	"log"
)

const usageServiceCap = 20

// WorkspaceOwner is a hosting workspace.
type WorkspaceOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HostedService is one deployed service in a workspace.
type HostedService struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	URL  string `json:"url,omitempty"`
}

// BandwidthUsage carries per-service bandwidth metrics, or the error
// that prevented fetching them.
type BandwidthUsage struct {
	ServiceID   string         `json:"serviceId"`
	ServiceName string         `json:"serviceName"`
	Type        string         `json:"type,omitempty"`
	Metrics     map[string]any `json:"metrics,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// HostingUsage is the dashboard payload for hosting metrics. The API
// key never appears in it.
type HostingUsage struct {
	OK        bool             `json:"ok"`
	Error     string           `json:"error,omitempty"`
	Owners    []WorkspaceOwner `json:"owners"`
	Services  []HostedService  `json:"services"`
	Bandwidth []BandwidthUsage `json:"bandwidth"`
}

// RenderGateway fetches workspaces, services, and metrics from the
// hosting provider. The concrete client lives in internal/render; nil
// means RENDER_API_KEY is not set.
type RenderGateway interface {
	Owners(ctx context.Context) ([]WorkspaceOwner, error)
	Services(ctx context.Context, ownerID string) ([]HostedService, error)
	Bandwidth(ctx context.Context, serviceID string) (map[string]any, error)
}

// UsageService proxies hosting-usage metrics for the dashboard.
type UsageService struct {
	gateway RenderGateway
}

func NewUsageService(gateway RenderGateway) *UsageService {
	return &UsageService{gateway: gateway}
}

// Usage assembles the hosting-usage payload: owners, services for the
// first owner, and bandwidth for up to 20 services. Failures degrade
// into the payload rather than erroring the request.
func (s *UsageService) Usage(ctx context.Context) *HostingUsage {
	usage := &HostingUsage{
		Owners:    []WorkspaceOwner{},
		Services:  []HostedService{},
		Bandwidth: []BandwidthUsage{},
	}

	if s.gateway == nil {
		usage.Error = "RENDER_API_KEY not set"
		return usage
	}

	owners, err := s.gateway.Owners(ctx)
	if err != nil {
		usage.Error = "Render API error: " + err.Error()
		return usage
	}
	usage.Owners = owners

	var ownerID string
	if len(owners) > 0 {
		ownerID = owners[0].ID
	}

	services, err := s.gateway.Services(ctx, ownerID)
	if err != nil {
		usage.Error = "Render API error: " + err.Error()
		return usage
	}
	usage.Services = services

	capped := services
	if len(capped) > usageServiceCap {
		capped = capped[:usageServiceCap]
	}
	for _, svc := range capped {
		if svc.ID == "" {
			continue
		}
		entry := BandwidthUsage{ServiceID: svc.ID, ServiceName: svc.Name, Type: svc.Type}
		metrics, err := s.gateway.Bandwidth(ctx, svc.ID)
		if err != nil {
			log.Printf("failed to fetch bandwidth for %s: %v", svc.ID, err)
			entry.Error = "Could not fetch bandwidth"
		} else {
			entry.Metrics = metrics
		}
		usage.Bandwidth = append(usage.Bandwidth, entry)
	}

	usage.OK = true
	return usage
}
