package handlers

import (
	"context"
	"net/http"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/service"
)

type UsageService interface {
	Usage(ctx context.Context) *service.HostingUsage
}

type UsageHandler struct {
	svc UsageService
}

func NewUsageHandler(svc UsageService) *UsageHandler {
	return &UsageHandler{svc: svc}
}

// Usage returns hosting metrics for the dashboard. Provider failures
// degrade into the payload (ok=false plus an error string) rather than
// failing the request.
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.Usage(r.Context()))
}
