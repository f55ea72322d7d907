package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/domain"
)

type SyncService interface {
	Run(ctx context.Context) (*domain.SyncResult, error)
	Status(ctx context.Context) (*domain.SyncState, error)
}

type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

type SyncStatusResponse struct {
	LastSyncAt *string `json:"last_sync_at"`
	NextSyncAt string  `json:"next_sync_at"`
}

type SyncTriggerResponse struct {
	Status     string `json:"status"`
	Notion     int    `json:"notion"`
	GitHub     int    `json:"github"`
	Slack      int    `json:"slack"`
	Total      int    `json:"total"`
	LastSyncAt string `json:"last_sync_at"`
	NextSyncAt string `json:"next_sync_at"`
}

// Status reports the sync schedule. last_sync_at is null before the
// first sync.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Status(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := SyncStatusResponse{
		NextSyncAt: state.NextSyncAt.UTC().Format(time.RFC3339),
	}
	if state.LastSyncAt != nil {
		formatted := state.LastSyncAt.UTC().Format(time.RFC3339)
		resp.LastSyncAt = &formatted
	}

	api.Success(w, http.StatusOK, resp)
}

// Trigger runs a sync immediately and reports per-source counts.
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Run(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SyncTriggerResponse{
		Status:     "ok",
		Notion:     result.Notion,
		GitHub:     result.GitHub,
		Slack:      result.Slack,
		Total:      result.Total(),
		LastSyncAt: result.LastSyncAt.UTC().Format(time.RFC3339),
		NextSyncAt: result.NextSyncAt.UTC().Format(time.RFC3339),
	})
}
