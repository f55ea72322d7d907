package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/pagination"
	"github.com/velora-hq/onboardai/internal/service"
)

type IntelService interface {
	Feed(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.CompetitorIntel], error)
	LiveSearch(ctx context.Context, query string, count int, freshness string) (*service.LiveSearchResult, error)
	Refresh(ctx context.Context) (int, error)
}

type IntelHandler struct {
	svc IntelService
}

func NewIntelHandler(svc IntelService) *IntelHandler {
	return &IntelHandler{svc: svc}
}

type IntelItemResponse struct {
	ID         string `json:"id"`
	Competitor string `json:"competitor"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceURL  string `json:"source_url,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type IntelFeedResponse struct {
	Items   []IntelItemResponse `json:"items"`
	Cursor  string              `json:"cursor,omitempty"`
	HasMore bool                `json:"has_more"`
}

type IntelRefreshResponse struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
}

func intelToResponse(row *domain.CompetitorIntel) IntelItemResponse {
	return IntelItemResponse{
		ID:         row.ID,
		Competitor: row.CompetitorName,
		Type:       string(row.IntelType),
		Title:      row.FeedTitle(),
		Content:    row.Content,
		SourceURL:  row.SourceURL,
		CreatedAt:  row.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Feed returns a page of cached intel, newest first. Pagination uses an
// opaque cursor; limit defaults to 20.
func (h *IntelHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	cursor, err := pagination.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	page, err := h.svc.Feed(r.Context(), cursor, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]IntelItemResponse, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, intelToResponse(row))
	}

	api.Success(w, http.StatusOK, IntelFeedResponse{
		Items:   items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

// Search runs an uncached live web+news search.
func (h *IntelHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		api.Error(w, http.StatusBadRequest, "q is required")
		return
	}

	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid count")
			return
		}
		count = parsed
	}

	result, err := h.svc.LiveSearch(r.Context(), query, count, r.URL.Query().Get("freshness"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

// Refresh re-runs the tracked-competitor searches and reports how many
// new rows were cached.
func (h *IntelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	added, err := h.svc.Refresh(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, IntelRefreshResponse{Status: "ok", Added: added})
}
