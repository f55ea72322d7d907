package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/domain"
)

type BriefService interface {
	Generate(ctx context.Context) *domain.DailyBrief
	ArchiveURL(ctx context.Context, day time.Time) (string, error)
}

type BriefHandler struct {
	svc BriefService
	now func() time.Time
}

func NewBriefHandler(svc BriefService) *BriefHandler {
	return &BriefHandler{
		svc: svc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

type BriefArchiveResponse struct {
	Date string `json:"date"`
	URL  string `json:"url"`
}

// Generate builds the daily brief. Degraded branches come back as a
// notice brief with status 200, never an error.
func (h *BriefHandler) Generate(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.Generate(r.Context()))
}

// Archive returns a presigned link to an archived brief. The date query
// parameter selects the day (YYYY-MM-DD, default today).
func (h *BriefHandler) Archive(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	url, err := h.svc.ArchiveURL(r.Context(), day)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, BriefArchiveResponse{
		Date: day.Format("2006-01-02"),
		URL:  url,
	})
}
