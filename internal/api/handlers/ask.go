package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/velora-hq/onboardai/internal/api"
	"github.com/velora-hq/onboardai/internal/domain"
)

type AskService interface {
	Ask(ctx context.Context, question string) (*domain.Answer, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer    string             `json:"answer"`
	Citations []domain.Citation  `json:"citations"`
	Brief     *domain.DailyBrief `json:"brief,omitempty"`
}

// Ask answers a question over the knowledge base. Questions that ask
// for the daily brief get the brief back instead of a prose answer.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.svc.Ask(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AskResponse{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Brief:     answer.Brief,
	})
}
