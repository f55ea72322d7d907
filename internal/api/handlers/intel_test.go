package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/pagination"
	"github.com/velora-hq/onboardai/internal/service"
)

// MockIntelService is a mock implementation of IntelService
type MockIntelService struct {
	mock.Mock
}

func (m *MockIntelService) Feed(ctx context.Context, cursor *pagination.Cursor, limit int) (*pagination.PageResult[*domain.CompetitorIntel], error) {
	args := m.Called(ctx, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[*domain.CompetitorIntel]), args.Error(1)
}

func (m *MockIntelService) LiveSearch(ctx context.Context, query string, count int, freshness string) (*service.LiveSearchResult, error) {
	args := m.Called(ctx, query, count, freshness)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LiveSearchResult), args.Error(1)
}

func (m *MockIntelService) Refresh(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestIntelHandler_Feed(t *testing.T) {
	t.Run("returns a page", func(t *testing.T) {
		created := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
		svc := new(MockIntelService)
		svc.On("Feed", mock.Anything, (*pagination.Cursor)(nil), 10).Return(&pagination.PageResult[*domain.CompetitorIntel]{
			Items: []*domain.CompetitorIntel{
				domain.NewCompetitorIntel("intel-1", "Intercom", domain.IntelTypePricing, "Plans start at $39.", "https://intercom.com/pricing", created),
			},
			Cursor:  pagination.EncodeCursor("intel-1", created),
			HasMore: true,
		}, nil)

		handler := NewIntelHandler(svc)
		rec := httptest.NewRecorder()
		handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/intel/feed?limit=10", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data IntelFeedResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Items, 1)
		assert.Equal(t, "Intercom", resp.Data.Items[0].Competitor)
		assert.Equal(t, "pricing", resp.Data.Items[0].Type)
		assert.Equal(t, "Intercom (pricing)", resp.Data.Items[0].Title)
		assert.True(t, resp.Data.HasMore)
		assert.NotEmpty(t, resp.Data.Cursor)
	})

	t.Run("rejects invalid cursor", func(t *testing.T) {
		handler := NewIntelHandler(new(MockIntelService))
		rec := httptest.NewRecorder()
		handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/intel/feed?cursor=%21%21not-base64", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		handler := NewIntelHandler(new(MockIntelService))
		rec := httptest.NewRecorder()
		handler.Feed(rec, httptest.NewRequest(http.MethodGet, "/api/intel/feed?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIntelHandler_Search(t *testing.T) {
	t.Run("returns live results", func(t *testing.T) {
		svc := new(MockIntelService)
		svc.On("LiveSearch", mock.Anything, "zendesk pricing", 5, "week").Return(&service.LiveSearchResult{
			Web:   []service.WebHit{{Title: "Zendesk Pricing", Content: "Suite Team at $55."}},
			News:  []service.NewsHit{},
			Query: "zendesk pricing",
		}, nil)

		handler := NewIntelHandler(svc)
		rec := httptest.NewRecorder()
		handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/intel/search?q=zendesk+pricing&count=5&freshness=week", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data service.LiveSearchResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data.Web, 1)
		assert.Equal(t, "Zendesk Pricing", resp.Data.Web[0].Title)
		svc.AssertExpectations(t)
	})

	t.Run("requires q", func(t *testing.T) {
		handler := NewIntelHandler(new(MockIntelService))
		rec := httptest.NewRecorder()
		handler.Search(rec, httptest.NewRequest(http.MethodGet, "/api/intel/search", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIntelHandler_Refresh(t *testing.T) {
	svc := new(MockIntelService)
	svc.On("Refresh", mock.Anything).Return(7, nil)

	handler := NewIntelHandler(svc)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/intel/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data IntelRefreshResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, 7, resp.Data.Added)
}
