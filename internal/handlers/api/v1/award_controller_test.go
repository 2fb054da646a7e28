package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merithub/internal/models"
	"merithub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAwardService serves a canned award list for handler tests.
type mockAwardService struct {
	awards []*models.Award
}

func (m *mockAwardService) GetOrCompute(ctx context.Context, req *services.GetAwardRequest) (*models.Award, error) {
	if len(m.awards) == 0 {
		return nil, services.NewNotFoundError("no award")
	}
	return m.awards[0], nil
}

func (m *mockAwardService) List(ctx context.Context, year int) ([]*models.Award, error) {
	return m.awards, nil
}

func newAwardListRouter(service services.AwardService) http.Handler {
	controller := &AwardController{
		services:        &services.Collection{Award: service},
		logger:          zap.NewNop(),
		responseBuilder: newTestResponseBuilder(),
	}

	r := chi.NewRouter()
	r.Get("/awards", controller.List)
	return r
}

func cannedAwards(n int) []*models.Award {
	awards := make([]*models.Award, 0, n)
	for i := 0; i < n; i++ {
		awards = append(awards, &models.Award{
			ID:                 int64(i + 1),
			AwardType:          models.AwardBestReviewer,
			Year:               2026,
			JournalID:          7,
			RecipientProfileID: int64(100 + i),
			ComputedAt:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		})
	}
	return awards
}

func TestAwardListPaginates(t *testing.T) {
	router := newAwardListRouter(&mockAwardService{awards: cannedAwards(3)})

	req := httptest.NewRequest(http.MethodGet, "/awards?page=1&page_size=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    []json.RawMessage `json:"data"`
		Meta    struct {
			Pagination struct {
				Page       int   `json:"page"`
				PageSize   int   `json:"page_size"`
				Total      int64 `json:"total"`
				TotalPages int   `json:"total_pages"`
				HasNext    bool  `json:"has_next"`
				HasPrev    bool  `json:"has_prev"`
			} `json:"pagination"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 2)
	assert.Equal(t, 1, body.Meta.Pagination.Page)
	assert.Equal(t, int64(3), body.Meta.Pagination.Total)
	assert.Equal(t, 2, body.Meta.Pagination.TotalPages)
	assert.True(t, body.Meta.Pagination.HasNext)
	assert.False(t, body.Meta.Pagination.HasPrev)
}

func TestAwardListLastPage(t *testing.T) {
	router := newAwardListRouter(&mockAwardService{awards: cannedAwards(3)})

	req := httptest.NewRequest(http.MethodGet, "/awards?page=2&page_size=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
}

func TestAwardListRejectsBadPage(t *testing.T) {
	router := newAwardListRouter(&mockAwardService{})

	req := httptest.NewRequest(http.MethodGet, "/awards?page=0", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
