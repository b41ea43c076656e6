package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/repository"
	"github.com/mamadbah2/platelog/internal/server/handlers"
	"github.com/mamadbah2/platelog/internal/service/entries"
)

type noAdvice struct{}

func (noAdvice) DailyAdvice(context.Context, string, []models.FoodEntry, int) models.DailyAdvice {
	return models.DailyAdvice{}
}

type noFood struct{}

func (noFood) RequestAnalysis(context.Context, []byte) models.FoodAnalysis {
	return models.FoodNotFound()
}

func TestRoutes(t *testing.T) {
	logger := zaptest.NewLogger(t)
	svc := entries.NewService(repository.NewCollections(repository.NewMemoryStore()), noAdvice{}, time.UTC, logger)
	r := New(handlers.NewEntryHandler(svc, logger), handlers.NewAnalysisHandler(noFood{}, logger), logger)

	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/v1/entries", http.StatusOK},
		{http.MethodGet, "/api/v1/days", http.StatusOK},
		{http.MethodGet, "/api/v1/stats/today", http.StatusOK},
		{http.MethodGet, "/api/v1/settings", http.StatusOK},
		{http.MethodGet, "/api/v1/onboarding", http.StatusOK},
		{http.MethodDelete, "/api/v1/entries/missing", http.StatusNoContent},
		{http.MethodPost, "/api/v1/days/analyze", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("%s %s: status = %d, want %d", tc.method, tc.path, w.Code, tc.want)
		}
	}
}
