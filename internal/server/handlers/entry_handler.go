package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

// FoodLog is the store surface exposed over HTTP.
type FoodLog interface {
	TodayLabel() string
	Add(ctx context.Context, in models.NewEntry) (string, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.FoodEntry, error)
	Days(ctx context.Context) ([]models.DayGroup, error)
	Stats(ctx context.Context) (models.TodayStats, error)
	AnalyzeDay(ctx context.Context, label string) (models.DailyAdvice, error)
	Settings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, settings models.Settings) (models.Settings, error)
	OnboardingCompleted(ctx context.Context) (bool, error)
	CompleteOnboarding(ctx context.Context, done bool) error
}

// EntryHandler serves the food log endpoints.
type EntryHandler struct {
	svc    FoodLog
	logger *zap.Logger
}

// NewEntryHandler constructs the HTTP handler adapter.
func NewEntryHandler(svc FoodLog, logger *zap.Logger) *EntryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryHandler{svc: svc, logger: logger}
}

// Create logs a new entry.
func (h *EntryHandler) Create(c *gin.Context) {
	var req models.NewEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid entry payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.svc.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "add entry", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// List returns every entry, newest first.
func (h *EntryHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list entries", err)
		return
	}
	if list == nil {
		list = []models.FoodEntry{}
	}
	c.JSON(http.StatusOK, list)
}

// Delete removes an entry by id.
func (h *EntryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete entry", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Days returns the recent entries grouped by day.
func (h *EntryHandler) Days(c *gin.Context) {
	groups, err := h.svc.Days(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "group days", err)
		return
	}
	if groups == nil {
		groups = []models.DayGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

type analyzeDayRequest struct {
	Day string `json:"day"`
}

// AnalyzeDay refreshes the advice for a day, today when none is given.
func (h *EntryHandler) AnalyzeDay(c *gin.Context) {
	var req analyzeDayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("invalid analyze payload", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}
	if req.Day == "" {
		req.Day = h.svc.TodayLabel()
	}

	advice, err := h.svc.AnalyzeDay(c.Request.Context(), req.Day)
	if err != nil {
		respondError(c, h.logger, "analyze day", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dayLabel": req.Day, "advice": advice})
}

// Stats returns today's intake against the goal.
func (h *EntryHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "today stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetSettings returns the saved settings or the defaults.
func (h *EntryHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "load settings", err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings replaces the settings.
func (h *EntryHandler) PutSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid settings payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.svc.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "save settings", err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

type onboardingBody struct {
	Completed bool `json:"completed"`
}

// GetOnboarding reports whether onboarding was completed.
func (h *EntryHandler) GetOnboarding(c *gin.Context) {
	done, err := h.svc.OnboardingCompleted(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "load onboarding", err)
		return
	}
	c.JSON(http.StatusOK, onboardingBody{Completed: done})
}

// PutOnboarding stores the onboarding flag.
func (h *EntryHandler) PutOnboarding(c *gin.Context) {
	var req onboardingBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid onboarding payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.CompleteOnboarding(c.Request.Context(), req.Completed); err != nil {
		respondError(c, h.logger, "save onboarding", err)
		return
	}
	c.JSON(http.StatusOK, req)
}
