// Package analysis wraps the AI collaborator so callers always get a renderable result.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
	"github.com/mamadbah2/platelog/internal/service/nutrition"
	"github.com/mamadbah2/platelog/pkg/clients/anthropic"
)

// Fallback texts returned when the daily advice collaborator fails.
const (
	FallbackSummary = "Unable to analyze nutrition data"
	FallbackAdvice  = "Please try again later."
)

// Fallback is the canned advice used on any collaborator failure.
func Fallback() models.DailyAdvice {
	return models.DailyAdvice{Summary: FallbackSummary, Advice: FallbackAdvice}
}

// Service normalizes collaborator outcomes.
type Service struct {
	client anthropic.Client
	logger *zap.Logger
}

// NewService wires the analysis service. A nil client makes every call fail over.
func NewService(client anthropic.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// RequestAnalysis identifies the food in a photo. Every failure collapses into
// models.FoodNotFound(); no retry is attempted.
func (s *Service) RequestAnalysis(ctx context.Context, image []byte) models.FoodAnalysis {
	result, err := s.analyze(ctx, image)
	if err != nil {
		s.logger.Warn("food analysis failed", zap.Error(err), zap.Int("image_bytes", len(image)))
		return models.FoodNotFound()
	}
	return result
}

func (s *Service) analyze(ctx context.Context, image []byte) (models.FoodAnalysis, error) {
	if len(image) == 0 {
		return models.FoodAnalysis{}, fmt.Errorf("%w: empty image", models.ErrAnalysisFailed)
	}
	if s.client == nil {
		return models.FoodAnalysis{}, fmt.Errorf("%w: ai client not configured", models.ErrAnalysisFailed)
	}

	mtype := mimetype.Detect(image)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return models.FoodAnalysis{}, fmt.Errorf("%w: unsupported content type %s", models.ErrAnalysisFailed, mtype.String())
	}

	reply, err := s.client.AnalyzeFood(ctx, image, mtype.String())
	if err != nil {
		return models.FoodAnalysis{}, fmt.Errorf("%w: %w", models.ErrAnalysisFailed, err)
	}

	calories := int(math.Round(reply.Calories))
	description := strings.TrimSpace(reply.Description)
	if !reply.FoodFound || calories <= 0 || description == "" {
		s.logger.Info("no food recognized", zap.Bool("food_found", reply.FoodFound), zap.Int("calories", calories))
		return models.FoodNotFound(), nil
	}

	return models.FoodAnalysis{
		FoodFound:   true,
		Description: description,
		Calories:    calories,
		Nutrition:   nutrition.Normalize(reply.Nutrition.Protein, reply.Nutrition.Fat, reply.Nutrition.Carbs),
	}, nil
}

// DailyAdvice summarizes a day. Failures return Fallback() rather than an error.
func (s *Service) DailyAdvice(ctx context.Context, dayLabel string, entries []models.FoodEntry, goal int) models.DailyAdvice {
	if s.client == nil {
		s.logger.Warn("daily advice unavailable", zap.Error(models.ErrAdviceFailed))
		return Fallback()
	}

	advice, err := s.client.SummarizeDay(ctx, anthropic.DayRequest{
		DayLabel:    dayLabel,
		Entries:     entries,
		CalorieGoal: goal,
	})
	if err != nil {
		s.logger.Warn("daily advice failed",
			zap.String("day", dayLabel),
			zap.Error(fmt.Errorf("%w: %w", models.ErrAdviceFailed, err)))
		return Fallback()
	}
	return advice
}
