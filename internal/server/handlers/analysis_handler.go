package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/platelog/internal/domain/models"
)

// MaxImageBytes bounds uploaded photos.
const MaxImageBytes = 10 << 20

// FoodAnalyzer recognizes food on a photo.
type FoodAnalyzer interface {
	RequestAnalysis(ctx context.Context, image []byte) models.FoodAnalysis
}

// AnalysisHandler serves photo analysis.
type AnalysisHandler struct {
	analyzer FoodAnalyzer
	logger   *zap.Logger
}

// NewAnalysisHandler constructs the HTTP handler adapter.
func NewAnalysisHandler(analyzer FoodAnalyzer, logger *zap.Logger) *AnalysisHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisHandler{analyzer: analyzer, logger: logger}
}

// Analyze accepts a multipart "image" field or a raw image body.
// Unrecognized photos are a normal 200 response with foodFound=false.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageBytes)

	image, err := readImage(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo is too large"})
			return
		}
		h.logger.Warn("unreadable analysis upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read the photo"})
		return
	}
	if len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a photo is required"})
		return
	}

	result := h.analyzer.RequestAnalysis(c.Request.Context(), image)
	h.logger.Info("analysis completed", zap.Bool("food_found", result.FoodFound), zap.Int("bytes", len(image)))
	c.JSON(http.StatusOK, result)
}

func readImage(c *gin.Context) ([]byte, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("image")
		if err != nil {
			return nil, err
		}
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	return io.ReadAll(c.Request.Body)
}
