package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	apperrors "github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

const storeWarning = "review was classified but could not be saved"

type predictRequest struct {
	Text     string `json:"text" validate:"required"`
	GameName string `json:"game_name" validate:"max=200"`
}

type predictResponse struct {
	Sentiment  domain.Sentiment `json:"sentiment"`
	Confidence float64          `json:"confidence"`
	Timestamp  string           `json:"timestamp"`
	Stored     bool             `json:"stored"`
	ReviewID   int64            `json:"review_id,omitempty"`
	Warning    string           `json:"warning,omitempty"`
}

func (s *Server) handlePredict(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be a JSON object")
	}
	req.GameName = strings.TrimSpace(req.GameName)
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := s.app.Predict(c.Request().Context(), req.Text, req.GameName)
	if err != nil {
		return predictionError(err)
	}

	resp := predictResponse{
		Sentiment:  result.Prediction.Sentiment,
		Confidence: result.Prediction.Confidence,
		Timestamp:  result.Timestamp.UTC().Format(timestampLayout),
		Stored:     result.Stored,
	}
	if result.Stored {
		resp.ReviewID = result.ReviewID
	} else {
		resp.Warning = storeWarning
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write prediction response: %w", err)
	}
	return nil
}
