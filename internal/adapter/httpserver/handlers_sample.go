package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
)

type sampleResult struct {
	Text       string            `json:"text"`
	Sentiment  *domain.Sentiment `json:"sentiment"`
	Confidence *float64          `json:"confidence"`
}

type sampleResponse struct {
	TestResults []sampleResult `json:"test_results"`
	ModelStatus string         `json:"model_status"`
}

func (s *Server) handleTestPrediction(c echo.Context) error {
	report := s.app.TestPredictions(c.Request().Context())

	resp := sampleResponse{
		TestResults: make([]sampleResult, 0, len(report.Results)),
		ModelStatus: "not loaded",
	}
	if report.ModelLoaded {
		resp.ModelStatus = "working"
	}

	for _, r := range report.Results {
		item := sampleResult{Text: r.Text}
		if r.Prediction != nil {
			item.Sentiment = &r.Prediction.Sentiment
			item.Confidence = &r.Prediction.Confidence
		}
		resp.TestResults = append(resp.TestResults, item)
	}

	if err := c.JSON(http.StatusOK, resp); err != nil {
		return fmt.Errorf("failed to write test prediction response: %w", err)
	}
	return nil
}
