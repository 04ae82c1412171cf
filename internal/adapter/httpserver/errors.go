package httpserver

import (
	"errors"
	"fmt"

	"github.com/Mahesh-Wijerathna/game-review-sentiment/internal/domain"
	apperrors "github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/errors"
)

// Error codes clients can branch on, beyond the defaults in platform/errors.
const (
	codeEmptyText       apperrors.Code = "empty_text"
	codeGameNameTooLong apperrors.Code = "game_name_too_long"
	codeInvalidGameName apperrors.Code = "invalid_game_name"
	codeGameNotFound    apperrors.Code = "game_not_found"
	codeModelNotLoaded  apperrors.Code = "model_not_loaded"
	codeInferenceFailed apperrors.Code = "inference_failed"
	codeAnalyticsFailed apperrors.Code = "analytics_failed"
)

const msgNoText = "No text provided"

// Model failures map to 500 for local and remote classifiers alike.
func predictionError(err error) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrEmptyText):
		return apperrors.ValidationError(msgNoText).WithCode(codeEmptyText)
	case errors.Is(err, domain.ErrGameNameTooLong):
		return gameNameTooLong()
	case errors.Is(err, domain.ErrModelNotLoaded):
		return apperrors.InternalError("Model not loaded", err).WithCode(codeModelNotLoaded)
	case errors.Is(err, domain.ErrInference):
		return apperrors.InternalError("Model prediction failed", err).WithCode(codeInferenceFailed)
	default:
		return apperrors.InternalError("Prediction failed", err)
	}
}

func analyticsError(err error) *apperrors.Error {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		return apperrors.NotFoundError("Game not found in database").WithCode(codeGameNotFound)
	case errors.Is(err, domain.ErrInvalidGameName):
		return apperrors.ValidationError("game name must not be empty").WithCode(codeInvalidGameName)
	case errors.Is(err, domain.ErrGameNameTooLong):
		return gameNameTooLong()
	default:
		return apperrors.InternalError("Failed to compute analytics", err).WithCode(codeAnalyticsFailed)
	}
}

func gameNameTooLong() *apperrors.Error {
	return apperrors.ValidationError(fmt.Sprintf("game_name must be at most %d characters", domain.MaxGameNameLength)).
		WithCode(codeGameNameTooLong).
		WithField("field", "game_name")
}
