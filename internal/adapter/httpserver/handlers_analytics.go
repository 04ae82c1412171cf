package httpserver

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	apperrors "github.com/Mahesh-Wijerathna/game-review-sentiment/internal/platform/errors"
)

func (s *Server) handleGameAnalytics(c echo.Context) error {
	gameName, err := pathParam(c, "game_name")
	if err != nil {
		return apperrors.ValidationError("game name is not valid URL encoding").WithCode(codeInvalidGameName)
	}

	result, err := s.app.GameAnalytics(c.Request().Context(), gameName)
	if err != nil {
		return analyticsError(err)
	}

	if err := c.JSON(http.StatusOK, result); err != nil {
		return fmt.Errorf("failed to write analytics response: %w", err)
	}
	return nil
}

// pathParam returns a decoded path parameter. Echo routes on RawPath when the
// request carries escapes such as %2F, leaving params still encoded.
func pathParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}
