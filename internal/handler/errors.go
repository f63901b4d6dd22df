package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
)

// internalError logs err with the request id and answers 500 with msg.
// Storage details never reach the client.
func internalError(c echo.Context, msg string, err error) error {
	logs.Logger.WithError(err).WithField("reqid", middleware.RequestIDFrom(c)).Error(msg)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
