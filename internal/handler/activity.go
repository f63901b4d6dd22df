package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
	"github.com/iliyamo/sentiment-analyzer/internal/model"
	"github.com/iliyamo/sentiment-analyzer/internal/service"
)

// ActivityReader is the slice of service.ActivityService used here.
type ActivityReader interface {
	Get(ctx context.Context, username string) (model.ActivityRecord, error)
}

type ActivityHandler struct {
	Activity ActivityReader
}

func NewActivityHandler(a ActivityReader) *ActivityHandler {
	return &ActivityHandler{Activity: a}
}

type activityResp struct {
	Username      string     `json:"username"`
	LastLogin     *time.Time `json:"last_login"`
	LastTraining  *time.Time `json:"last_training"`
	LastInference *time.Time `json:"last_inference"`
}

// Get: the caller's own activity row.
func (h *ActivityHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Activity.Get(ctx, middleware.Username(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no activity recorded"})
		}
		return internalError(c, "activity lookup failed", err)
	}
	return c.JSON(http.StatusOK, activityResp{
		Username:      rec.Username,
		LastLogin:     rec.LastLogin,
		LastTraining:  rec.LastTraining,
		LastInference: rec.LastInference,
	})
}
