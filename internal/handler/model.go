package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/sentiment-analyzer/internal/logs"
	"github.com/iliyamo/sentiment-analyzer/internal/middleware"
	"github.com/iliyamo/sentiment-analyzer/internal/service"
)

// Model is the slice of service.ModelService used here.
type Model interface {
	Train(ctx context.Context, username string) (service.TrainStatus, error)
	Infer(ctx context.Context, username, query string) (string, error)
}

// ModelHandler exposes training and inference to authenticated users.
type ModelHandler struct {
	Model        Model
	InferTimeout time.Duration
}

func NewModelHandler(m Model) *ModelHandler {
	return &ModelHandler{Model: m, InferTimeout: 30 * time.Second}
}

// Train: retrain unless another run holds the training lock.  A failed
// activity write after a completed run is logged but still reported as
// completed.
func (h *ModelHandler) Train(c echo.Context) error {
	status, err := h.Model.Train(c.Request().Context(), middleware.Username(c))
	switch status {
	case service.TrainCompleted:
		if err != nil {
			logs.Logger.WithError(err).WithField("reqid", middleware.RequestIDFrom(c)).Warn("training activity not recorded")
		}
		return c.JSON(http.StatusOK, echo.Map{"status": status.String()})
	case service.TrainInProgress:
		return c.JSON(http.StatusConflict, echo.Map{"status": status.String()})
	default:
		logs.Logger.WithError(err).WithField("reqid", middleware.RequestIDFrom(c)).Error("training failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status": service.TrainFailed.String(),
			"error":  "training failed",
		})
	}
}

// Infer: label the query parameter with the current model.
func (h *ModelHandler) Infer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.InferTimeout)
	defer cancel()

	query := c.QueryParam("query")
	label, err := h.Model.Infer(ctx, middleware.Username(c), query)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no query passed"})
		}
		return internalError(c, "inference failed", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"query": query, "prediction": label})
}
