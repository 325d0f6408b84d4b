package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/bessopt/api/models"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
)

// Optimizer solves a schedule for the given plant and horizon.
type Optimizer interface {
	Optimize(ctx context.Context, batt model.BatteryParams, tariff model.Tariff, series model.Series) (*model.Schedule, error)
}

// OptimizeHandler handles schedule solve requests.
type OptimizeHandler struct {
	opt      Optimizer
	battery  model.BatteryParams
	tariff   model.Tariff
	maxSteps int
}

// NewOptimizeHandler creates a handler using battery and tariff as the
// defaults for requests that omit them.
func NewOptimizeHandler(opt Optimizer, battery model.BatteryParams, tariff model.Tariff, maxSteps int) *OptimizeHandler {
	return &OptimizeHandler{opt: opt, battery: battery, tariff: tariff, maxSteps: maxSteps}
}

// Optimize handles POST /api/v1/optimize.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: err.Error(),
			},
		})
		return
	}

	batt := h.battery
	if req.Battery != nil {
		batt = *req.Battery
	}
	tariff := h.tariff
	if req.Tariff != nil {
		tariff = *req.Tariff
	}

	if h.maxSteps > 0 && req.Series.Steps() > h.maxSteps {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "HORIZON_TOO_LONG",
				Message: "series exceeds the configured horizon limit",
				Details: map[string]interface{}{"max_steps": h.maxSteps, "steps": req.Series.Steps()},
			},
		})
		return
	}

	sched, err := h.opt.Optimize(c.Request.Context(), batt, tariff, req.Series)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_INPUT",
					Message: err.Error(),
				},
			})
			return
		}
		var nsErr *optimizer.NoSolutionError
		if errors.As(err, &nsErr) {
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "NO_SOLUTION",
					Message: err.Error(),
					Details: map[string]interface{}{"status": nsErr.Status.String()},
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SOLVER_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, sched)
}
