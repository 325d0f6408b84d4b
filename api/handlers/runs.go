package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/bessopt/api/models"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/store"
)

const defaultRunLimit = 50

// RunStore reads persisted solver runs.
type RunStore interface {
	ListRuns(limit int) ([]store.StoredRun, error)
	GetRun(runID string) (*model.Schedule, error)
}

// RunsHandler serves the persisted run history. A nil store means
// persistence is disabled and every endpoint answers 503.
type RunsHandler struct {
	store RunStore
}

// NewRunsHandler creates a handler over the given store, which may be nil.
func NewRunsHandler(s RunStore) *RunsHandler {
	return &RunsHandler{store: s}
}

// ListRuns handles GET /api/v1/runs.
func (h *RunsHandler) ListRuns(c *gin.Context) {
	if h.store == nil {
		storeDisabled(c)
		return
	}

	limit := defaultRunLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_LIMIT",
					Message: "limit must be a non-negative integer",
				},
			})
			return
		}
		limit = parsed
	}

	runs, err := h.store.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	resp := models.RunListResponse{Runs: make([]models.RunSummary, 0, len(runs))}
	for _, r := range runs {
		resp.Runs = append(resp.Runs, models.NewRunSummary(r))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRun handles GET /api/v1/runs/:id.
func (h *RunsHandler) GetRun(c *gin.Context) {
	if h.store == nil {
		storeDisabled(c)
		return
	}

	sched, err := h.store.GetRun(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "RUN_NOT_FOUND",
					Message: err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "STORE_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, sched)
}

func storeDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "STORE_DISABLED",
			Message: "run persistence is not enabled",
		},
	})
}
