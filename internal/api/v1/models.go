package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// ModelCreate is the body of POST /models
type ModelCreate struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// BatchSuggestionsResponse acknowledges a batch suggestion request
type BatchSuggestionsResponse struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

// CreateModel handles POST /models
func (c *Controller) CreateModel(ctx echo.Context) error {
	var req ModelCreate
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	model := datastore.Model{Name: req.Name, URI: req.URI}
	if err := c.DS.CreateModel(ctx.Request().Context(), &model); err != nil {
		return c.handleStoreError(ctx, err, "Failed to register model")
	}
	return ctx.JSON(http.StatusOK, model)
}

// ListModels handles GET /models
func (c *Controller) ListModels(ctx echo.Context) error {
	models, err := c.DS.ListModels(ctx.Request().Context())
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list models")
	}
	return ctx.JSON(http.StatusOK, models)
}

// ListSuggestions handles GET /assets/:asset_id/suggestions
func (c *Controller) ListSuggestions(ctx echo.Context) error {
	suggestions, err := c.DS.ListSuggestions(ctx.Request().Context(), ctx.Param("asset_id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list suggestions")
	}
	return ctx.JSON(http.StatusOK, suggestions)
}

// EnqueueBatchSuggestions handles POST /projects/:id/suggestions/batch.
// Inference runs outside sheriff; the request is only acknowledged.
func (c *Controller) EnqueueBatchSuggestions(ctx echo.Context) error {
	project, err := c.DS.GetProject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to queue suggestions")
	}
	c.logger.Info("batch suggestions requested", logger.String("project_id", project.ID))
	return ctx.JSON(http.StatusOK, BatchSuggestionsResponse{ProjectID: project.ID, Status: "queued"})
}
