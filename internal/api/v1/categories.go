package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/datastore"
)

// CategoryCreate is the body of POST /projects/:id/categories
type CategoryCreate struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"` // defaults to true
}

// CreateCategory handles POST /projects/:id/categories
func (c *Controller) CreateCategory(ctx echo.Context) error {
	var req CategoryCreate
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	category := datastore.Category{
		ProjectID:    ctx.Param("id"),
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := c.DS.CreateCategory(ctx.Request().Context(), &category); err != nil {
		return c.handleStoreError(ctx, err, "Failed to create category")
	}
	return ctx.JSON(http.StatusOK, category)
}

// ListCategories handles GET /projects/:id/categories
func (c *Controller) ListCategories(ctx echo.Context) error {
	categories, err := c.DS.ListCategories(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list categories")
	}
	return ctx.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PATCH /categories/:id
func (c *Controller) UpdateCategory(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid category id", http.StatusBadRequest)
	}
	var patch datastore.CategoryPatch
	if err := ctx.Bind(&patch); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	category, err := c.DS.UpdateCategory(ctx.Request().Context(), id, patch)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to update category")
	}
	return ctx.JSON(http.StatusOK, category)
}
