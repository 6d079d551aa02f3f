package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/datastore"
)

// ProjectCreate is the body of POST /projects
type ProjectCreate struct {
	Name     string `json:"name"`
	TaskType string `json:"task_type"`
}

// CreateProject handles POST /projects
func (c *Controller) CreateProject(ctx echo.Context) error {
	var req ProjectCreate
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	project := datastore.Project{Name: req.Name, TaskType: req.TaskType}
	if err := c.DS.CreateProject(ctx.Request().Context(), &project); err != nil {
		return c.handleStoreError(ctx, err, "Failed to create project")
	}
	return ctx.JSON(http.StatusOK, project)
}

// ListProjects handles GET /projects
func (c *Controller) ListProjects(ctx echo.Context) error {
	projects, err := c.DS.ListProjects(ctx.Request().Context())
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list projects")
	}
	return ctx.JSON(http.StatusOK, projects)
}

// GetProject handles GET /projects/:id
func (c *Controller) GetProject(ctx echo.Context) error {
	project, err := c.DS.GetProject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to get project")
	}
	return ctx.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/:id. Categories, assets,
// annotations and exports of the project are removed with it.
func (c *Controller) DeleteProject(ctx echo.Context) error {
	if err := c.DS.DeleteProject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return c.handleStoreError(ctx, err, "Failed to delete project")
	}
	return ctx.NoContent(http.StatusNoContent)
}
