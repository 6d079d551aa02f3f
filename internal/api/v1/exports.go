package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/export"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// ExportCreate is the body of POST /projects/:id/exports
type ExportCreate struct {
	SelectionCriteria map[string]any `json:"selection_criteria_json"`
}

// CreateExport handles POST /projects/:id/exports. The manifest covers every
// category, asset and annotation of the project; the selection criteria are
// recorded alongside it.
func (c *Controller) CreateExport(ctx echo.Context) error {
	var req ExportCreate
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	reqCtx := ctx.Request().Context()
	projectID := ctx.Param("id")

	if _, err := c.DS.GetProject(reqCtx, projectID); err != nil {
		return c.handleStoreError(ctx, err, "Failed to create export")
	}
	categories, err := c.DS.ListCategories(reqCtx, projectID)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to create export")
	}
	assets, err := c.DS.ListAssets(reqCtx, projectID, "")
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to create export")
	}
	annotations, err := c.DS.ListAnnotations(reqCtx, projectID)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to create export")
	}

	labels := make([]labeling.Label, len(categories))
	for i, cat := range categories {
		labels[i] = cat.Label()
	}
	treeAssets := make([]assettree.Asset, len(assets))
	for i, a := range assets {
		treeAssets[i] = a.TreeAsset()
	}
	committed := make([]labeling.Annotation, len(annotations))
	for i, n := range annotations {
		committed[i] = n.Committed()
	}

	result, err := export.Build(projectID, labels, treeAssets, committed)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to build export manifest", http.StatusInternalServerError)
	}
	manifest, err := result.Manifest.AsMap()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to build export manifest", http.StatusInternalServerError)
	}

	version := datastore.DatasetVersion{
		ProjectID:         projectID,
		SelectionCriteria: req.SelectionCriteria,
		Manifest:          manifest,
		ExportURI:         result.URI,
		Hash:              result.Hash,
	}
	if err := c.DS.CreateDatasetVersion(reqCtx, &version); err != nil {
		return c.handleStoreError(ctx, err, "Failed to create export")
	}

	c.logger.Info("dataset exported",
		logger.String("project_id", projectID),
		logger.String("hash", result.Hash),
		logger.Int("assets", len(assets)),
		logger.Int("annotations", len(annotations)))

	return ctx.JSON(http.StatusOK, version)
}

// ListExports handles GET /projects/:id/exports
func (c *Controller) ListExports(ctx echo.Context) error {
	versions, err := c.DS.ListDatasetVersions(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list exports")
	}
	return ctx.JSON(http.StatusOK, versions)
}
