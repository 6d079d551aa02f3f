package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// AnnotationUpsert is the body of POST /projects/:id/annotations
type AnnotationUpsert struct {
	AssetID     string          `json:"asset_id"`
	Status      labeling.Status `json:"status"`
	Payload     map[string]any  `json:"payload_json"`
	AnnotatedBy *string         `json:"annotated_by"`
}

// UpsertAnnotation handles POST /projects/:id/annotations. An asset has at
// most one annotation; posting again replaces it.
func (c *Controller) UpsertAnnotation(ctx echo.Context) error {
	var req AnnotationUpsert
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.Payload == nil {
		return c.HandleError(ctx, nil, "payload_json is required", http.StatusBadRequest)
	}
	annotation := datastore.Annotation{
		ProjectID:   ctx.Param("id"),
		AssetID:     req.AssetID,
		Status:      req.Status,
		Payload:     req.Payload,
		AnnotatedBy: req.AnnotatedBy,
	}
	if err := c.DS.UpsertAnnotation(ctx.Request().Context(), &annotation); err != nil {
		return c.handleStoreError(ctx, err, "Failed to save annotation")
	}
	return ctx.JSON(http.StatusOK, annotation)
}

// ListAnnotations handles GET /projects/:id/annotations
func (c *Controller) ListAnnotations(ctx echo.Context) error {
	annotations, err := c.DS.ListAnnotations(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list annotations")
	}
	return ctx.JSON(http.StatusOK, annotations)
}
