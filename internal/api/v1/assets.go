package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/labeling"
)

// AssetCreate is the body of POST /projects/:id/assets
type AssetCreate struct {
	Type     string         `json:"type"`
	URI      string         `json:"uri"`
	MIMEType string         `json:"mime_type"`
	Width    *int           `json:"width"`
	Height   *int           `json:"height"`
	Checksum string         `json:"checksum"`
	Metadata map[string]any `json:"metadata_json"`
}

// CreateAsset handles POST /projects/:id/assets
func (c *Controller) CreateAsset(ctx echo.Context) error {
	var req AssetCreate
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	asset := datastore.Asset{
		ProjectID: ctx.Param("id"),
		Type:      req.Type,
		URI:       req.URI,
		MIMEType:  req.MIMEType,
		Width:     req.Width,
		Height:    req.Height,
		Checksum:  req.Checksum,
		Metadata:  req.Metadata,
	}
	if err := c.DS.CreateAsset(ctx.Request().Context(), &asset); err != nil {
		return c.handleStoreError(ctx, err, "Failed to create asset")
	}
	return ctx.JSON(http.StatusOK, asset)
}

// ListAssets handles GET /projects/:id/assets with an optional ?status= filter
func (c *Controller) ListAssets(ctx echo.Context) error {
	status := labeling.Status(ctx.QueryParam("status"))
	assets, err := c.DS.ListAssets(ctx.Request().Context(), ctx.Param("id"), status)
	if err != nil {
		return c.handleStoreError(ctx, err, "Failed to list assets")
	}
	return ctx.JSON(http.StatusOK, assets)
}

// DeleteAsset handles DELETE /projects/:id/assets/:asset_id
func (c *Controller) DeleteAsset(ctx echo.Context) error {
	if err := c.DS.DeleteAsset(ctx.Request().Context(), ctx.Param("id"), ctx.Param("asset_id")); err != nil {
		return c.handleStoreError(ctx, err, "Failed to delete asset")
	}
	return ctx.NoContent(http.StatusNoContent)
}
