// Package api implements the sheriff REST endpoints under /api/v1
package api

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sheriffhq/sheriff/internal/buildinfo"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/datastore"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// DefaultBasePath is used when server.basepath is empty
const DefaultBasePath = "/api/v1"

// Controller handles every v1 endpoint
type Controller struct {
	Echo      *echo.Echo
	Group     *echo.Group
	DS        datastore.Interface
	Settings  *conf.Settings
	BuildInfo buildinfo.BuildInfo // optional, reported by the health check
	logger    logger.Logger
	startTime time.Time
}

// New creates the controller and registers its routes on e
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings) (*Controller, error) {
	if ds == nil {
		return nil, errors.Newf("datastore is required").
			Component("api").
			Category(errors.CategoryConfiguration).
			Build()
	}
	basePath := settings.Server.BasePath
	if basePath == "" {
		basePath = DefaultBasePath
	}

	c := &Controller{
		Echo:      e,
		Group:     e.Group(basePath),
		DS:        ds,
		Settings:  settings,
		logger:    logger.Global().Module("api"),
		startTime: time.Now(),
	}
	c.initRoutes()
	return c, nil
}

func (c *Controller) initRoutes() {
	c.Group.GET("/healthz", c.HealthCheck)

	c.Group.POST("/projects", c.CreateProject)
	c.Group.GET("/projects", c.ListProjects)
	c.Group.GET("/projects/:id", c.GetProject)
	c.Group.DELETE("/projects/:id", c.DeleteProject)

	c.Group.POST("/projects/:id/categories", c.CreateCategory)
	c.Group.GET("/projects/:id/categories", c.ListCategories)
	c.Group.PATCH("/categories/:id", c.UpdateCategory)

	c.Group.POST("/projects/:id/assets", c.CreateAsset)
	c.Group.GET("/projects/:id/assets", c.ListAssets)
	c.Group.DELETE("/projects/:id/assets/:asset_id", c.DeleteAsset)

	c.Group.POST("/projects/:id/annotations", c.UpsertAnnotation)
	c.Group.GET("/projects/:id/annotations", c.ListAnnotations)

	c.Group.POST("/projects/:id/exports", c.CreateExport)
	c.Group.GET("/projects/:id/exports", c.ListExports)

	c.Group.POST("/models", c.CreateModel)
	c.Group.GET("/models", c.ListModels)
	c.Group.GET("/assets/:asset_id/suggestions", c.ListSuggestions)
	c.Group.POST("/projects/:id/suggestions/batch", c.EnqueueBatchSuggestions)
}

// HealthCheck reports liveness and uptime
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)
	body := map[string]any{
		"status":         "ok",
		"uptime_seconds": uptime.Seconds(),
		"timestamp":      time.Now().Format(time.RFC3339),
	}
	if c.BuildInfo != nil {
		body["version"] = c.BuildInfo.GetVersion()
	}
	return ctx.JSON(http.StatusOK, body)
}

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a short random identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError writes an error response and logs it with its correlation ID
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	fields := []logger.Field{
		logger.String("correlation_id", errorResp.CorrelationID),
		logger.String("message", message),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	if code >= http.StatusInternalServerError {
		c.logger.Error("API error", fields...)
	} else {
		c.logger.Debug("API request rejected", fields...)
	}

	return ctx.JSON(code, errorResp)
}

// statusForError maps an error category to an HTTP status
func statusForError(err error) int {
	switch {
	case errors.IsCategory(err, errors.CategoryValidation):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryNotFound):
		return http.StatusNotFound
	case errors.IsCategory(err, errors.CategoryConflict):
		return http.StatusConflict
	case errors.IsCategory(err, errors.CategoryCancellation), errors.IsCategory(err, errors.CategoryTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// handleStoreError writes the response for a datastore failure. Client
// errors surface the store message; server errors use fallback.
func (c *Controller) handleStoreError(ctx echo.Context, err error, fallback string) error {
	code := statusForError(err)
	message := fallback
	if code < http.StatusInternalServerError {
		message = err.Error()
	}
	return c.HandleError(ctx, err, message, code)
}
