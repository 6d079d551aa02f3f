// Package client is the typed REST client for the sheriff /api/v1 backend.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sheriffhq/sheriff/internal/assettree"
	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/httpclient"
	"github.com/sheriffhq/sheriff/internal/labeling"
	"github.com/sheriffhq/sheriff/internal/logger"
)

const (
	componentName = "client"

	// maxErrorBody caps how much of a failed response is kept on APIError
	maxErrorBody = 64 * 1024
)

// Project is a labeling project
type Project struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TaskType      string `json:"task_type"`
	SchemaVersion string `json:"schema_version"`
}

// ProjectCreate is the body of CreateProject
type ProjectCreate struct {
	Name     string `json:"name"`
	TaskType string `json:"task_type,omitempty"`
}

// CategoryCreate is the body of CreateCategory
type CategoryCreate struct {
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// CategoryUpdate is a partial category update; nil fields are left as they are
type CategoryUpdate struct {
	Name         *string `json:"name,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// AssetCreate is the body of CreateAsset
type AssetCreate struct {
	Type     string         `json:"type,omitempty"`
	URI      string         `json:"uri"`
	MIMEType string         `json:"mime_type"`
	Width    *int           `json:"width,omitempty"`
	Height   *int           `json:"height,omitempty"`
	Checksum string         `json:"checksum"`
	Metadata map[string]any `json:"metadata_json,omitempty"`
}

// AnnotationUpsert is the body of UpsertAnnotation
type AnnotationUpsert struct {
	AssetID     string          `json:"asset_id"`
	Status      labeling.Status `json:"status"`
	Payload     map[string]any  `json:"payload_json"`
	AnnotatedBy *string         `json:"annotated_by,omitempty"`
}

// ExportVersion is a stored dataset export
type ExportVersion struct {
	ID                string         `json:"id"`
	ProjectID         string         `json:"project_id"`
	SelectionCriteria map[string]any `json:"selection_criteria_json"`
	Manifest          map[string]any `json:"manifest_json"`
	ExportURI         string         `json:"export_uri"`
	Hash              string         `json:"hash"`
}

// Client talks to one backend. Safe for concurrent use.
type Client struct {
	http    *httpclient.Client
	baseURL string
	log     logger.Logger
}

// New creates a client for baseURL, which includes the API prefix
// (for example http://127.0.0.1:8080/api/v1). A nil cfg uses the
// httpclient defaults.
func New(baseURL string, cfg *httpclient.Config) *Client {
	return &Client{
		http:    httpclient.New(cfg),
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Global().Module(componentName),
	}
}

// NewFromSettings builds a client from the client section of the settings
func NewFromSettings(settings *conf.Settings) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.DefaultTimeout = settings.Client.Timeout
	cfg.RequestsPerSecond = settings.Client.RequestsPerSecond
	return New(settings.Client.BaseURL, &cfg)
}

// HTTPClient exposes the underlying HTTP client for transport mocking
func (c *Client) HTTPClient() *http.Client {
	return c.http.HTTPClient()
}

// BaseURL returns the API root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections
func (c *Client) Close() {
	c.http.Close()
}

func (c *Client) url(parts ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// do sends the request and decodes a JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	resp, err := c.http.Send(ctx, method, target, "", body)
	if err != nil {
		c.log.Debug("request failed",
			logger.String("method", method),
			logger.String("url", target),
			logger.Error(err))
		return newNetworkError(method, target, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Debug("failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(method, target, resp.StatusCode, string(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryHTTP).
			Context("operation", "decode_response").
			Context("method", method).
			Context("url", target).
			Build()
	}
	return nil
}

// ListProjects returns every project
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var out []Project
	if err := c.do(ctx, http.MethodGet, c.url("projects"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns one project
func (c *Client) GetProject(ctx context.Context, projectID string) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodGet, c.url("projects", projectID), nil, &out)
	return out, err
}

// CreateProject creates a project; the server defaults the task type
func (c *Client) CreateProject(ctx context.Context, in ProjectCreate) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPost, c.url("projects"), in, &out)
	return out, err
}

// DeleteProject deletes a project with all of its data
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, c.url("projects", projectID), nil, nil)
}

// ListCategories returns the labels of a project
func (c *Client) ListCategories(ctx context.Context, projectID string) ([]labeling.Label, error) {
	var out []labeling.Label
	if err := c.do(ctx, http.MethodGet, c.url("projects", projectID, "categories"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a label to a project
func (c *Client) CreateCategory(ctx context.Context, projectID string, in CategoryCreate) (labeling.Label, error) {
	var out labeling.Label
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID, "categories"), in, &out)
	return out, err
}

// UpdateCategory patches a label
func (c *Client) UpdateCategory(ctx context.Context, id labeling.LabelID, in CategoryUpdate) (labeling.Label, error) {
	var out labeling.Label
	err := c.do(ctx, http.MethodPatch, c.url("categories", strconv.FormatInt(int64(id), 10)), in, &out)
	return out, err
}

// ListAssets returns the assets of a project. A non-empty status keeps only
// assets whose annotation has that status.
func (c *Client) ListAssets(ctx context.Context, projectID string, status labeling.Status) ([]assettree.Asset, error) {
	target := c.url("projects", projectID, "assets")
	if status != "" {
		target += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var out []assettree.Asset
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAsset registers an asset
func (c *Client) CreateAsset(ctx context.Context, projectID string, in AssetCreate) (assettree.Asset, error) {
	var out assettree.Asset
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID, "assets"), in, &out)
	return out, err
}

// DeleteAsset removes an asset and its annotation
func (c *Client) DeleteAsset(ctx context.Context, projectID, assetID string) error {
	return c.do(ctx, http.MethodDelete, c.url("projects", projectID, "assets", assetID), nil, nil)
}

// ListAnnotations returns the committed annotations of a project
func (c *Client) ListAnnotations(ctx context.Context, projectID string) ([]labeling.Annotation, error) {
	var out []labeling.Annotation
	if err := c.do(ctx, http.MethodGet, c.url("projects", projectID, "annotations"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertAnnotation creates or replaces the annotation of one asset
func (c *Client) UpsertAnnotation(ctx context.Context, projectID string, in AnnotationUpsert) (labeling.Annotation, error) {
	var out labeling.Annotation
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID, "annotations"), in, &out)
	return out, err
}

// CreateExport snapshots the project into a dataset version. A nil
// criteria map lets the server apply its default.
func (c *Client) CreateExport(ctx context.Context, projectID string, criteria map[string]any) (ExportVersion, error) {
	body := map[string]any{}
	if criteria != nil {
		body["selection_criteria_json"] = criteria
	}
	var out ExportVersion
	err := c.do(ctx, http.MethodPost, c.url("projects", projectID, "exports"), body, &out)
	return out, err
}

// ListExports returns the dataset versions of a project
func (c *Client) ListExports(ctx context.Context, projectID string) ([]ExportVersion, error) {
	var out []ExportVersion
	if err := c.do(ctx, http.MethodGet, c.url("projects", projectID, "exports"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
